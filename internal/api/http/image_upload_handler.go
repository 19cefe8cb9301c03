package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/storage"
)

// ImageUploadHandler serves the PUT/GET endpoints that stand in for presigned URLs
// when the filesystem storage backend is configured.
type ImageUploadHandler struct {
	mockStorage *storage.MockStorageService
	maxBytes    int64
}

func NewImageUploadHandler(mockStorage *storage.MockStorageService, maxBytes int64) *ImageUploadHandler {
	return &ImageUploadHandler{mockStorage: mockStorage, maxBytes: maxBytes}
}

// HandleMockUpload accepts the object body for a key and a one-time token.
func (h *ImageUploadHandler) HandleMockUpload(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !h.mockStorage.VerifyUploadToken(key, r.URL.Query().Get("token")) {
		writeJSON(w, http.StatusForbidden, errorBody{Error: errorDetail{Code: "forbidden", Message: "invalid or expired upload token"}})
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := h.mockStorage.SaveFile(key, body); err != nil {
		logger.Warn("Mock upload failed", "key", key, "error", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "validation", Message: "failed to store upload"}})
		return
	}

	// mimic an object store response
	w.Header().Set("ETag", `"mock-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

func (h *ImageUploadHandler) HandleMockDownload(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	file, err := h.mockStorage.ReadFile(key)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{Code: "not_found", Message: "file not found"}})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, bytes.NewReader(data))
}

type avatarUploadRequest struct {
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (h *Handler) RequestAvatarUpload(w http.ResponseWriter, r *http.Request) {
	var req avatarUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ticket, err := h.svc.Media.RequestAvatarUpload(r.Context(), userID(r), req.ContentType, req.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) ConfirmAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Media.ConfirmAvatar(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AvatarRedirect sends the browser to a short-lived download URL for the user's avatar.
func (h *Handler) AvatarRedirect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	target, err := h.svc.Media.AvatarDownloadURL(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// RegisterMockStorageRoutes registers the mock storage HTTP endpoints
func RegisterMockStorageRoutes(router *mux.Router, mockStorage *storage.MockStorageService, maxBytes int64) {
	handler := NewImageUploadHandler(mockStorage, maxBytes)
	router.HandleFunc("/api/media/mock/{key:.+}", handler.HandleMockUpload).Methods(http.MethodPut)
	router.HandleFunc("/api/media/mock/{key:.+}", handler.HandleMockDownload).Methods(http.MethodGet)
}
