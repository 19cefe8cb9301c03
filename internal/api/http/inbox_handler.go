package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/service"
)

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.activeCompany(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	convs, err := h.svc.Inbox.ListConversations(r.Context(), userID(r), companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if convs == nil {
		convs = []domain.InstagramConversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	msgs, err := h.svc.Inbox.ListMessages(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []domain.InstagramMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := h.svc.Inbox.SendMessage(r.Context(), userID(r), id, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) SyncInbox(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.activeCompany(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	progress, err := h.svc.Inbox.SyncConversations(r.Context(), companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// VerifyWebhook answers Meta's subscription handshake with the raw challenge.
func (h *Handler) VerifyWebhook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	challenge, err := h.svc.Inbox.VerifyWebhook(q.Get("hub.mode"), q.Get("hub.verify_token"), q.Get("hub.challenge"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

const signatureHeader = "X-Hub-Signature-256"

// ReceiveWebhook accepts a delivery only when its signature matches the raw body.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, validationErr("unreadable body"))
		return
	}
	if !validSignature(h.webhookSecret, body, r.Header.Get(signatureHeader)) {
		logger.WithService("instagram-webhook").Warn("Rejected unsigned or forged delivery",
			"remote", r.RemoteAddr, "has_signature", r.Header.Get(signatureHeader) != "")
		writeError(w, r, fmt.Errorf("%w: invalid webhook signature", service.ErrForbidden))
		return
	}
	var payload service.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, r, validationErr("invalid JSON body"))
		return
	}
	stored, err := h.svc.Inbox.HandleWebhook(r.Context(), &payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stored": stored})
}

// validSignature checks header against "sha256=" + hex(HMAC-SHA256(secret, body)).
// An empty secret rejects every delivery.
func validSignature(secret, body []byte, header string) bool {
	if len(secret) == 0 {
		return false
	}
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
