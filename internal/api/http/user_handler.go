package http

import (
	"net/http"

	"ugc-marketplace-backend/internal/domain"
)

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.User.GetProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.svc.User.UpdateProfile(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type linkAccountRequest struct {
	Provider domain.SocialProvider `json:"provider"`
	Handle   string                `json:"handle"`
}

func (h *Handler) LinkSocialAccount(w http.ResponseWriter, r *http.Request) {
	var req linkAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	account, err := h.svc.User.LinkSocialAccount(r.Context(), userID(r), req.Provider, req.Handle)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) UnlinkSocialAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.User.UnlinkSocialAccount(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
