package http

import (
	"context"
	"net/http"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/service"
)

type applyRequest struct {
	Pitch         string `json:"pitch"`
	ProposedCents int64  `json:"proposed_cents"`
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	campaignID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.Application.Apply(r.Context(), userID(r), campaignID, req.Pitch, req.ProposedCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *Handler) applicationAction(fn func(service.ApplicationService, context.Context, int32, int32) (*domain.Application, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		app, err := fn(h.svc.Application, r.Context(), userID(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, app)
	}
}

func (h *Handler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.Application.ListMine(r.Context(), userID(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *Handler) ListCampaignApplications(w http.ResponseWriter, r *http.Request) {
	campaignID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	apps, err := h.svc.Application.ListByCampaign(r.Context(), userID(r), campaignID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

type sendInviteRequest struct {
	CreatorID int32  `json:"creator_id"`
	Message   string `json:"message"`
}

func (h *Handler) SendInvite(w http.ResponseWriter, r *http.Request) {
	campaignID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req sendInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	invite, err := h.svc.Invite.Send(r.Context(), userID(r), campaignID, req.CreatorID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

func (h *Handler) ListCampaignInvites(w http.ResponseWriter, r *http.Request) {
	campaignID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	invites, err := h.svc.Invite.ListByCampaign(r.Context(), userID(r), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if invites == nil {
		invites = []domain.CampaignInvite{}
	}
	writeJSON(w, http.StatusOK, invites)
}

func (h *Handler) ListPendingInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.svc.Invite.ListPending(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if invites == nil {
		invites = []domain.CampaignInvite{}
	}
	writeJSON(w, http.StatusOK, invites)
}

func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.Invite.Accept(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	invite, err := h.svc.Invite.Decline(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invite)
}
