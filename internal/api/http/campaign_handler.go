package http

import (
	"context"
	"net/http"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/service"
)

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.activeCompany(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.Campaign
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	campaign, err := h.svc.Campaign.Create(r.Context(), userID(r), companyID, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (h *Handler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.Campaign
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	campaign, err := h.svc.Campaign.Update(r.Context(), userID(r), id, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaign, err := h.svc.Campaign.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// campaignTransition serves publish/pause/resume/close, which share a shape.
func (h *Handler) campaignTransition(fn func(service.CampaignService, context.Context, int32, int32) (*domain.Campaign, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		campaign, err := fn(h.svc.Campaign, r.Context(), userID(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, campaign)
	}
}

func (h *Handler) ListOpenCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CampaignFilter{
		Niche:    q.Get("niche"),
		Platform: q.Get("platform"),
		Page:     queryInt32(r, "page", 1),
		PageSize: queryInt32(r, "page_size", 20),
	}
	campaigns, total, err := h.svc.Campaign.ListOpen(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(campaigns, total, filter.Page))
}

func (h *Handler) ListCompanyCampaigns(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaigns, err := h.svc.Campaign.ListByCompany(r.Context(), userID(r), id, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if campaigns == nil {
		campaigns = []domain.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *Handler) CampaignStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := h.svc.Campaign.Stats(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
