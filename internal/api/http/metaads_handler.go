package http

import (
	"context"
	"net/http"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/service"
)

type partnershipRequest struct {
	CreatorID int32 `json:"creator_id"`
}

func (h *Handler) RequestPartnership(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.activeCompany(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req partnershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.MetaAds.RequestPartnership(r.Context(), userID(r), companyID, req.CreatorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.activeCompany(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	partners, err := h.svc.MetaAds.ListPartners(r.Context(), userID(r), companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if partners == nil {
		partners = []domain.MetaCreatorPartner{}
	}
	writeJSON(w, http.StatusOK, partners)
}

func (h *Handler) ListMyPartnerships(w http.ResponseWriter, r *http.Request) {
	partners, err := h.svc.MetaAds.ListMyPartnerships(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if partners == nil {
		partners = []domain.MetaCreatorPartner{}
	}
	writeJSON(w, http.StatusOK, partners)
}

func (h *Handler) partnershipAction(fn func(service.MetaAdsService, context.Context, int32, int32) (*domain.MetaCreatorPartner, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		p, err := fn(h.svc.MetaAds, r.Context(), userID(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (h *Handler) CreateAdCampaign(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.activeCompany(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.MetaAdCampaign
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.MetaAds.CreateCampaign(r.Context(), userID(r), companyID, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListAdCampaigns(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.activeCompany(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaigns, err := h.svc.MetaAds.ListCampaigns(r.Context(), userID(r), companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if campaigns == nil {
		campaigns = []domain.MetaAdCampaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *Handler) UpdateAdCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.MetaAdCampaign
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.MetaAds.UpdateCampaign(r.Context(), userID(r), id, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type adStatusRequest struct {
	Status domain.AdCampaignStatus `json:"status"`
}

func (h *Handler) SetAdCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req adStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.MetaAds.SetCampaignStatus(r.Context(), userID(r), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) PublishAdCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.MetaAds.PublishCampaign(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteAdCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.MetaAds.DeleteCampaign(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
