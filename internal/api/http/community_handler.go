package http

import (
	"net/http"

	"ugc-marketplace-backend/internal/domain"
)

func (h *Handler) JoinCommunity(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.svc.Community.Join(r.Context(), userID(r), companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) LeaveCommunity(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Community.Leave(r.Context(), userID(r), companyID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCommunityMembers(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	members, err := h.svc.Community.ListMembers(r.Context(), userID(r), companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if members == nil {
		members = []domain.CommunityMembership{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) RevokeMember(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	creatorID, err := pathID(r, "creatorID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Community.Revoke(r.Context(), userID(r), companyID, creatorID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type awardPointsRequest struct {
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
}

func (h *Handler) AwardPoints(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	creatorID, err := pathID(r, "creatorID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req awardPointsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.svc.Community.AwardPoints(r.Context(), userID(r), companyID, creatorID, req.Delta, req.Reason, req.Reference)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.svc.Community.Leaderboard(r.Context(), companyID, queryInt32(r, "limit", 10))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tiers, err := h.svc.Community.ListTiers(r.Context(), companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tiers == nil {
		tiers = []domain.Tier{}
	}
	writeJSON(w, http.StatusOK, tiers)
}

func (h *Handler) SaveTiers(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var tiers []domain.Tier
	if err := decodeJSON(w, r, &tiers); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := h.svc.Community.SaveTiers(r.Context(), userID(r), companyID, tiers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) ListMyMemberships(w http.ResponseWriter, r *http.Request) {
	memberships, err := h.svc.Community.ListMine(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if memberships == nil {
		memberships = []domain.CommunityMembership{}
	}
	writeJSON(w, http.StatusOK, memberships)
}
