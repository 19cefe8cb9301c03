package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ugc-marketplace-backend/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func creatorFilter(r *http.Request) domain.CreatorSearchFilter {
	q := r.URL.Query()
	minEngagement, _ := strconv.ParseFloat(q.Get("min_engagement"), 64)
	return domain.CreatorSearchFilter{
		Query:         q.Get("q"),
		Niche:         q.Get("niche"),
		State:         q.Get("state"),
		City:          q.Get("city"),
		Platform:      q.Get("platform"),
		MinFollowers:  queryInt64(r, "min_followers"),
		MaxFollowers:  queryInt64(r, "max_followers"),
		MinEngagement: minEngagement,
		Page:          queryInt32(r, "page", 1),
		PageSize:      queryInt32(r, "page_size", 20),
	}
}

func (h *Handler) SearchCreators(w http.ResponseWriter, r *http.Request) {
	filter := creatorFilter(r)
	results, total, err := h.svc.Discovery.SearchCreators(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(results, total, filter.Page))
}

func (h *Handler) DiscoveryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Discovery.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) ExportCreators(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.svc.Export.Creators(r.Context(), creatorFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, data, filename)
}

func (h *Handler) ExportCampaignApplications(w http.ResponseWriter, r *http.Request) {
	campaignID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, filename, err := h.svc.Export.CampaignApplications(r.Context(), userID(r), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, data, filename)
}

func writeFile(w http.ResponseWriter, data []byte, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.activeCompany(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	handle := mux.Vars(r)["handle"]
	var snap *domain.AnalyticsSnapshot
	switch domain.SocialProvider(mux.Vars(r)["provider"]) {
	case domain.ProviderInstagram:
		snap, err = h.svc.Analytics.AnalyzeInstagram(r.Context(), companyID, handle)
	case domain.ProviderTikTok:
		snap, err = h.svc.Analytics.AnalyzeTikTok(r.Context(), companyID, handle)
	default:
		err = validationErr("unsupported provider")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) AnalyticsHistory(w http.ResponseWriter, r *http.Request) {
	provider := domain.SocialProvider(mux.Vars(r)["provider"])
	history, err := h.svc.Analytics.History(r.Context(), provider, mux.Vars(r)["handle"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if history == nil {
		history = []domain.AnalyticsSnapshot{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) LookupCNPJ(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Enrichment.LookupCNPJ(r.Context(), mux.Vars(r)["cnpj"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) LookupCEP(w http.ResponseWriter, r *http.Request) {
	addr, err := h.svc.Enrichment.LookupCEP(r.Context(), mux.Vars(r)["cep"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *Handler) ListMunicipalities(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Enrichment.ListMunicipalities(r.Context(), mux.Vars(r)["uf"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
