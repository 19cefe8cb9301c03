package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ugc-marketplace-backend/internal/service"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	User         service.UserService
	Company      service.CompanyService
	Campaign     service.CampaignService
	Application  service.ApplicationService
	Invite       service.InviteService
	Community    service.CommunityService
	Wallet       service.WalletService
	Discovery    service.DiscoveryService
	Analytics    service.AnalyticsService
	Enrichment   service.EnrichmentService
	Inbox        service.InboxService
	MetaAds      service.MetaAdsService
	Notification service.NotificationService
	Export       service.ExportService
	Media        service.MediaService
}

type Handler struct {
	svc           Services
	webhookSecret []byte
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

func pathID(r *http.Request, name string) (int32, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || v <= 0 {
		return 0, validationErr("invalid " + name)
	}
	return int32(v), nil
}

func queryInt32(r *http.Request, name string, def int32) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	if err != nil {
		return def
	}
	return int32(v)
}

func queryInt64(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return v
}

type page[T any] struct {
	Items []T   `json:"items"`
	Total int32 `json:"total"`
	Page  int32 `json:"page"`
}

func newPage[T any](items []T, total, p int32) page[T] {
	if items == nil {
		items = []T{}
	}
	if p < 1 {
		p = 1
	}
	return page[T]{Items: items, Total: total, Page: p}
}

// activeCompany resolves the company the caller is acting as.
func (h *Handler) activeCompany(r *http.Request) (int32, error) {
	return h.svc.Company.ActiveCompanyID(r.Context(), userID(r))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
