package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"ugc-marketplace-backend/internal/notify"
	"ugc-marketplace-backend/internal/security"
	"ugc-marketplace-backend/internal/service"
	"ugc-marketplace-backend/internal/storage"
)

// RouterConfig carries the router dependencies. MockStorage is set only when the
// filesystem storage backend is active.
type RouterConfig struct {
	Services       Services
	TokenManager   security.TokenManager
	Hub            *notify.Hub
	MockStorage    *storage.MockStorageService
	MaxUploadBytes int64
	// WebhookSecret is the Instagram app secret; webhook POSTs are refused while it is empty.
	WebhookSecret string
}

// NewRouter wires every API route behind the logging, recovery and auth middleware.
func NewRouter(cfg RouterConfig) *mux.Router {
	h := NewHandler(cfg.Services)
	h.webhookSecret = []byte(cfg.WebhookSecret)
	r := mux.NewRouter()
	r.Use(LoggingMiddleware, RecoveryMiddleware, NewAuthMiddleware(cfg.TokenManager).Handler)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{Code: "not_found", Message: "route not found"}})
	})

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	if cfg.Hub != nil {
		r.Handle(wsRoute, cfg.Hub.Handler(func(req *http.Request) (int32, bool) {
			return UserIDFromContext(req.Context())
		})).Methods(http.MethodGet)
	}
	if cfg.MockStorage != nil {
		RegisterMockStorageRoutes(r, cfg.MockStorage, cfg.MaxUploadBytes)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	// Profile
	api.HandleFunc("/me", h.GetMe).Methods(http.MethodGet)
	api.HandleFunc("/me", h.UpdateMe).Methods(http.MethodPut)
	api.HandleFunc("/me/social-accounts", h.LinkSocialAccount).Methods(http.MethodPost)
	api.HandleFunc("/me/social-accounts/{id}", h.UnlinkSocialAccount).Methods(http.MethodDelete)
	api.HandleFunc("/me/avatar", h.RequestAvatarUpload).Methods(http.MethodPost)
	api.HandleFunc("/me/avatar/confirm", h.ConfirmAvatar).Methods(http.MethodPost)
	api.HandleFunc("/me/memberships", h.ListMyMemberships).Methods(http.MethodGet)
	api.HandleFunc("/media/avatars/{id}", h.AvatarRedirect).Methods(http.MethodGet)

	// Companies
	api.HandleFunc("/companies", h.OnboardCompany).Methods(http.MethodPost)
	api.HandleFunc("/companies", h.ListMyCompanies).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}", h.GetCompany).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}", h.UpdateCompany).Methods(http.MethodPut)
	api.HandleFunc("/companies/{id}/members", h.ListCompanyMembers).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}/members", h.AddCompanyMember).Methods(http.MethodPost)
	api.HandleFunc("/companies/{id}/campaigns", h.ListCompanyCampaigns).Methods(http.MethodGet)
	api.HandleFunc("/active-company", h.GetActiveCompany).Methods(http.MethodGet)
	api.HandleFunc("/active-company", h.SetActiveCompany).Methods(http.MethodPut)

	// Campaigns
	api.HandleFunc("/campaigns", h.CreateCampaign).Methods(http.MethodPost)
	api.HandleFunc("/campaigns", h.ListOpenCampaigns).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}", h.GetCampaign).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}", h.UpdateCampaign).Methods(http.MethodPut)
	api.HandleFunc("/campaigns/{id}/publish", h.campaignTransition(service.CampaignService.Publish)).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}/pause", h.campaignTransition(service.CampaignService.Pause)).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}/resume", h.campaignTransition(service.CampaignService.Resume)).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}/close", h.campaignTransition(service.CampaignService.Close)).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}/stats", h.CampaignStats).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}/apply", h.Apply).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}/applications", h.ListCampaignApplications).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}/applications/export", h.ExportCampaignApplications).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}/invites", h.SendInvite).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}/invites", h.ListCampaignInvites).Methods(http.MethodGet)

	// Applications
	api.HandleFunc("/applications", h.ListMyApplications).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}", h.applicationAction(service.ApplicationService.Get)).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}/withdraw", h.applicationAction(service.ApplicationService.Withdraw)).Methods(http.MethodPost)
	api.HandleFunc("/applications/{id}/accept", h.applicationAction(service.ApplicationService.Accept)).Methods(http.MethodPost)
	api.HandleFunc("/applications/{id}/reject", h.applicationAction(service.ApplicationService.Reject)).Methods(http.MethodPost)
	api.HandleFunc("/applications/{id}/complete", h.applicationAction(service.ApplicationService.Complete)).Methods(http.MethodPost)

	// Invites
	api.HandleFunc("/invites", h.ListPendingInvites).Methods(http.MethodGet)
	api.HandleFunc("/invites/{id}/accept", h.AcceptInvite).Methods(http.MethodPost)
	api.HandleFunc("/invites/{id}/decline", h.DeclineInvite).Methods(http.MethodPost)

	// Communities
	api.HandleFunc("/communities/{companyID}/join", h.JoinCommunity).Methods(http.MethodPost)
	api.HandleFunc("/communities/{companyID}/leave", h.LeaveCommunity).Methods(http.MethodPost)
	api.HandleFunc("/communities/{companyID}/members", h.ListCommunityMembers).Methods(http.MethodGet)
	api.HandleFunc("/communities/{companyID}/members/{creatorID}", h.RevokeMember).Methods(http.MethodDelete)
	api.HandleFunc("/communities/{companyID}/members/{creatorID}/points", h.AwardPoints).Methods(http.MethodPost)
	api.HandleFunc("/communities/{companyID}/leaderboard", h.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/communities/{companyID}/tiers", h.ListTiers).Methods(http.MethodGet)
	api.HandleFunc("/communities/{companyID}/tiers", h.SaveTiers).Methods(http.MethodPut)

	// Wallet
	api.HandleFunc("/wallet", h.GetWallet).Methods(http.MethodGet)
	api.HandleFunc("/wallet/transactions", h.ListWalletTransactions).Methods(http.MethodGet)
	api.HandleFunc("/wallet/commissions", h.ListCommissions).Methods(http.MethodGet)
	api.HandleFunc("/wallet/commissions/{id}/paid", h.MarkCommissionPaid).Methods(http.MethodPost)
	api.HandleFunc("/wallet/withdrawals", h.RequestWithdrawal).Methods(http.MethodPost)

	// Discovery, analytics and enrichment
	api.HandleFunc("/creators/discovery", h.SearchCreators).Methods(http.MethodGet)
	api.HandleFunc("/creators/discovery/export", h.ExportCreators).Methods(http.MethodGet)
	api.HandleFunc("/creators/discovery-stats", h.DiscoveryStats).Methods(http.MethodGet)
	api.HandleFunc("/analytics/{provider:instagram|tiktok}/{handle}", h.Analyze).Methods(http.MethodGet)
	api.HandleFunc("/analytics/{provider:instagram|tiktok}/{handle}/history", h.AnalyticsHistory).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/cnpj/{cnpj}", h.LookupCNPJ).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/cep/{cep}", h.LookupCEP).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/municipalities/{uf}", h.ListMunicipalities).Methods(http.MethodGet)

	// Instagram inbox
	api.HandleFunc("/instagram/webhook", h.VerifyWebhook).Methods(http.MethodGet)
	api.HandleFunc("/instagram/webhook", h.ReceiveWebhook).Methods(http.MethodPost)
	api.HandleFunc("/instagram/conversations", h.ListConversations).Methods(http.MethodGet)
	api.HandleFunc("/instagram/conversations/{id}/messages", h.ListMessages).Methods(http.MethodGet)
	api.HandleFunc("/instagram/conversations/{id}/messages", h.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/instagram/sync", h.SyncInbox).Methods(http.MethodPost)

	// Meta Partnership Ads
	api.HandleFunc("/meta-marketing/partners", h.RequestPartnership).Methods(http.MethodPost)
	api.HandleFunc("/meta-marketing/partners", h.ListPartners).Methods(http.MethodGet)
	api.HandleFunc("/meta-marketing/partnerships", h.ListMyPartnerships).Methods(http.MethodGet)
	api.HandleFunc("/meta-marketing/partnerships/{id}/approve", h.partnershipAction(service.MetaAdsService.ApprovePartnership)).Methods(http.MethodPost)
	api.HandleFunc("/meta-marketing/partnerships/{id}/revoke", h.partnershipAction(service.MetaAdsService.RevokePartnership)).Methods(http.MethodPost)
	api.HandleFunc("/meta-marketing/campaigns", h.CreateAdCampaign).Methods(http.MethodPost)
	api.HandleFunc("/meta-marketing/campaigns", h.ListAdCampaigns).Methods(http.MethodGet)
	api.HandleFunc("/meta-marketing/campaigns/{id}", h.UpdateAdCampaign).Methods(http.MethodPut)
	api.HandleFunc("/meta-marketing/campaigns/{id}", h.DeleteAdCampaign).Methods(http.MethodDelete)
	api.HandleFunc("/meta-marketing/campaigns/{id}/status", h.SetAdCampaignStatus).Methods(http.MethodPost)
	api.HandleFunc("/meta-marketing/campaigns/{id}/publish", h.PublishAdCampaign).Methods(http.MethodPost)

	// Notifications
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread-count", h.UnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost)

	return r
}
