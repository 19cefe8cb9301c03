package service

import (
	"context"
	"time"

	"ugc-marketplace-backend/internal/clients"
	"ugc-marketplace-backend/internal/domain"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string, role domain.UserRole) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (*TokenPair, error)
	Logout(ctx context.Context, userID int32) error
}

type UserService interface {
	GetProfile(ctx context.Context, userID int32) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int32, in domain.ProfileUpdate) (*domain.User, error)
	LinkSocialAccount(ctx context.Context, userID int32, provider domain.SocialProvider, handle string) (*domain.SocialAccount, error)
	UnlinkSocialAccount(ctx context.Context, userID, accountID int32) error
}

type CompanyService interface {
	Onboard(ctx context.Context, userID int32, in domain.OnboardingInput) (*domain.Company, error)
	Get(ctx context.Context, userID, companyID int32) (*domain.Company, error)
	Update(ctx context.Context, userID, companyID int32, in domain.OnboardingInput) (*domain.Company, error)
	ListMine(ctx context.Context, userID int32) ([]domain.Company, error)
	GetActive(ctx context.Context, userID int32) (*domain.Company, error)
	SetActive(ctx context.Context, userID, companyID int32) (*domain.Company, error)
	ActiveCompanyID(ctx context.Context, userID int32) (int32, error)
	ListMembers(ctx context.Context, userID, companyID int32) ([]domain.CompanyMember, error)
	AddMember(ctx context.Context, userID, companyID int32, email string, role domain.CompanyMemberRole) (*domain.CompanyMember, error)
}

type CampaignService interface {
	Create(ctx context.Context, userID, companyID int32, c *domain.Campaign) (*domain.Campaign, error)
	Update(ctx context.Context, userID, campaignID int32, in *domain.Campaign) (*domain.Campaign, error)
	Publish(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error)
	Pause(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error)
	Resume(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error)
	Close(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error)
	Get(ctx context.Context, userID, campaignID int32) (*domain.Campaign, error)
	ListByCompany(ctx context.Context, userID, companyID int32, status string) ([]domain.Campaign, error)
	ListOpen(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, int32, error)
	Stats(ctx context.Context, userID, campaignID int32) (*domain.CampaignStats, error)
}

type ApplicationService interface {
	Apply(ctx context.Context, creatorID, campaignID int32, pitch string, proposedCents int64) (*domain.Application, error)
	Withdraw(ctx context.Context, creatorID, applicationID int32) (*domain.Application, error)
	Accept(ctx context.Context, userID, applicationID int32) (*domain.Application, error)
	Reject(ctx context.Context, userID, applicationID int32) (*domain.Application, error)
	Complete(ctx context.Context, userID, applicationID int32) (*domain.Application, error)
	Get(ctx context.Context, userID, applicationID int32) (*domain.Application, error)
	ListMine(ctx context.Context, creatorID int32, status string) ([]domain.Application, error)
	ListByCampaign(ctx context.Context, userID, campaignID int32, status string) ([]domain.Application, error)
}

type InviteService interface {
	Send(ctx context.Context, userID, campaignID, creatorID int32, message string) (*domain.CampaignInvite, error)
	ListPending(ctx context.Context, creatorID int32) ([]domain.CampaignInvite, error)
	Accept(ctx context.Context, creatorID, inviteID int32) (*domain.Application, error)
	Decline(ctx context.Context, creatorID, inviteID int32) (*domain.CampaignInvite, error)
	ListByCampaign(ctx context.Context, userID, campaignID int32) ([]domain.CampaignInvite, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type CommunityService interface {
	Join(ctx context.Context, creatorID, companyID int32) (*domain.CommunityMembership, error)
	Leave(ctx context.Context, creatorID, companyID int32) error
	Revoke(ctx context.Context, userID, companyID, creatorID int32) error
	ListMembers(ctx context.Context, userID, companyID int32) ([]domain.CommunityMembership, error)
	ListMine(ctx context.Context, creatorID int32) ([]domain.CommunityMembership, error)
	AwardPoints(ctx context.Context, userID, companyID, creatorID int32, delta int64, reason, reference string) (*domain.CommunityMembership, error)
	Leaderboard(ctx context.Context, companyID, limit int32) ([]domain.LeaderboardEntry, error)
	ListTiers(ctx context.Context, companyID int32) ([]domain.Tier, error)
	SaveTiers(ctx context.Context, userID, companyID int32, tiers []domain.Tier) ([]domain.Tier, error)
	ExpireMemberships(ctx context.Context) (int64, error)
}

type WalletService interface {
	GetWallet(ctx context.Context, userID int32) (*domain.WalletSummary, error)
	ListTransactions(ctx context.Context, userID, page, pageSize int32) ([]domain.WalletTransaction, int32, error)
	ListCommissions(ctx context.Context, userID int32, status string) ([]domain.Commission, error)
	RequestWithdrawal(ctx context.Context, userID int32, amountCents int64) (*domain.WalletTransaction, error)
	MarkCommissionPaid(ctx context.Context, userID, commissionID int32) (*domain.Commission, error)
}

type DiscoveryService interface {
	SearchCreators(ctx context.Context, filter domain.CreatorSearchFilter) ([]domain.CreatorSearchResult, int32, error)
	Stats(ctx context.Context) (*domain.DiscoveryStats, error)
}

type AnalyticsService interface {
	AnalyzeInstagram(ctx context.Context, companyID int32, handle string) (*domain.AnalyticsSnapshot, error)
	AnalyzeTikTok(ctx context.Context, companyID int32, handle string) (*domain.AnalyticsSnapshot, error)
	History(ctx context.Context, provider domain.SocialProvider, handle string) ([]domain.AnalyticsSnapshot, error)
	RefreshAccount(ctx context.Context, account domain.SocialAccount) (*domain.AnalyticsSnapshot, error)
}

type EnrichmentService interface {
	LookupCNPJ(ctx context.Context, cnpj string) (*domain.CNPJInfo, error)
	LookupCEP(ctx context.Context, cep string) (*domain.Address, error)
	ListMunicipalities(ctx context.Context, uf string) ([]domain.Municipality, error)
}

type InboxService interface {
	ListConversations(ctx context.Context, userID, companyID int32) ([]domain.InstagramConversation, error)
	ListMessages(ctx context.Context, userID, conversationID int32) ([]domain.InstagramMessage, error)
	SendMessage(ctx context.Context, userID, conversationID int32, text string) (*domain.InstagramMessage, error)
	VerifyWebhook(mode, token, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload *WebhookPayload) (int, error)
	SyncConversations(ctx context.Context, companyID int32) (*domain.SyncProgress, error)
	SyncAll(ctx context.Context) (int, error)
}

type MetaAdsService interface {
	RequestPartnership(ctx context.Context, userID, companyID, creatorID int32) (*domain.MetaCreatorPartner, error)
	ApprovePartnership(ctx context.Context, creatorID, partnerID int32) (*domain.MetaCreatorPartner, error)
	RevokePartnership(ctx context.Context, creatorID, partnerID int32) (*domain.MetaCreatorPartner, error)
	ListPartners(ctx context.Context, userID, companyID int32) ([]domain.MetaCreatorPartner, error)
	ListMyPartnerships(ctx context.Context, creatorID int32) ([]domain.MetaCreatorPartner, error)
	CreateCampaign(ctx context.Context, userID, companyID int32, c *domain.MetaAdCampaign) (*domain.MetaAdCampaign, error)
	UpdateCampaign(ctx context.Context, userID, campaignID int32, in *domain.MetaAdCampaign) (*domain.MetaAdCampaign, error)
	SetCampaignStatus(ctx context.Context, userID, campaignID int32, status domain.AdCampaignStatus) (*domain.MetaAdCampaign, error)
	PublishCampaign(ctx context.Context, userID, campaignID int32) (*domain.MetaAdCampaign, error)
	DeleteCampaign(ctx context.Context, userID, campaignID int32) error
	ListCampaigns(ctx context.Context, userID, companyID int32) ([]domain.MetaAdCampaign, error)
}

type NotificationService interface {
	Notify(ctx context.Context, userID int32, companyID *int32, title, message string, attrs map[string]string) (*domain.Notification, error)
	List(ctx context.Context, userID, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	UnreadCount(ctx context.Context, userID int32) (int32, error)
}

type EmailService interface {
	SendInvite(ctx context.Context, to, toName, companyName, campaignTitle string) error
	SendApplicationDecision(ctx context.Context, to, toName, campaignTitle string, accepted bool) error
	SendTierUpgrade(ctx context.Context, to, toName, companyName, tierName string) error
	SendApplicationDigest(ctx context.Context, to, toName, companyName string, pending int32) error
}

type PushService interface {
	SendToUser(ctx context.Context, userID int32, title, body string, data map[string]string) error
}

type ExportService interface {
	CampaignApplications(ctx context.Context, userID, campaignID int32) ([]byte, string, error)
	Creators(ctx context.Context, filter domain.CreatorSearchFilter) ([]byte, string, error)
}

// UploadTicket tells the client where to PUT a file and when the URL stops working
type UploadTicket struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MediaService interface {
	RequestAvatarUpload(ctx context.Context, userID int32, contentType string, size int64) (*UploadTicket, error)
	ConfirmAvatar(ctx context.Context, userID int32) (*domain.User, error)
	AvatarDownloadURL(ctx context.Context, userID int32) (string, error)
}

// Third-party boundaries, satisfied by internal/clients and internal/notify.

type CNPJProvider interface {
	LookupCNPJ(ctx context.Context, cnpj string) (*domain.CNPJInfo, error)
}

type CEPProvider interface {
	LookupCEP(ctx context.Context, cep string) (*domain.Address, error)
}

type MunicipalityProvider interface {
	ListMunicipalities(ctx context.Context, uf string) ([]domain.Municipality, error)
}

type InstagramAPI interface {
	BusinessDiscovery(ctx context.Context, businessID, token, handle string) (*domain.ProviderProfile, error)
	ListConversations(ctx context.Context, businessID, token string) ([]clients.GraphConversation, error)
	SendMessage(ctx context.Context, businessID, token, recipientID, text string) (string, error)
}

type TikTokAPI interface {
	Profile(ctx context.Context, handle string) (*domain.ProviderProfile, error)
}

type AdsAPI interface {
	Configured() bool
	CreateCampaign(ctx context.Context, name, objective string, dailyBudgetCents int64) (string, error)
	SetCampaignStatus(ctx context.Context, metaCampaignID, status string) error
}

// Publisher delivers an envelope to every live connection of a user and returns how many received it.
type Publisher interface {
	Publish(userID int32, env domain.Envelope) int
}

// ProfileFetcher resolves a public creator profile on a social provider.
// company may be nil; when it carries Instagram credentials they are used instead of the platform ones.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, provider domain.SocialProvider, handle string, company *domain.Company) (*domain.ProviderProfile, error)
}
