package repository

import (
	"context"
	"errors"
	"time"

	"ugc-marketplace-backend/internal/domain"
)

var (
	// ErrInsufficientBalance is returned when a wallet debit would drive the balance negative.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrNoFreeSlot is returned when accepted and completed applications already fill a campaign.
	ErrNoFreeSlot = errors.New("campaign has no free slot")
	// ErrInviteNotPending is returned when an invite was answered or expired before the write.
	ErrInviteNotPending = errors.New("invite is not pending")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetActiveCompany(ctx context.Context, userID int32, companyID *int32) error
}

type SocialAccountRepository interface {
	Upsert(ctx context.Context, account *domain.SocialAccount) error
	GetByID(ctx context.Context, id int32) (*domain.SocialAccount, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.SocialAccount, error)
	ListActive(ctx context.Context) ([]domain.SocialAccount, error)
	UpdateStatus(ctx context.Context, id int32, status domain.SocialAccountStatus) error
	UpdateStats(ctx context.Context, id int32, followers int64, externalID string) error
}

type CompanyRepository interface {
	// CreateWithOwner inserts the company, adds ownerID as its owner and makes it the owner's active company.
	CreateWithOwner(ctx context.Context, company *domain.Company, ownerID int32) error
	GetByID(ctx context.Context, id int32) (*domain.Company, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*domain.Company, error)
	Update(ctx context.Context, company *domain.Company) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Company, error)
	ListWithInstagram(ctx context.Context) ([]domain.Company, error)

	// Company members
	AddMember(ctx context.Context, member *domain.CompanyMember) error
	GetMember(ctx context.Context, companyID, userID int32) (*domain.CompanyMember, error)
	ListMembers(ctx context.Context, companyID int32) ([]domain.CompanyMember, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	GetByID(ctx context.Context, id int32) (*domain.Campaign, error)
	Update(ctx context.Context, campaign *domain.Campaign) error
	UpdateStatus(ctx context.Context, id int32, status domain.CampaignStatus) error
	ListByCompany(ctx context.Context, companyID int32, status string) ([]domain.Campaign, error)
	ListOpen(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, int32, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id int32) (*domain.Application, error)
	GetByCampaignAndCreator(ctx context.Context, campaignID, creatorID int32) (*domain.Application, error)
	// UpdateStatus moves an application from one status to another; sql.ErrNoRows when it is no longer in `from`.
	UpdateStatus(ctx context.Context, id int32, from, to domain.ApplicationStatus, decidedBy *int32) error
	// Accept moves a pending application to accepted while holding the campaign row lock,
	// failing with ErrNoFreeSlot when the campaign is full.
	Accept(ctx context.Context, app *domain.Application, decidedBy int32) error
	// Complete moves an accepted application to completed and, when commission is not nil, records it
	// together with the wallet credit in the same transaction.
	Complete(ctx context.Context, id, decidedBy int32, commission *domain.Commission, credit *domain.WalletTransaction) error
	ListByCreator(ctx context.Context, creatorID int32, status string) ([]domain.Application, error)
	ListByCampaign(ctx context.Context, campaignID int32, status string) ([]domain.Application, error)
	CountByStatus(ctx context.Context, campaignID int32) (map[domain.ApplicationStatus]int32, error)
	CountPendingByCompany(ctx context.Context, companyID int32) (int32, error)
}

type InviteRepository interface {
	Create(ctx context.Context, invite *domain.CampaignInvite) error
	GetByID(ctx context.Context, id int32) (*domain.CampaignInvite, error)
	GetPending(ctx context.Context, campaignID, creatorID int32) (*domain.CampaignInvite, error)
	// UpdateStatus moves an invite out of pending; sql.ErrNoRows when it is no longer pending.
	UpdateStatus(ctx context.Context, id int32, status domain.InviteStatus) error
	// Accept closes a pending invite and, in the same transaction, creates app (ID 0) or promotes it
	// from pending. ErrInviteNotPending, ErrNoFreeSlot and unique violations roll everything back.
	Accept(ctx context.Context, inviteID int32, app *domain.Application) error
	ListPendingByCreator(ctx context.Context, creatorID int32, now time.Time) ([]domain.CampaignInvite, error)
	ListByCampaign(ctx context.Context, campaignID int32) ([]domain.CampaignInvite, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type CommunityRepository interface {
	ListTiers(ctx context.Context, companyID int32) ([]domain.Tier, error)
	ReplaceTiers(ctx context.Context, companyID int32, tiers []domain.Tier) ([]domain.Tier, error)

	CreateMembership(ctx context.Context, m *domain.CommunityMembership) error
	GetMembership(ctx context.Context, companyID, creatorID int32) (*domain.CommunityMembership, error)
	UpdateMembership(ctx context.Context, m *domain.CommunityMembership) error
	ListMembers(ctx context.Context, companyID int32) ([]domain.CommunityMembership, error)
	ListByCreator(ctx context.Context, creatorID int32) ([]domain.CommunityMembership, error)
	// AddPoints records the event and increments the membership total, returning the new total.
	AddPoints(ctx context.Context, event *domain.PointsEvent) (int64, error)
	SetTier(ctx context.Context, membershipID int32, tierID *int32) error
	Leaderboard(ctx context.Context, companyID int32, limit int32) ([]domain.LeaderboardEntry, error)
	ExpireMemberships(ctx context.Context, now time.Time) (int64, error)
}

type WalletRepository interface {
	GetCommission(ctx context.Context, id int32) (*domain.Commission, error)
	ListCommissions(ctx context.Context, creatorID int32, status string) ([]domain.Commission, error)
	UpdateCommissionStatus(ctx context.Context, id int32, status domain.CommissionStatus) error

	// Withdraw debits the wallet atomically, returning ErrInsufficientBalance when the balance is too low.
	Withdraw(ctx context.Context, tx *domain.WalletTransaction) error
	GetBalance(ctx context.Context, userID int32) (int64, error)
	ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error)
	GetSummary(ctx context.Context, userID int32) (*domain.WalletSummary, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	UnreadCount(ctx context.Context, userID int32) (int32, error)
}

type InboxRepository interface {
	UpsertConversation(ctx context.Context, conv *domain.InstagramConversation) error
	GetConversation(ctx context.Context, id int32) (*domain.InstagramConversation, error)
	ListConversations(ctx context.Context, companyID int32) ([]domain.InstagramConversation, error)
	// InsertMessage stores a message once per external id; inserted is false for duplicates.
	InsertMessage(ctx context.Context, msg *domain.InstagramMessage) (inserted bool, err error)
	ListMessages(ctx context.Context, conversationID int32) ([]domain.InstagramMessage, error)
	MarkRead(ctx context.Context, conversationID int32) error
	TouchConversation(ctx context.Context, conversationID int32, lastMessage string, at time.Time, incrementUnread bool) error
}

type MetaAdsRepository interface {
	CreatePartner(ctx context.Context, p *domain.MetaCreatorPartner) error
	GetPartner(ctx context.Context, id int32) (*domain.MetaCreatorPartner, error)
	GetPartnerByCreator(ctx context.Context, companyID, creatorID int32) (*domain.MetaCreatorPartner, error)
	UpdatePartner(ctx context.Context, p *domain.MetaCreatorPartner) error
	ListPartners(ctx context.Context, companyID int32) ([]domain.MetaCreatorPartner, error)
	ListPartnersByCreator(ctx context.Context, creatorID int32) ([]domain.MetaCreatorPartner, error)

	CreateCampaign(ctx context.Context, c *domain.MetaAdCampaign) error
	GetCampaign(ctx context.Context, id int32) (*domain.MetaAdCampaign, error)
	UpdateCampaign(ctx context.Context, c *domain.MetaAdCampaign) error
	ListCampaigns(ctx context.Context, companyID int32) ([]domain.MetaAdCampaign, error)
}

type AnalyticsRepository interface {
	CreateSnapshot(ctx context.Context, s *domain.AnalyticsSnapshot) error
	History(ctx context.Context, provider domain.SocialProvider, handle string, limit int32) ([]domain.AnalyticsSnapshot, error)

	// Creator discovery
	SearchCreators(ctx context.Context, filter domain.CreatorSearchFilter) ([]domain.CreatorSearchResult, int32, error)
	DiscoveryStats(ctx context.Context) (*domain.DiscoveryStats, error)
}
