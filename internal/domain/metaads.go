package domain

import "time"

type PartnerStatus string

const (
	PartnerStatusPending  PartnerStatus = "pending"
	PartnerStatusApproved PartnerStatus = "approved"
	PartnerStatusRevoked  PartnerStatus = "revoked"
)

type MetaCreatorPartner struct {
	ID               int32         `json:"id"`
	CompanyID        int32         `json:"company_id"`
	CreatorID        int32         `json:"creator_id"`
	InstagramHandle  string        `json:"instagram_handle"`
	MetaPermissionID string        `json:"meta_permission_id"`
	Status           PartnerStatus `json:"status"`
	CreatedOn        time.Time     `json:"created_on"`
	UpdatedOn        time.Time     `json:"updated_on"`
}

type AdCampaignStatus string

const (
	AdCampaignDraft    AdCampaignStatus = "draft"
	AdCampaignActive   AdCampaignStatus = "active"
	AdCampaignPaused   AdCampaignStatus = "paused"
	AdCampaignArchived AdCampaignStatus = "archived"
)

func (s AdCampaignStatus) Valid() bool {
	switch s {
	case AdCampaignDraft, AdCampaignActive, AdCampaignPaused, AdCampaignArchived:
		return true
	}
	return false
}

type MetaAdCampaign struct {
	ID               int32            `json:"id"`
	CompanyID        int32            `json:"company_id"`
	PartnerID        int32            `json:"partner_id"`
	Name             string           `json:"name"`
	Objective        string           `json:"objective"`
	DailyBudgetCents int64            `json:"daily_budget_cents"`
	MetaCampaignID   string           `json:"meta_campaign_id"`
	Status           AdCampaignStatus `json:"status"`
	StartsAt         *time.Time       `json:"starts_at,omitempty"`
	EndsAt           *time.Time       `json:"ends_at,omitempty"`
	CreatedOn        time.Time        `json:"created_on"`
	UpdatedOn        time.Time        `json:"updated_on"`
}
