package domain

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft  CampaignStatus = "draft"
	CampaignStatusActive CampaignStatus = "active"
	CampaignStatusPaused CampaignStatus = "paused"
	CampaignStatusClosed CampaignStatus = "closed"
)

type CampaignVisibility string

const (
	CampaignVisibilityPublic     CampaignVisibility = "public"
	CampaignVisibilityInviteOnly CampaignVisibility = "invite_only"
)

type Campaign struct {
	ID                  int32              `json:"id"`
	CompanyID           int32              `json:"company_id"`
	Title               string             `json:"title"`
	Description         string             `json:"description"`
	Niches              []string           `json:"niches"`
	Platforms           []string           `json:"platforms"`
	Deliverables        string             `json:"deliverables"`
	BudgetCents         int64              `json:"budget_cents"`
	CreatorPaymentCents int64              `json:"creator_payment_cents"`
	Slots               int32              `json:"slots"` // 0 means unlimited
	Deadline            *time.Time         `json:"deadline,omitempty"`
	Visibility          CampaignVisibility `json:"visibility"`
	Status              CampaignStatus     `json:"status"`
	CreatedBy           int32              `json:"created_by"`
	CreatedOn           time.Time          `json:"created_on"`
	UpdatedOn           time.Time          `json:"updated_on"`
	Company             *Company           `json:"company,omitempty"` // Populated for creator listings
}

// CanTransition reports whether a campaign may move from s to next
func (s CampaignStatus) CanTransition(next CampaignStatus) bool {
	switch s {
	case CampaignStatusDraft:
		return next == CampaignStatusActive || next == CampaignStatusClosed
	case CampaignStatusActive:
		return next == CampaignStatusPaused || next == CampaignStatusClosed
	case CampaignStatusPaused:
		return next == CampaignStatusActive || next == CampaignStatusClosed
	}
	return false
}

// Editable reports whether campaign fields may still be changed
func (s CampaignStatus) Editable() bool {
	return s == CampaignStatusDraft || s == CampaignStatusPaused
}

type CampaignFilter struct {
	Niche    string
	Platform string
	Page     int32
	PageSize int32
}

type CampaignStats struct {
	CampaignID int32                       `json:"campaign_id"`
	ByStatus   map[ApplicationStatus]int32 `json:"by_status"`
	Total      int32                       `json:"total"`
	SlotsLeft  *int32                      `json:"slots_left,omitempty"`
}
