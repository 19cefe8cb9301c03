package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
	ApplicationStatusCompleted ApplicationStatus = "completed"
)

type Application struct {
	ID            int32             `json:"id"`
	CampaignID    int32             `json:"campaign_id"`
	CreatorID     int32             `json:"creator_id"`
	Pitch         string            `json:"pitch"`
	ProposedCents int64             `json:"proposed_cents"`
	InviteID      *int32            `json:"invite_id,omitempty"`
	Status        ApplicationStatus `json:"status"`
	DecidedBy     *int32            `json:"decided_by,omitempty"`
	CreatedOn     time.Time         `json:"created_on"`
	UpdatedOn     time.Time         `json:"updated_on"`
	Campaign      *Campaign         `json:"campaign,omitempty"` // Populated when needed
	Creator       *User             `json:"creator,omitempty"`  // Populated when needed
}
