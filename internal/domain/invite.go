package domain

import "time"

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
)

// InviteTTL is how long a campaign invite stays open
const InviteTTL = 7 * 24 * time.Hour

type CampaignInvite struct {
	ID          int32        `json:"id"`
	CampaignID  int32        `json:"campaign_id"`
	CompanyID   int32        `json:"company_id"`
	CreatorID   int32        `json:"creator_id"`
	Message     string       `json:"message"`
	Status      InviteStatus `json:"status"`
	SentBy      int32        `json:"sent_by"`
	ExpiresAt   time.Time    `json:"expires_at"`
	CreatedOn   time.Time    `json:"created_on"`
	RespondedOn *time.Time   `json:"responded_on,omitempty"`
	Campaign    *Campaign    `json:"campaign,omitempty"` // Populated for the creator's list
}

// IsOpen reports whether the invite can still be answered at now
func (i *CampaignInvite) IsOpen(now time.Time) bool {
	return i.Status == InviteStatusPending && now.Before(i.ExpiresAt)
}
