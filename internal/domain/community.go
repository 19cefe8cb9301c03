package domain

import "time"

type Tier struct {
	ID        int32  `json:"id"`
	CompanyID int32  `json:"company_id"`
	Name      string `json:"name"`
	MinPoints int64  `json:"min_points"`
	Benefits  string `json:"benefits"`
}

type MembershipStatus string

const (
	MembershipStatusActive  MembershipStatus = "active"
	MembershipStatusExpired MembershipStatus = "expired"
	MembershipStatusRevoked MembershipStatus = "revoked"
)

// MembershipTTL is how long a community membership lasts before it must be renewed
const MembershipTTL = 365 * 24 * time.Hour

type CommunityMembership struct {
	ID        int32            `json:"id"`
	CompanyID int32            `json:"company_id"`
	CreatorID int32            `json:"creator_id"`
	Points    int64            `json:"points"`
	TierID    *int32           `json:"tier_id,omitempty"`
	Status    MembershipStatus `json:"status"`
	JoinedAt  time.Time        `json:"joined_at"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	Tier      *Tier            `json:"tier,omitempty"`    // Populated when needed
	Creator   *User            `json:"creator,omitempty"` // Populated in member lists
	Company   *Company         `json:"company,omitempty"` // Populated in the creator's list
}

type PointsEvent struct {
	ID           int32     `json:"id"`
	MembershipID int32     `json:"membership_id"`
	Delta        int64     `json:"delta"` // always positive
	Reason       string    `json:"reason"`
	Reference    string    `json:"reference"`
	CreatedOn    time.Time `json:"created_on"`
}

type LeaderboardEntry struct {
	Rank      int32     `json:"rank"`
	CreatorID int32     `json:"creator_id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Points    int64     `json:"points"`
	TierName  string    `json:"tier_name"`
	JoinedAt  time.Time `json:"joined_at"`
}
