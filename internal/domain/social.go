package domain

import (
	"strings"
	"time"
)

type SocialProvider string

const (
	ProviderInstagram SocialProvider = "instagram"
	ProviderTikTok    SocialProvider = "tiktok"
)

func (p SocialProvider) Valid() bool {
	return p == ProviderInstagram || p == ProviderTikTok
}

type SocialAccountStatus string

const (
	SocialAccountPending SocialAccountStatus = "pending"
	SocialAccountActive  SocialAccountStatus = "active"
	SocialAccountExpired SocialAccountStatus = "expired"
	SocialAccountRevoked SocialAccountStatus = "revoked"
)

type SocialAccount struct {
	ID          int32               `json:"id"`
	UserID      int32               `json:"user_id"`
	Provider    SocialProvider      `json:"provider"`
	Handle      string              `json:"handle"`
	ExternalID  string              `json:"external_id"`
	Followers   int64               `json:"followers"`
	AccessToken string              `json:"-"`
	Status      SocialAccountStatus `json:"status"`
	CreatedOn   time.Time           `json:"created_on"`
	UpdatedOn   time.Time           `json:"updated_on"`
}

// NormalizeHandle strips whitespace and a leading "@" and lowercases the handle
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
