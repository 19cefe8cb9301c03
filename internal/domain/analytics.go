package domain

import "time"

type AnalyticsSnapshot struct {
	ID              int32          `json:"id"`
	SocialAccountID *int32         `json:"social_account_id,omitempty"`
	Provider        SocialProvider `json:"provider"`
	Handle          string         `json:"handle"`
	FullName        string         `json:"full_name"`
	Biography       string         `json:"biography"`
	Followers       int64          `json:"followers"`
	Following       int64          `json:"following"`
	Posts           int64          `json:"posts"`
	AvgLikes        float64        `json:"avg_likes"`
	AvgComments     float64        `json:"avg_comments"`
	AvgViews        float64        `json:"avg_views"`
	EngagementRate  float64        `json:"engagement_rate"` // percent
	PostsPerWeek    float64        `json:"posts_per_week"`
	TopHashtags     []string       `json:"top_hashtags"`
	BestHour        int32          `json:"best_hour"` // 0-23 UTC, -1 when unknown
	CapturedAt      time.Time      `json:"captured_at"`
}

// MediaSample is one recent post used to compute engagement metrics
type MediaSample struct {
	Likes     int64
	Comments  int64
	Views     int64
	Caption   string
	Timestamp time.Time
}

// ProviderProfile is the normalized profile returned by Instagram or TikTok
type ProviderProfile struct {
	Provider   SocialProvider
	ExternalID string
	Handle     string
	FullName   string
	Biography  string
	Followers  int64
	Following  int64
	Posts      int64
	Media      []MediaSample
}

type CreatorSearchFilter struct {
	Query         string
	Niche         string
	State         string
	City          string
	Platform      string
	MinFollowers  int64
	MaxFollowers  int64
	MinEngagement float64
	Page          int32
	PageSize      int32
}

type CreatorSearchResult struct {
	UserID         int32    `json:"user_id"`
	Name           string   `json:"name"`
	AvatarURL      string   `json:"avatar_url"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Niches         []string `json:"niches"`
	Platform       string   `json:"platform"`
	Handle         string   `json:"handle"`
	Followers      int64    `json:"followers"`
	EngagementRate float64  `json:"engagement_rate"`
}

type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

type DiscoveryStats struct {
	TotalCreators     int64            `json:"total_creators"`
	ByPlatform        map[string]int64 `json:"by_platform"`
	TopStates         []StateCount     `json:"top_states"`
	AvgEngagementRate float64          `json:"avg_engagement_rate"`
}
