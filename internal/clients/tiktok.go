package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
)

// TikTokClient reads public creator data through the TikTok research API
type TikTokClient struct {
	http  *resty.Client
	token string
	now   func() time.Time
}

func NewTikTokClient(baseURL, token string, timeout time.Duration) *TikTokClient {
	return &TikTokClient{
		http:  newRestClient(baseURL, timeout).SetAuthToken(token),
		token: token,
		now:   time.Now,
	}
}

type tiktokEnvelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type tiktokUser struct {
	DisplayName    string `json:"display_name"`
	BioDescription string `json:"bio_description"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	VideoCount     int64  `json:"video_count"`
}

type tiktokVideos struct {
	Videos []struct {
		ID               int64  `json:"id"`
		LikeCount        int64  `json:"like_count"`
		CommentCount     int64  `json:"comment_count"`
		ViewCount        int64  `json:"view_count"`
		CreateTime       int64  `json:"create_time"`
		VideoDescription string `json:"video_description"`
	} `json:"videos"`
}

// Profile fetches user info and the last 30 days of videos
func (c *TikTokClient) Profile(ctx context.Context, handle string) (*domain.ProviderProfile, error) {
	logger.ExternalServiceCall("tiktok", "user_info", "handle", handle)

	var user tiktokEnvelope[tiktokUser]
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("fields", "display_name,bio_description,follower_count,following_count,video_count").
		SetBody(map[string]string{"username": handle}).
		SetResult(&user).
		Post("/v2/research/user/info/")
	if err := checkResponse("tiktok", "user_info", resp, err); err != nil {
		return nil, err
	}
	if err := tiktokError("user_info", user.Error.Code, user.Error.Message); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	var videos tiktokEnvelope[tiktokVideos]
	resp, err = c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("fields", "id,like_count,comment_count,view_count,create_time,video_description").
		SetBody(map[string]any{
			"query": map[string]any{
				"and": []map[string]any{{"operation": "EQ", "field_name": "username", "field_values": []string{handle}}},
			},
			"start_date": now.AddDate(0, 0, -30).Format("20060102"),
			"end_date":   now.Format("20060102"),
			"max_count":  20,
		}).
		SetResult(&videos).
		Post("/v2/research/video/query/")
	if err := checkResponse("tiktok", "video_query", resp, err); err != nil {
		return nil, err
	}
	if err := tiktokError("video_query", videos.Error.Code, videos.Error.Message); err != nil {
		return nil, err
	}

	profile := &domain.ProviderProfile{
		Provider:  domain.ProviderTikTok,
		Handle:    handle,
		FullName:  user.Data.DisplayName,
		Biography: user.Data.BioDescription,
		Followers: user.Data.FollowerCount,
		Following: user.Data.FollowingCount,
		Posts:     user.Data.VideoCount,
	}
	for _, v := range videos.Data.Videos {
		profile.Media = append(profile.Media, domain.MediaSample{
			Likes:     v.LikeCount,
			Comments:  v.CommentCount,
			Views:     v.ViewCount,
			Caption:   v.VideoDescription,
			Timestamp: time.Unix(v.CreateTime, 0).UTC(),
		})
	}
	return profile, nil
}

func tiktokError(operation, code, message string) error {
	switch code {
	case "", "ok":
		return nil
	case "rate_limit_exceeded":
		return fmt.Errorf("%w: tiktok %s: %s", ErrRateLimited, operation, message)
	case "invalid_params", "user_not_found":
		return fmt.Errorf("%w: tiktok %s: %s", ErrNotFound, operation, message)
	}
	return fmt.Errorf("%w: tiktok %s: %s: %s", ErrUpstream, operation, code, message)
}
