package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
)

const graphTimeLayout = "2006-01-02T15:04:05-0700"

// InstagramClient talks to the Instagram Graph API on behalf of a business account.
// Every call takes the business account id and token so one client serves all companies.
type InstagramClient struct {
	http       *resty.Client
	version    string
	mediaLimit int
}

func NewInstagramClient(baseURL, version string, timeout time.Duration) *InstagramClient {
	return &InstagramClient{http: newRestClient(baseURL, timeout), version: version, mediaLimit: 25}
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type businessDiscoveryResponse struct {
	BusinessDiscovery struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		Name           string `json:"name"`
		Biography      string `json:"biography"`
		FollowersCount int64  `json:"followers_count"`
		FollowsCount   int64  `json:"follows_count"`
		MediaCount     int64  `json:"media_count"`
		Media          struct {
			Data []struct {
				LikeCount     int64  `json:"like_count"`
				CommentsCount int64  `json:"comments_count"`
				Caption       string `json:"caption"`
				Timestamp     string `json:"timestamp"`
			} `json:"data"`
		} `json:"media"`
	} `json:"business_discovery"`
}

// BusinessDiscovery fetches a public professional profile and its recent media.
func (c *InstagramClient) BusinessDiscovery(ctx context.Context, businessID, token, handle string) (*domain.ProviderProfile, error) {
	logger.ExternalServiceCall("instagram", "business_discovery", "handle", handle)

	fields := fmt.Sprintf("business_discovery.username(%s){id,username,name,biography,followers_count,follows_count,media_count,"+
		"media.limit(%d){like_count,comments_count,caption,timestamp}}", handle, c.mediaLimit)

	var out businessDiscoveryResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"version": c.version, "ig": businessID}).
		SetQueryParams(map[string]string{"fields": fields, "access_token": token}).
		SetResult(&out).
		SetError(&graphError{}).
		Get("/{version}/{ig}")
	if err := checkGraph("business_discovery", resp, err); err != nil {
		return nil, err
	}

	bd := out.BusinessDiscovery
	profile := &domain.ProviderProfile{
		Provider:   domain.ProviderInstagram,
		ExternalID: bd.ID,
		Handle:     bd.Username,
		FullName:   bd.Name,
		Biography:  bd.Biography,
		Followers:  bd.FollowersCount,
		Following:  bd.FollowsCount,
		Posts:      bd.MediaCount,
	}
	for _, m := range bd.Media.Data {
		ts, _ := time.Parse(graphTimeLayout, m.Timestamp)
		profile.Media = append(profile.Media, domain.MediaSample{
			Likes:     m.LikeCount,
			Comments:  m.CommentsCount,
			Caption:   m.Caption,
			Timestamp: ts,
		})
	}
	return profile, nil
}

// GraphConversation is one DM thread with its latest messages
type GraphConversation struct {
	ID           string
	UpdatedAt    time.Time
	Participants []GraphParticipant
	Messages     []GraphMessage
}

type GraphParticipant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type GraphMessage struct {
	ID        string
	FromID    string
	Text      string
	CreatedAt time.Time
}

type conversationsResponse struct {
	Data []struct {
		ID           string `json:"id"`
		UpdatedTime  string `json:"updated_time"`
		Participants struct {
			Data []GraphParticipant `json:"data"`
		} `json:"participants"`
		Messages struct {
			Data []struct {
				ID          string `json:"id"`
				Message     string `json:"message"`
				CreatedTime string `json:"created_time"`
				From        struct {
					ID string `json:"id"`
				} `json:"from"`
			} `json:"data"`
		} `json:"messages"`
	} `json:"data"`
}

// ListConversations returns the business account's Instagram DM threads
func (c *InstagramClient) ListConversations(ctx context.Context, businessID, token string) ([]GraphConversation, error) {
	logger.ExternalServiceCall("instagram", "list_conversations", "business_id", businessID)

	var out conversationsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"version": c.version, "ig": businessID}).
		SetQueryParams(map[string]string{
			"platform":     "instagram",
			"fields":       "id,updated_time,participants{id,username,name},messages.limit(20){id,message,created_time,from}",
			"access_token": token,
		}).
		SetResult(&out).
		SetError(&graphError{}).
		Get("/{version}/{ig}/conversations")
	if err := checkGraph("list_conversations", resp, err); err != nil {
		return nil, err
	}

	convs := make([]GraphConversation, 0, len(out.Data))
	for _, d := range out.Data {
		updated, _ := time.Parse(graphTimeLayout, d.UpdatedTime)
		conv := GraphConversation{ID: d.ID, UpdatedAt: updated, Participants: d.Participants.Data}
		for _, m := range d.Messages.Data {
			created, _ := time.Parse(graphTimeLayout, m.CreatedTime)
			conv.Messages = append(conv.Messages, GraphMessage{ID: m.ID, FromID: m.From.ID, Text: m.Message, CreatedAt: created})
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

type sendMessageResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// SendMessage sends a text DM and returns the Graph message id
func (c *InstagramClient) SendMessage(ctx context.Context, businessID, token, recipientID, text string) (string, error) {
	logger.ExternalServiceCall("instagram", "send_message", "recipient", recipientID)

	var out sendMessageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"version": c.version, "ig": businessID}).
		SetQueryParam("access_token", token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"recipient": map[string]string{"id": recipientID},
			"message":   map[string]string{"text": text},
		}).
		SetResult(&out).
		SetError(&graphError{}).
		Post("/{version}/{ig}/messages")
	if err := checkGraph("send_message", resp, err); err != nil {
		return "", err
	}
	return out.MessageID, nil
}

// checkGraph maps Graph errors: code 4/17/32/613 are throttling, 803/100 with "does not exist" is not found.
func checkGraph(operation string, resp *resty.Response, err error) error {
	if err == nil && resp.IsError() {
		if ge, ok := resp.Error().(*graphError); ok {
			switch ge.Error.Code {
			case 4, 17, 32, 613:
				logger.ExternalServiceResult("instagram", operation, ErrRateLimited, "code", ge.Error.Code)
				return fmt.Errorf("%w: instagram %s: %s", ErrRateLimited, operation, ge.Error.Message)
			case 803:
				logger.ExternalServiceResult("instagram", operation, ErrNotFound, "code", ge.Error.Code)
				return fmt.Errorf("%w: instagram %s: %s", ErrNotFound, operation, ge.Error.Message)
			case 100:
				if strings.Contains(strings.ToLower(ge.Error.Message), "not exist") || strings.Contains(ge.Error.Message, "Invalid user id") {
					return fmt.Errorf("%w: instagram %s: %s", ErrNotFound, operation, ge.Error.Message)
				}
			}
		}
	}
	return checkResponse("instagram", operation, resp, err)
}
