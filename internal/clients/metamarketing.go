package clients

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"ugc-marketplace-backend/internal/logger"
)

// MetaMarketingClient creates and updates ad campaigns on the configured ad account
type MetaMarketingClient struct {
	http      *resty.Client
	version   string
	accountID string
	token     string
}

func NewMetaMarketingClient(baseURL, version, accountID, token string, timeout time.Duration) *MetaMarketingClient {
	return &MetaMarketingClient{
		http:      newRestClient(baseURL, timeout),
		version:   version,
		accountID: strings.TrimPrefix(accountID, "act_"),
		token:     token,
	}
}

// Configured reports whether an ad account and token are present
func (c *MetaMarketingClient) Configured() bool {
	return c.accountID != "" && c.token != ""
}

type metaIDResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// CreateCampaign creates a paused campaign and returns its Meta id. Budget is in cents of the account currency.
func (c *MetaMarketingClient) CreateCampaign(ctx context.Context, name, objective string, dailyBudgetCents int64) (string, error) {
	logger.ExternalServiceCall("meta_marketing", "create_campaign", "name", name, "objective", objective)

	var out metaIDResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"version": c.version, "account": c.accountID}).
		SetFormData(map[string]string{
			"name":                  name,
			"objective":             objective,
			"status":                "PAUSED",
			"special_ad_categories": "[]",
			"daily_budget":          strconv.FormatInt(dailyBudgetCents, 10),
			"access_token":          c.token,
		}).
		SetResult(&out).
		SetError(&graphError{}).
		Post("/{version}/act_{account}/campaigns")
	if err := checkResponse("meta_marketing", "create_campaign", resp, err); err != nil {
		return "", err
	}
	return out.ID, nil
}

// SetCampaignStatus sets ACTIVE, PAUSED or ARCHIVED on a Meta campaign
func (c *MetaMarketingClient) SetCampaignStatus(ctx context.Context, metaCampaignID, status string) error {
	logger.ExternalServiceCall("meta_marketing", "set_campaign_status", "campaign", metaCampaignID, "status", status)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"version": c.version, "campaign": metaCampaignID}).
		SetFormData(map[string]string{"status": strings.ToUpper(status), "access_token": c.token}).
		SetResult(&metaIDResponse{}).
		SetError(&graphError{}).
		Post("/{version}/{campaign}")
	return checkResponse("meta_marketing", "set_campaign_status", resp, err)
}
