package clients

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"ugc-marketplace-backend/internal/logger"
)

var (
	ErrNotFound    = errors.New("resource not found at provider")
	ErrRateLimited = errors.New("provider rate limit reached")
	ErrUnavailable = errors.New("provider unavailable")
	ErrUpstream    = errors.New("provider returned an error")
)

// newRestClient builds a JSON client that retries idempotent GETs on transport errors and 5xx.
func newRestClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
}

// checkResponse logs the call outcome and turns transport or status failures into sentinel errors.
func checkResponse(service, operation string, resp *resty.Response, err error) error {
	if err != nil {
		err = fmt.Errorf("%w: %s %s: %v", ErrUnavailable, service, operation, err)
		logger.ExternalServiceResult(service, operation, err)
		return err
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusNotFound:
		err = fmt.Errorf("%w: %s %s", ErrNotFound, service, operation)
	case status == http.StatusTooManyRequests:
		err = fmt.Errorf("%w: %s %s", ErrRateLimited, service, operation)
	case status >= 400:
		err = fmt.Errorf("%w: %s %s: status %d: %s", ErrUpstream, service, operation, status, truncate(resp.String(), 300))
	}
	logger.ExternalServiceResult(service, operation, err, "status", status, "elapsed_ms", resp.Time().Milliseconds())
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
