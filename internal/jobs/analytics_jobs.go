package jobs

import (
	"context"
	"errors"

	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/service"
)

// RefreshAnalytics re-snapshots every active social account.
// A provider rate limit ends the run early; the remaining accounts wait for the next night.
func (jr *JobRunner) RefreshAnalytics() {
	jr.runWithRecovery("RefreshAnalytics", func(ctx context.Context) {
		accounts, err := jr.accounts.ListActive(ctx)
		if err != nil {
			logger.Error("Failed to list social accounts", "error", err)
			return
		}

		refreshed, failed := 0, 0
		for _, account := range accounts {
			if ctx.Err() != nil {
				break
			}
			if _, err := jr.services.Analytics.RefreshAccount(ctx, account); err != nil {
				if errors.Is(err, service.ErrRateLimited) {
					logger.Warn("Provider rate limit reached, stopping refresh", "provider", account.Provider, "remaining", len(accounts)-refreshed-failed)
					break
				}
				logger.Warn("Failed to refresh account", "accountID", account.ID, "handle", account.Handle, "error", err)
				failed++
				continue
			}
			refreshed++
		}
		logger.Info("Analytics refresh finished", "total", len(accounts), "refreshed", refreshed, "failed", failed)
	})
}

// SyncInstagramInboxes pulls DMs for every company with Instagram credentials
func (jr *JobRunner) SyncInstagramInboxes() {
	jr.runWithRecovery("SyncInstagramInboxes", func(ctx context.Context) {
		n, err := jr.services.Inbox.SyncAll(ctx)
		if err != nil {
			logger.Error("Failed to sync Instagram inboxes", "error", err)
			return
		}
		logger.Info("Synced Instagram inboxes", "companies", n)
	})
}
