package jobs

import (
	"context"

	"ugc-marketplace-backend/internal/logger"
)

// ExpireMemberships moves active memberships past expires_at to expired
func (jr *JobRunner) ExpireMemberships() {
	jr.runWithRecovery("ExpireMemberships", func(ctx context.Context) {
		n, err := jr.services.Community.ExpireMemberships(ctx)
		if err != nil {
			logger.Error("Failed to expire memberships", "error", err)
			return
		}
		logger.Info("Expired community memberships", "count", n)
	})
}

// ExpireInvites moves pending invites past expires_at to expired
func (jr *JobRunner) ExpireInvites() {
	jr.runWithRecovery("ExpireInvites", func(ctx context.Context) {
		n, err := jr.services.Invite.ExpireStale(ctx)
		if err != nil {
			logger.Error("Failed to expire invites", "error", err)
			return
		}
		logger.Info("Expired campaign invites", "count", n)
	})
}
