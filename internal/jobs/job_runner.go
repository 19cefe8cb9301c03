package jobs

import (
	"context"
	"database/sql"
	"time"

	"ugc-marketplace-backend/internal/config"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/service"
)

// jobTimeout bounds a single run so a hung provider cannot stall the next schedule.
const jobTimeout = 10 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	accounts repository.SocialAccountRepository
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email     service.EmailService
	Community service.CommunityService
	Invite    service.InviteService
	Analytics service.AnalyticsService
	Inbox     service.InboxService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, accounts repository.SocialAccountRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		accounts: accounts,
		services: services,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a per-run deadline
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	log := logger.WithJob(jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	log.Info("Starting job")
	jobFunc(ctx)
	log.Info("Job completed", "elapsed_ms", time.Since(start).Milliseconds())
}

// RunAllNightlyJobs runs the daily maintenance jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ExpireMemberships()
	jr.ExpireInvites()
	jr.RefreshAnalytics()
}

// RunByName runs one job by its CLI name. It returns false for unknown names.
func (jr *JobRunner) RunByName(name string) bool {
	switch name {
	case "expire-memberships":
		jr.ExpireMemberships()
	case "expire-invites":
		jr.ExpireInvites()
	case "refresh-analytics":
		jr.RefreshAnalytics()
	case "sync-instagram-inboxes":
		jr.SyncInstagramInboxes()
	case "send-application-digest":
		jr.SendApplicationDigest()
	case "all-nightly":
		jr.RunAllNightlyJobs()
	default:
		return false
	}
	return true
}

// JobNames lists the names accepted by RunByName.
func JobNames() []string {
	return []string{
		"expire-memberships",
		"expire-invites",
		"refresh-analytics",
		"sync-instagram-inboxes",
		"send-application-digest",
		"all-nightly",
	}
}
