package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"ugc-marketplace-backend/internal/cache"
	"ugc-marketplace-backend/internal/clients"
	"ugc-marketplace-backend/internal/config"
	"ugc-marketplace-backend/internal/jobs"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository/postgres"
	"ugc-marketplace-backend/internal/scheduler"
	"ugc-marketplace-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-invites', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting UGC marketplace cronjob runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	var (
		kv      cache.Cache
		limiter cache.RateLimiter
	)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		rs := cache.NewRedis(rdb)
		kv, limiter = rs, rs
	} else {
		mem := cache.NewMemory()
		kv, limiter = mem, mem
	}

	timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	instagram := clients.NewInstagramClient(cfg.Providers.GraphAPIURL, cfg.Providers.GraphAPIVersion, timeout)
	tiktok := clients.NewTikTokClient(cfg.Providers.TikTokAPIURL, cfg.Providers.TikTokAccessToken, timeout)

	// Initialize Services. Jobs have no websocket subscribers, so notifications are stored without a publisher.
	emailService := service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	pushService, err := service.NewPushService(ctx, cfg.Push.CredentialsFile, cfg.Push.ProjectID)
	if err != nil {
		log.Fatalf("Failed to initialize push notifications: %v", err)
	}
	notificationService := service.NewNotificationService(store.NotificationRepository, nil)
	profiles := service.NewProfileFetcher(instagram, tiktok, cfg.Providers.InstagramBusinessID, cfg.Providers.InstagramAccessToken)

	communityService := service.NewCommunityService(store.CommunityRepository, store.CompanyRepository, store.UserRepository,
		notificationService, emailService, pushService)
	inviteService := service.NewInviteService(store.InviteRepository, store.ApplicationRepository, store.CampaignRepository,
		store.CompanyRepository, store.UserRepository, notificationService, emailService, pushService)
	analyticsService := service.NewAnalyticsService(store.AnalyticsRepository, store.SocialAccountRepository, store.CompanyRepository,
		profiles, kv, limiter, service.AnalyticsLimits{
			PerWindow: cfg.RateLimit.AnalyticsPerWindow,
			Window:    time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			CacheTTL:  time.Duration(cfg.Cache.AnalyticsTTLMinutes) * time.Minute,
		})
	inboxService := service.NewInboxService(store.InboxRepository, store.CompanyRepository, instagram, nil,
		cfg.Providers.WebhookVerifyToken)

	jobServices := &jobs.Services{
		Email:     emailService,
		Community: communityService,
		Invite:    inviteService,
		Analytics: analyticsService,
		Inbox:     inboxService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store.SocialAccountRepository, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !jobRunner.RunByName(*runOnce) {
			logger.Error("Unknown job name", "job", *runOnce)
			fmt.Printf("Available jobs:\n")
			for _, name := range jobs.JobNames() {
				fmt.Printf("  - %s\n", name)
			}
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to configure scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
