package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "ugc-marketplace-backend/internal/api/http"
	"ugc-marketplace-backend/internal/cache"
	"ugc-marketplace-backend/internal/clients"
	"ugc-marketplace-backend/internal/config"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/notify"
	"ugc-marketplace-backend/internal/repository/postgres"
	"ugc-marketplace-backend/internal/security"
	"ugc-marketplace-backend/internal/service"
	"ugc-marketplace-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting UGC marketplace backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "public_url", cfg.Server.PublicURL)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// Cache and rate limiter: redis when configured, process memory otherwise
	var (
		kv      cache.Cache
		limiter cache.RateLimiter
	)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		rs := cache.NewRedis(rdb)
		kv, limiter = rs, rs
		logger.Info("Redis cache enabled", "addr", cfg.Redis.Addr)
	} else {
		mem := cache.NewMemory()
		kv, limiter = mem, mem
		logger.Warn("Redis not configured, using in-process cache")
	}

	// Media storage
	var mockStorage *storage.MockStorageService
	mediaStore, err := storage.New(ctx, storage.Config{
		Type:      cfg.Storage.Type,
		MockDir:   cfg.Storage.UploadDir,
		BaseURL:   cfg.Storage.BaseURL,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Error("Failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if ms, ok := mediaStore.(*storage.MockStorageService); ok {
		mockStorage = ms
		logger.Info("Using mock storage", "upload_dir", cfg.Storage.UploadDir)
	}
	maxUploadBytes := cfg.Storage.MaxFileSize * 1024 * 1024

	// Third-party clients
	timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	brasilAPI := clients.NewBrasilAPIClient(cfg.Providers.BrasilAPIURL, timeout)
	viaCEP := clients.NewViaCEPClient(cfg.Providers.ViaCEPURL, timeout)
	ibge := clients.NewIBGEClient(cfg.Providers.IBGEURL, timeout)
	instagram := clients.NewInstagramClient(cfg.Providers.GraphAPIURL, cfg.Providers.GraphAPIVersion, timeout)
	tiktok := clients.NewTikTokClient(cfg.Providers.TikTokAPIURL, cfg.Providers.TikTokAccessToken, timeout)
	metaAds := clients.NewMetaMarketingClient(cfg.Providers.GraphAPIURL, cfg.Providers.GraphAPIVersion,
		cfg.Providers.MetaAdAccountID, cfg.Providers.MetaAccessToken, timeout)

	// Notifications
	hub := notify.NewHub()
	emailService := service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	pushService, err := service.NewPushService(ctx, cfg.Push.CredentialsFile, cfg.Push.ProjectID)
	if err != nil {
		logger.Error("Failed to initialize push notifications", "error", err)
		log.Fatalf("Failed to initialize push notifications: %v", err)
	}
	notificationService := service.NewNotificationService(store.NotificationRepository, hub)

	// Initialize Services
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	profiles := service.NewProfileFetcher(instagram, tiktok, cfg.Providers.InstagramBusinessID, cfg.Providers.InstagramAccessToken)
	communityService := service.NewCommunityService(store.CommunityRepository, store.CompanyRepository, store.UserRepository,
		notificationService, emailService, pushService)
	discoveryService := service.NewDiscoveryService(store.AnalyticsRepository, kv)

	authService := service.NewAuthService(store.UserRepository, tokenManager, cfg.AccessTokenTTL())
	userService := service.NewUserService(store.UserRepository, store.SocialAccountRepository, store.CompanyRepository, profiles)
	companyService := service.NewCompanyService(store.CompanyRepository, store.UserRepository, brasilAPI)
	campaignService := service.NewCampaignService(store.CampaignRepository, store.ApplicationRepository, store.CompanyRepository)
	applicationService := service.NewApplicationService(store.ApplicationRepository, store.CampaignRepository, store.CompanyRepository,
		store.UserRepository, store.InviteRepository, communityService, notificationService,
		emailService, pushService)
	inviteService := service.NewInviteService(store.InviteRepository, store.ApplicationRepository, store.CampaignRepository,
		store.CompanyRepository, store.UserRepository, notificationService, emailService, pushService)
	walletService := service.NewWalletService(store.WalletRepository, store.CompanyRepository)
	analyticsService := service.NewAnalyticsService(store.AnalyticsRepository, store.SocialAccountRepository, store.CompanyRepository,
		profiles, kv, limiter, service.AnalyticsLimits{
			PerWindow: cfg.RateLimit.AnalyticsPerWindow,
			Window:    time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			CacheTTL:  time.Duration(cfg.Cache.AnalyticsTTLMinutes) * time.Minute,
		})
	enrichmentService := service.NewEnrichmentService(brasilAPI, viaCEP, ibge, kv,
		time.Duration(cfg.Cache.EnrichmentTTLMinutes)*time.Minute)
	inboxService := service.NewInboxService(store.InboxRepository, store.CompanyRepository, instagram, hub,
		cfg.Providers.WebhookVerifyToken)
	metaAdsService := service.NewMetaAdsService(store.MetaAdsRepository, store.CompanyRepository, store.SocialAccountRepository,
		metaAds, notificationService, pushService)
	exportService := service.NewExportService(store.CampaignRepository, store.ApplicationRepository, store.CompanyRepository,
		discoveryService)
	mediaService := service.NewMediaService(store.UserRepository, mediaStore, cfg.Server.PublicURL, cfg.Storage.AllowedTypes,
		maxUploadBytes)

	services := httpapi.Services{
		Auth:         authService,
		User:         userService,
		Company:      companyService,
		Campaign:     campaignService,
		Application:  applicationService,
		Invite:       inviteService,
		Community:    communityService,
		Wallet:       walletService,
		Discovery:    discoveryService,
		Analytics:    analyticsService,
		Enrichment:   enrichmentService,
		Inbox:        inboxService,
		MetaAds:      metaAdsService,
		Notification: notificationService,
		Export:       exportService,
		Media:        mediaService,
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Services:       services,
		TokenManager:   tokenManager,
		Hub:            hub,
		MockStorage:    mockStorage,
		MaxUploadBytes: maxUploadBytes,
		WebhookSecret:  cfg.Providers.InstagramAppSecret,
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
