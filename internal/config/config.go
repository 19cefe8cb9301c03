package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Email     EmailConfig     `yaml:"email"`
	Push      PushConfig      `yaml:"push"`
	Storage   StorageConfig   `yaml:"storage"`
	Providers ProvidersConfig `yaml:"providers"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	PublicURL       string `yaml:"public_url"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains cache/rate limit store settings. An empty address keeps both in process.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// EmailConfig contains SendGrid settings. An empty API key disables delivery.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromAddress    string `yaml:"from_address"`
	FromName       string `yaml:"from_name"`
}

// PushConfig contains Firebase Cloud Messaging settings. Empty credentials disable push.
type PushConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
}

// StorageConfig contains media storage settings
type StorageConfig struct {
	Type         string   `yaml:"type"`       // "mock" or "minio"
	UploadDir    string   `yaml:"upload_dir"` // For mock storage
	BaseURL      string   `yaml:"base_url"`   // Server base URL for mock URLs
	MaxFileSize  int64    `yaml:"max_file_size_mb"`
	AllowedTypes []string `yaml:"allowed_types"`
	Endpoint     string   `yaml:"endpoint"`
	AccessKey    string   `yaml:"access_key"`
	SecretKey    string   `yaml:"secret_key"`
	Bucket       string   `yaml:"bucket"`
	UseSSL       bool     `yaml:"use_ssl"`
}

// ProvidersConfig holds base URLs and credentials of third-party APIs
type ProvidersConfig struct {
	BrasilAPIURL         string `yaml:"brasilapi_url"`
	ViaCEPURL            string `yaml:"viacep_url"`
	IBGEURL              string `yaml:"ibge_url"`
	GraphAPIURL          string `yaml:"graph_api_url"`
	GraphAPIVersion      string `yaml:"graph_api_version"`
	InstagramBusinessID  string `yaml:"instagram_business_id"`
	InstagramAccessToken string `yaml:"instagram_access_token"`
	WebhookVerifyToken   string `yaml:"webhook_verify_token"`
	InstagramAppSecret   string `yaml:"instagram_app_secret"` // signs webhook deliveries (X-Hub-Signature-256)
	TikTokAPIURL         string `yaml:"tiktok_api_url"`
	TikTokAccessToken    string `yaml:"tiktok_access_token"`
	MetaAdAccountID      string `yaml:"meta_ad_account_id"`
	MetaAccessToken      string `yaml:"meta_access_token"`
	TimeoutSeconds       int    `yaml:"timeout_seconds"`
}

// RateLimitConfig bounds calls to the paid analytics providers per company
type RateLimitConfig struct {
	AnalyticsPerWindow int `yaml:"analytics_per_window"`
	WindowSeconds      int `yaml:"window_seconds"`
}

// CacheConfig contains cache TTLs
type CacheConfig struct {
	AnalyticsTTLMinutes  int `yaml:"analytics_ttl_minutes"`
	EnrichmentTTLMinutes int `yaml:"enrichment_ttl_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (seconds precision)
type SchedulerConfig struct {
	ExpireMemberships     string `yaml:"expire_memberships"`
	ExpireInvites         string `yaml:"expire_invites"`
	RefreshAnalytics      string `yaml:"refresh_analytics"`
	SyncInstagramInboxes  string `yaml:"sync_instagram_inboxes"`
	SendApplicationDigest string `yaml:"send_application_digest"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes, applying env overrides and defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Email / push
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Push.CredentialsFile = val
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}
	if val := os.Getenv("MINIO_ACCESS_KEY"); val != "" {
		c.Storage.AccessKey = val
	}
	if val := os.Getenv("MINIO_SECRET_KEY"); val != "" {
		c.Storage.SecretKey = val
	}

	// Providers
	if val := os.Getenv("INSTAGRAM_ACCESS_TOKEN"); val != "" {
		c.Providers.InstagramAccessToken = val
	}
	if val := os.Getenv("META_ACCESS_TOKEN"); val != "" {
		c.Providers.MetaAccessToken = val
	}
	if val := os.Getenv("TIKTOK_ACCESS_TOKEN"); val != "" {
		c.Providers.TikTokAccessToken = val
	}
	if val := os.Getenv("WEBHOOK_VERIFY_TOKEN"); val != "" {
		c.Providers.WebhookVerifyToken = val
	}
	if val := os.Getenv("INSTAGRAM_APP_SECRET"); val != "" {
		c.Providers.InstagramAppSecret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}

	switch c.Storage.Type {
	case "", "mock":
		c.Storage.Type = "mock"
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required for mock storage")
		}
	case "minio":
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("minio storage requires endpoint and bucket")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.MaxFileSize == 0 {
		c.Storage.MaxFileSize = 10
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}

	if c.Email.FromAddress == "" {
		c.Email.FromAddress = "no-reply@ugc-marketplace.local"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "UGC Marketplace"
	}

	// Provider defaults
	if c.Providers.BrasilAPIURL == "" {
		c.Providers.BrasilAPIURL = "https://brasilapi.com.br"
	}
	if c.Providers.ViaCEPURL == "" {
		c.Providers.ViaCEPURL = "https://viacep.com.br"
	}
	if c.Providers.IBGEURL == "" {
		c.Providers.IBGEURL = "https://servicodados.ibge.gov.br"
	}
	if c.Providers.GraphAPIURL == "" {
		c.Providers.GraphAPIURL = "https://graph.facebook.com"
	}
	if c.Providers.GraphAPIVersion == "" {
		c.Providers.GraphAPIVersion = "v21.0"
	}
	if c.Providers.TikTokAPIURL == "" {
		c.Providers.TikTokAPIURL = "https://open.tiktokapis.com"
	}
	if c.Providers.TimeoutSeconds == 0 {
		c.Providers.TimeoutSeconds = 15
	}

	// Rate limit / cache defaults
	if c.RateLimit.AnalyticsPerWindow == 0 {
		c.RateLimit.AnalyticsPerWindow = 30
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Cache.AnalyticsTTLMinutes == 0 {
		c.Cache.AnalyticsTTLMinutes = 360
	}
	if c.Cache.EnrichmentTTLMinutes == 0 {
		c.Cache.EnrichmentTTLMinutes = 24 * 60
	}

	if c.Server.ShutdownSeconds == 0 {
		c.Server.ShutdownSeconds = 10
	}

	// Scheduler defaults
	if c.Scheduler.ExpireMemberships == "" {
		c.Scheduler.ExpireMemberships = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.ExpireInvites == "" {
		c.Scheduler.ExpireInvites = "0 15 1 * * *" // 1:15 AM UTC
	}
	if c.Scheduler.RefreshAnalytics == "" {
		c.Scheduler.RefreshAnalytics = "0 0 3 * * *" // 3 AM UTC
	}
	if c.Scheduler.SyncInstagramInboxes == "" {
		c.Scheduler.SyncInstagramInboxes = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.SendApplicationDigest == "" {
		c.Scheduler.SendApplicationDigest = "0 0 9 * * *" // 9 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AccessTokenTTL returns the access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTokenExpiry) * time.Minute
}
