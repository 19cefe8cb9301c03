package storage

import (
	"context"
	"fmt"
)

// Config selects and configures a storage backend
type Config struct {
	Type      string // "mock" or "minio"
	MockDir   string // Directory for mock storage
	BaseURL   string // Public server URL used in mock URLs
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// New builds the backend named by cfg.Type
func New(ctx context.Context, cfg Config) (StorageInterface, error) {
	switch cfg.Type {
	case "", "mock":
		return NewMockStorageService(cfg.BaseURL, cfg.MockDir)
	case "minio":
		return NewMinioStorage(ctx, cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.UseSSL)
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}
