package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ugc-marketplace-backend/internal/logger"
)

// MockStorageService keeps objects on the local filesystem and serves them through the API's
// /api/media/mock routes. Upload URLs carry a one-time token.
type MockStorageService struct {
	baseURL string
	rootDir string

	mu     sync.Mutex
	tokens map[string]uploadToken
	now    func() time.Time
}

type uploadToken struct {
	key     string
	expires time.Time
}

func NewMockStorageService(baseURL, rootDir string) (*MockStorageService, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &MockStorageService{
		baseURL: strings.TrimRight(baseURL, "/"),
		rootDir: rootDir,
		tokens:  make(map[string]uploadToken),
		now:     time.Now,
	}, nil
}

func (m *MockStorageService) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	if _, err := m.path(key); err != nil {
		return "", err
	}
	token := uuid.NewString()

	m.mu.Lock()
	now := m.now()
	for t, v := range m.tokens {
		if now.After(v.expires) {
			delete(m.tokens, t)
		}
	}
	m.tokens[token] = uploadToken{key: key, expires: now.Add(expiresIn)}
	m.mu.Unlock()

	return fmt.Sprintf("%s/api/media/mock/%s?token=%s", m.baseURL, key, url.QueryEscape(token)), nil
}

func (m *MockStorageService) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := m.path(key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/media/mock/%s", m.baseURL, key), nil
}

// VerifyUploadToken consumes token if it was issued for key and has not expired.
func (m *MockStorageService) VerifyUploadToken(key, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok || t.key != key || m.now().After(t.expires) {
		return false
	}
	delete(m.tokens, token)
	return true
}

func (m *MockStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (m *MockStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (m *MockStorageService) SaveFile(key string, reader io.Reader) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Debug("Mock storage saved object", "key", key, "bytes", n)
	return nil
}

func (m *MockStorageService) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// path resolves key under the storage root and rejects keys that escape it.
func (m *MockStorageService) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(m.rootDir, clean), nil
}
