package storage

import (
	"context"
	"io"
	"time"
)

// StorageInterface is the object store behind avatar and media uploads.
// Clients upload and download through presigned URLs; the API never proxies file bodies
// except for the mock backend.
type StorageInterface interface {
	// GeneratePresignedUploadURL returns a URL the client can PUT the object to until expiresIn elapses.
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists reports whether key was uploaded and its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	DeleteFile(ctx context.Context, key string) error

	// SaveFile and ReadFile back the mock upload/download routes
	SaveFile(key string, reader io.Reader) error
	ReadFile(key string) (io.ReadCloser, error)

	// VerifyUploadToken checks a token issued with an upload URL. Only the mock backend issues tokens.
	VerifyUploadToken(key, token string) bool
}
