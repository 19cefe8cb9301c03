package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStorage_UploadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewMockStorageService("http://localhost:8080/", t.TempDir())
	require.NoError(t, err)

	uploadURL, err := s.GeneratePresignedUploadURL(ctx, "avatars/7", "image/png", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(uploadURL)
	require.NoError(t, err)
	assert.Equal(t, "/api/media/mock/avatars/7", u.Path)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)

	assert.False(t, s.VerifyUploadToken("avatars/8", token), "token is bound to its key")
	assert.True(t, s.VerifyUploadToken("avatars/7", token))
	assert.False(t, s.VerifyUploadToken("avatars/7", token), "token is single use")

	require.NoError(t, s.SaveFile("avatars/7", strings.NewReader("png-bytes")))
	exists, size, err := s.FileExists(ctx, "avatars/7")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(9), size)

	rc, err := s.ReadFile("avatars/7")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.DeleteFile(ctx, "avatars/7"))
	exists, _, err = s.FileExists(ctx, "avatars/7")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMockStorage_ExpiredToken(t *testing.T) {
	s, err := NewMockStorageService("http://localhost:8080", t.TempDir())
	require.NoError(t, err)
	now := time.Now()
	s.now = func() time.Time { return now }

	uploadURL, err := s.GeneratePresignedUploadURL(context.Background(), "avatars/7", "image/png", time.Minute)
	require.NoError(t, err)
	u, _ := url.Parse(uploadURL)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.False(t, s.VerifyUploadToken("avatars/7", u.Query().Get("token")))
}

func TestMockStorage_KeysStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	s, err := NewMockStorageService("http://localhost:8080", root)
	require.NoError(t, err)

	require.NoError(t, s.SaveFile("../../escape.txt", strings.NewReader("x")))
	exists, _, err := s.FileExists(context.Background(), "escape.txt")
	require.NoError(t, err)
	assert.True(t, exists, "traversal segments are cleaned under the root")

	_, err = s.GeneratePresignedDownloadURL(context.Background(), "", time.Minute)
	assert.Error(t, err)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(context.Background(), Config{Type: "s3"})
	assert.Error(t, err)
}
