package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/storage"
)

const (
	uploadURLTTL   = 15 * time.Minute
	downloadURLTTL = time.Hour
)

type mediaService struct {
	userRepo     repository.UserRepository
	store        storage.StorageInterface
	publicURL    string
	allowedTypes []string
	maxBytes     int64
}

func NewMediaService(userRepo repository.UserRepository, store storage.StorageInterface, publicURL string,
	allowedTypes []string, maxBytes int64) MediaService {
	return &mediaService{
		userRepo:     userRepo,
		store:        store,
		publicURL:    strings.TrimRight(publicURL, "/"),
		allowedTypes: allowedTypes,
		maxBytes:     maxBytes,
	}
}

func avatarKey(userID int32) string {
	return fmt.Sprintf("avatars/%d", userID)
}

func (s *mediaService) RequestAvatarUpload(ctx context.Context, userID int32, contentType string, size int64) (*UploadTicket, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if len(s.allowedTypes) > 0 && !slices.Contains(s.allowedTypes, contentType) {
		return nil, validationError("content type %q is not allowed", contentType)
	}
	if size <= 0 {
		return nil, validationError("file size is required")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, validationError("file exceeds the %d MB limit", s.maxBytes/(1024*1024))
	}

	key := avatarKey(userID)
	uploadURL, err := s.store.GeneratePresignedUploadURL(ctx, key, contentType, uploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload url: %w", err)
	}
	logger.Info("Avatar upload requested", "userID", userID, "contentType", contentType, "size", size)
	return &UploadTicket{Key: key, UploadURL: uploadURL, ExpiresAt: time.Now().UTC().Add(uploadURLTTL)}, nil
}

// ConfirmAvatar points the profile at the uploaded object once it exists in storage.
func (s *mediaService) ConfirmAvatar(ctx context.Context, userID int32) (*domain.User, error) {
	key := avatarKey(userID)
	exists, size, err := s.store.FileExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check upload: %w", err)
	}
	if !exists {
		return nil, validationError("no avatar was uploaded")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		if err := s.store.DeleteFile(ctx, key); err != nil {
			logger.Warn("Failed to delete oversized avatar", "userID", userID, "error", err)
		}
		return nil, validationError("file exceeds the %d MB limit", s.maxBytes/(1024*1024))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	user.AvatarURL = fmt.Sprintf("%s/api/media/%s", s.publicURL, key)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	return user, nil
}

func (s *mediaService) AvatarDownloadURL(ctx context.Context, userID int32) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", notFound(err, "user")
	}
	if user.AvatarURL == "" {
		return "", fmt.Errorf("%w: avatar", ErrNotFound)
	}
	return s.store.GeneratePresignedDownloadURL(ctx, avatarKey(userID), downloadURLTTL)
}
