package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/internal/domain/entity"
)

// UploadFunc stores r at objectPath and returns its public URL.
type UploadFunc func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)

// AvatarService uploads avatar images and points the profile at them.
type AvatarService struct {
	Store  *ProfileStore
	Upload UploadFunc
	Logger *logrus.Logger
}

func NewAvatarService(store *ProfileStore, upload UploadFunc, logger *logrus.Logger) *AvatarService {
	return &AvatarService{Store: store, Upload: upload, Logger: logger}
}

func (s *AvatarService) UploadAvatar(ctx context.Context, r io.Reader, filename, contentType string) (entity.UserProfile, error) {
	if s.Upload == nil {
		return entity.UserProfile{}, ErrStorageDisabled
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return entity.UserProfile{}, fmt.Errorf("%w: avatar must be an image, got %q", ErrInvalidArgument, contentType)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := "avatars/" + uuid.NewString() + ext

	url, err := s.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("object", objectPath).Error("avatar upload failed")
		}
		return entity.UserProfile{}, err
	}
	return s.Store.UpdateProfile(ctx, entity.ProfilePatch{Avatar: &url})
}
