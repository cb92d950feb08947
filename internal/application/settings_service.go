package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/internal/domain/entity"
	repo "github.com/oksasatya/nutriquest/internal/domain/repository"
)

// SettingsService owns the notificationSettings key.
type SettingsService struct {
	Repo   repo.KeyValueRepository
	Logger *logrus.Logger

	mu sync.Mutex
}

func NewSettingsService(r repo.KeyValueRepository, logger *logrus.Logger) *SettingsService {
	return &SettingsService{Repo: r, Logger: logger}
}

// NotificationSettings returns the stored preferences. Missing fields, a
// missing key or an unreadable value fall back to the defaults.
func (s *SettingsService) NotificationSettings(ctx context.Context) entity.NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// UpdateNotificationSettings merges patch into the stored preferences.
func (s *SettingsService) UpdateNotificationSettings(ctx context.Context, patch entity.NotificationSettingsPatch) (entity.NotificationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.loadLocked(ctx).Apply(patch)
	b, _ := json.Marshal(next)
	if err := s.Repo.Set(ctx, repo.KeyNotificationSettings, string(b)); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Error("persist notification settings failed")
		}
		return entity.NotificationSettings{}, err
	}
	return next, nil
}

func (s *SettingsService) loadLocked(ctx context.Context) entity.NotificationSettings {
	out := entity.DefaultNotificationSettings()
	raw, err := s.Repo.Get(ctx, repo.KeyNotificationSettings)
	if err != nil {
		if !errors.Is(err, repo.ErrKeyNotFound) && s.Logger != nil {
			s.Logger.WithError(err).Warn("read notification settings failed")
		}
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("invalid notification settings, using defaults")
		}
		return entity.DefaultNotificationSettings()
	}
	return out
}
