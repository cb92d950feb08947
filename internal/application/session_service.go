package application

import (
	"context"
	"errors"
	"strconv"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/nutriquest/internal/domain/repository"
)

// SessionService owns the isAuthenticated flag. There is no credential check;
// login and logout only flip the persisted flag.
type SessionService struct {
	Repo                 repo.KeyValueRepository
	Logger               *logrus.Logger
	DefaultAuthenticated bool
}

func NewSessionService(r repo.KeyValueRepository, logger *logrus.Logger, defaultAuthenticated bool) *SessionService {
	return &SessionService{Repo: r, Logger: logger, DefaultAuthenticated: defaultAuthenticated}
}

// IsAuthenticated reads the flag. A missing or unparsable value yields the default.
func (s *SessionService) IsAuthenticated(ctx context.Context) bool {
	raw, err := s.Repo.Get(ctx, repo.KeyIsAuthenticated)
	if err != nil {
		if !errors.Is(err, repo.ErrKeyNotFound) && s.Logger != nil {
			s.Logger.WithError(err).Warn("read session flag failed")
		}
		return s.DefaultAuthenticated
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithField("value", raw).Warn("invalid session flag, using default")
		}
		return s.DefaultAuthenticated
	}
	return v
}

func (s *SessionService) SetAuthenticated(ctx context.Context, v bool) error {
	if err := s.Repo.Set(ctx, repo.KeyIsAuthenticated, strconv.FormatBool(v)); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("authenticated", v).Error("persist session flag failed")
		}
		return err
	}
	return nil
}
