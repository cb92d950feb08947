package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key was never written.
var ErrKeyNotFound = errors.New("key not found")

// Keys of the persisted dashboard state
const (
	KeyIsAuthenticated     = "isAuthenticated"
	KeyUserInfo            = "userInfo"
	KeyCompletedChallenges = "completedChallenges"

	KeyNotificationSettings = "notificationSettings"
)

// KeyValueRepository defines durable string-keyed storage for the dashboard state.
type KeyValueRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all entries atomically where the backend allows it.
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
