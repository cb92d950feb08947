// Package memory is a process-local key-value driver for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/nutriquest/internal/domain/repository"
)

type KeyValueRepository struct {
	mu   sync.RWMutex
	data map[string]string

	// FailWrites makes every write return this error; used to simulate unavailable storage.
	FailWrites error
}

func NewKeyValueRepository() *KeyValueRepository {
	return &KeyValueRepository{data: make(map[string]string)}
}

func (r *KeyValueRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

func (r *KeyValueRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	r.data[key] = value
	return nil
}

func (r *KeyValueRepository) SetMany(_ context.Context, entries map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	for k, v := range entries {
		r.data[k] = v
	}
	return nil
}

func (r *KeyValueRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *KeyValueRepository) Close() error { return nil }

var _ repository.KeyValueRepository = (*KeyValueRepository)(nil)
