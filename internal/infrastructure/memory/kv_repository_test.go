package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/nutriquest/internal/domain/repository"
)

func TestKeyValueRepository(t *testing.T) {
	ctx := context.Background()
	r := NewKeyValueRepository()

	_, err := r.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, r.Set(ctx, "a", "1"))
	require.NoError(t, r.SetMany(ctx, map[string]string{"a": "2", "b": "3"}))

	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	require.NoError(t, r.Delete(ctx, "b"))
	_, err = r.Get(ctx, "b")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	assert.NoError(t, r.Close())
}

func TestKeyValueRepositoryFailWrites(t *testing.T) {
	ctx := context.Background()
	r := NewKeyValueRepository()
	require.NoError(t, r.Set(ctx, "a", "1"))

	boom := errors.New("boom")
	r.FailWrites = boom
	assert.ErrorIs(t, r.Set(ctx, "a", "2"), boom)
	assert.ErrorIs(t, r.SetMany(ctx, map[string]string{"a": "3"}), boom)

	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}
