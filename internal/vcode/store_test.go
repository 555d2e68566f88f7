package vcode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "13800000001")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "13800000001", "123456", time.Minute))
	code, err := s.Get(ctx, "13800000001")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	// Reading does not consume the code.
	code, err = s.Get(ctx, "13800000001")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
}

func TestMemoryStoreTTL(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStoreAt(func() time.Time { return clock })
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "13800000001", "123456", 5*time.Minute))

	clock = clock.Add(5 * time.Minute)
	code, err := s.Get(ctx, "13800000001")
	require.NoError(t, err, "a code at its exact expiry instant is still valid")
	assert.Equal(t, "123456", code)

	clock = clock.Add(time.Second)
	_, err = s.Get(ctx, "13800000001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStoreAt(func() time.Time { return clock })
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "13800000001", "111111", time.Minute))
	clock = clock.Add(50 * time.Second)

	// Requesting a fresh code replaces the pending one and restarts
	// the clock.
	require.NoError(t, s.Put(ctx, "13800000001", "222222", time.Minute))
	clock = clock.Add(50 * time.Second)

	code, err := s.Get(ctx, "13800000001")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)
}

func TestMemoryStoreDefaultTTL(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStoreAt(func() time.Time { return clock })
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "13800000001", "123456", 0))

	clock = clock.Add(DefaultTTL - time.Second)
	_, err := s.Get(ctx, "13800000001")
	assert.NoError(t, err)

	clock = clock.Add(2 * time.Second)
	_, err = s.Get(ctx, "13800000001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "13800000001", "111111", time.Minute))
	require.NoError(t, s.Put(ctx, "bob@example.com", "222222", time.Minute))

	code, err := s.Get(ctx, "13800000001")
	require.NoError(t, err)
	assert.Equal(t, "111111", code)

	code, err = s.Get(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)
}
