package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/monkeysroasters/roastery-backend/pkg/redis"
)

type fakeRedisStore struct {
	values  map[string]string
	setNXOk bool
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}, setNXOk: true}
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := f.values[key]; exists || !f.setNXOk {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (f *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "test:lock", time.Hour)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, store.values["test:lock"])

	require.NoError(t, lock.Release(context.Background()))
	assert.Empty(t, store.values)
}

func TestRedisLockSecondAcquireBlocked(t *testing.T) {
	store := newFakeRedisStore()
	first, err := NewRedisLock(store, "test:lock", time.Hour)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "test:lock", time.Hour)
	require.NoError(t, err)

	ok, err := first.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLockReleaseSkipsForeignOwner(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "test:lock", time.Hour)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate TTL expiry followed by another instance taking the lock.
	store.values["test:lock"] = "someone-else"

	require.NoError(t, lock.Release(context.Background()))
	assert.Equal(t, "someone-else", store.values["test:lock"])
}

func TestRedisLockReleaseToleratesMissingKey(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "test:lock", time.Hour)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	delete(store.values, "test:lock")
	require.NoError(t, lock.Release(context.Background()))
}

func TestNewRedisLockValidation(t *testing.T) {
	_, err := NewRedisLock(nil, "key", time.Hour)
	require.Error(t, err)

	_, err = NewRedisLock(newFakeRedisStore(), "", time.Hour)
	require.Error(t, err)
}
