package adapter

import (
	"context"
	"testing"
	"time"

	cacheport "go-parley/internal/infrastructure/cache/port"
	"go-parley/internal/pkg/identity/port"

	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users map[string]port.User
	calls int
}

func (f *fakeDirectory) Resolve(ctx context.Context, userID string) (port.User, error) {
	f.calls++
	u, ok := f.users[userID]
	if !ok {
		return port.User{}, port.ErrUnknownUser
	}
	return u, nil
}

type fakeCache struct {
	values map[string]string
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) (int64, error) {
	for _, k := range keys {
		delete(f.values, k)
	}
	return int64(len(keys)), nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }
func (f *fakeCache) Close() error                   { return nil }

func TestResolveCachesProviderHits(t *testing.T) {
	inner := &fakeDirectory{users: map[string]port.User{
		"u1": {ID: "u1", DisplayName: "Alice", Role: "educator"},
	}}
	dir := NewCachedDirectory(inner, &fakeCache{values: map[string]string{}})

	u, err := dir.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "educator", u.Role)

	u, err = dir.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Alice", u.DisplayName)
	require.Equal(t, 1, inner.calls)
}

func TestResolveUnknownUserIsNotCached(t *testing.T) {
	inner := &fakeDirectory{users: map[string]port.User{}}
	dir := NewCachedDirectory(inner, &fakeCache{values: map[string]string{}})

	_, err := dir.Resolve(context.Background(), "ghost")
	require.ErrorIs(t, err, port.ErrUnknownUser)

	_, err = dir.Resolve(context.Background(), "ghost")
	require.ErrorIs(t, err, port.ErrUnknownUser)
	require.Equal(t, 2, inner.calls)
}
