package adapter

import (
	"context"
	"encoding/json"
	"time"

	cacheport "go-parley/internal/infrastructure/cache/port"
	"go-parley/internal/pkg/identity/port"
)

// resolveTTL bounds how stale a cached role may be. Role changes on the
// provider side take at most this long to be observed here.
const resolveTTL = 5 * time.Minute

// CachedDirectory decorates any Directory with a TTL cache so connection
// handshakes and participant validation do not hammer the provider.
// Cache failures degrade to the inner directory.
type CachedDirectory struct {
	inner port.Directory
	cache cacheport.Cache
}

func NewCachedDirectory(inner port.Directory, cache cacheport.Cache) *CachedDirectory {
	return &CachedDirectory{inner: inner, cache: cache}
}

var _ port.Directory = (*CachedDirectory)(nil)

func (d *CachedDirectory) Resolve(ctx context.Context, userID string) (port.User, error) {
	key := "identity:user:" + userID

	// Misses and transport errors both fall through to the provider.
	if raw, err := d.cache.Get(ctx, key); err == nil {
		var u port.User
		if json.Unmarshal([]byte(raw), &u) == nil && u.ID != "" {
			return u, nil
		}
	}

	u, err := d.inner.Resolve(ctx, userID)
	if err != nil {
		return port.User{}, err
	}

	if raw, err := json.Marshal(u); err == nil {
		_ = d.cache.Set(ctx, key, string(raw), resolveTTL)
	}
	return u, nil
}
