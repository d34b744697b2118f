package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "tokencheck:"

// CachingProvider wraps a Provider with a short-TTL Redis cache of
// successful token validations. POS terminals re-validate the same
// session token on nearly every request; caching keeps that off the
// provider. Failures are never cached, and cache errors fall through
// to the inner provider.
type CachingProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
}

// NewCachingProvider creates a caching decorator around inner.
func NewCachingProvider(inner Provider, client *redis.Client, ttl time.Duration) *CachingProvider {
	return &CachingProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}
}

// cachedIdentity is the stored form of a validated identity.
type cachedIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// ValidateToken checks the cache before delegating to the inner provider.
func (c *CachingProvider) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	key := cacheKey(token)

	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var cached cachedIdentity
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			if role, roleErr := ParseRole(cached.Role); roleErr == nil {
				return &Identity{
					ID:    cached.ID,
					Email: cached.Email,
					Role:  role,
					Name:  cached.Name,
				}, nil
			}
		}
		// Unreadable entry; fall through and overwrite.
	} else if err != redis.Nil {
		slog.Warn("token cache read failed", "error", err)
	}

	ident, err := c.inner.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedIdentity{
		ID:    ident.ID,
		Email: ident.Email,
		Role:  string(ident.Role),
		Name:  ident.Name,
	})
	if err == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			slog.Warn("token cache write failed", "error", setErr)
		}
	}

	return ident, nil
}

// CurrentIdentity is not cached; it always reflects the live session.
func (c *CachingProvider) CurrentIdentity(ctx context.Context) (*Identity, error) {
	return c.inner.CurrentIdentity(ctx)
}
