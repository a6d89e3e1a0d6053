package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
)

const revokedKeyPrefix = "session:revoked:"

// RevocationStore remembers signed-out session ids until their tokens expire
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// MemoryRevocations keeps revoked session ids in process memory.
// Revocations are lost on restart and not shared between replicas.
type MemoryRevocations struct {
	cache *gocache.Cache
	now   func() time.Time
}

// NewMemoryRevocations creates an in-process revocation store
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
		now:   time.Now,
	}
}

// Revoke marks sessionID revoked until the given time
func (m *MemoryRevocations) Revoke(_ context.Context, sessionID string, until time.Time) error {
	ttl := until.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	m.cache.Set(revokedKeyPrefix+sessionID, struct{}{}, ttl)
	metrics.CacheSize.WithLabelValues("revocations").Set(float64(m.cache.ItemCount()))
	return nil
}

// IsRevoked reports whether sessionID was revoked
func (m *MemoryRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	_, found := m.cache.Get(revokedKeyPrefix + sessionID)
	return found, nil
}

// RedisRevocations keeps revoked session ids in Redis with a TTL matching
// the token's remaining lifetime
type RedisRevocations struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRevocations connects to the Redis instance at url
func NewRedisRevocations(ctx context.Context, url string) (*RedisRevocations, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisRevocations{client: client, now: time.Now}, nil
}

// NewRedisRevocationsFromClient wraps an existing client
func NewRedisRevocationsFromClient(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client, now: time.Now}
}

// Revoke marks sessionID revoked until the given time
func (r *RedisRevocations) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	return nil
}

// IsRevoked reports whether sessionID was revoked
func (r *RedisRevocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+sessionID).Result()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("revocations").Inc()
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	metrics.CacheHits.WithLabelValues("revocations").Inc()
	return n > 0, nil
}

// Ping checks the Redis connection
func (r *RedisRevocations) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (r *RedisRevocations) Close() error {
	return r.client.Close()
}

var (
	_ RevocationStore = (*MemoryRevocations)(nil)
	_ RevocationStore = (*RedisRevocations)(nil)
)
