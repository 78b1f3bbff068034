package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked token ids until the token would have expired.
type Blacklist interface {
	Add(ctx context.Context, jti string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// MemoryBlacklist is a process-local blacklist. Purge must be called
// periodically to drop expired entries.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time), now: time.Now}
}

func (b *MemoryBlacklist) Add(_ context.Context, jti string, expiresAt time.Time) error {
	if !expiresAt.After(b.now()) {
		return nil
	}
	b.mu.Lock()
	b.entries[jti] = expiresAt
	b.mu.Unlock()
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	exp, ok := b.entries[jti]
	b.mu.RUnlock()
	return ok && exp.After(b.now()), nil
}

// Purge removes entries that expired before now and returns how many.
func (b *MemoryBlacklist) Purge(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for jti, exp := range b.entries {
		if !exp.After(now) {
			delete(b.entries, jti)
			removed++
		}
	}
	return removed
}

func (b *MemoryBlacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

const redisKeyPrefix = "wingit:blacklist:"

// RedisBlacklist shares revocations between instances. Keys expire with the
// token so no purge is needed.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, redisKeyPrefix+jti, "1", ttl).Err()
}

func (b *RedisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
