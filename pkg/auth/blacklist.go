package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// blacklistKeyPrefix namespaces revoked token ids in Redis.
const blacklistKeyPrefix = "blacklist:jti:"

// RedisBlacklist stores revoked token ids as expiring Redis keys.
type RedisBlacklist struct {
	client *goredis.Client
}

func NewRedisBlacklist(client *goredis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

// Add writes the revocation with a TTL matching the token's remaining life.
// Writing the same id twice only refreshes the TTL.
func (b *RedisBlacklist) Add(ctx context.Context, jti, subject string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// already expired, signature checks reject it anyway
		return nil
	}
	return b.client.Set(ctx, blacklistKeyPrefix+jti, subject, ttl).Err()
}

func (b *RedisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryBlacklist is a process-local Blacklist for development and tests.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *MemoryBlacklist) Add(_ context.Context, jti, _ string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("empty token id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if current, ok := b.entries[jti]; !ok || expiresAt.After(current) {
		b.entries[jti] = expiresAt
	}
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	expiresAt, ok := b.entries[jti]
	b.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return b.now().Before(expiresAt), nil
}

// Sweep drops entries whose tokens have expired.
func (b *MemoryBlacklist) Sweep() int {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for jti, expiresAt := range b.entries {
		if !now.Before(expiresAt) {
			delete(b.entries, jti)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on interval until ctx is done.
func (b *MemoryBlacklist) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.Sweep()
			}
		}
	}()
}
