package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before block
	AttemptWindow time.Duration // window counted for attempts
	BlockDuration time.Duration // block length once MaxAttempts is reached
	UseIPTracking bool          // also count and block by client IP
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
		UseIPTracking: true,
	}
}

// LoginTracker counts failed logins per email and IP and blocks after too
// many. Without a Redis client it keeps the counters in process memory.
type LoginTracker struct {
	config LoginTrackerConfig
	client *goredis.Client
	logger *SecurityLogger

	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count   int
	expires time.Time
}

func NewLoginTracker(config LoginTrackerConfig, client *goredis.Client, logger *SecurityLogger) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLoginTrackerConfig().MaxAttempts
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{
		config:  config,
		client:  client,
		logger:  logger,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Redis key patterns
const (
	failLoginUserPrefix    = "fail:login:user:"
	failLoginIPPrefix      = "fail:login:ip:"
	blockedLoginUserPrefix = "blocked:login:user:"
	blockedLoginIPPrefix   = "blocked:login:ip:"
)

// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns the new count.
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsBlocked checks if the given email or IP is currently blocked
func (lt *LoginTracker) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	keys := []string{blockedLoginUserPrefix + normalizeEmail(email)}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, blockedLoginIPPrefix+ip)
	}

	if lt.client == nil {
		for _, k := range keys {
			if lt.memGet(k) > 0 {
				return true, nil
			}
		}
		return false, nil
	}

	n, err := lt.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	return n > 0, nil
}

// RecordFailedAttempt counts a failed login and blocks once the limit is hit.
// Returns (blocked, attempts so far, error).
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error) {
	email = normalizeEmail(email)
	lt.logger.LogLoginFailed(ctx, email, ip, userAgent, requestID, "invalid_credentials")

	userCount, err := lt.increment(ctx, failLoginUserPrefix+email)
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment user counter: %w", err)
	}

	ipCount := 0
	if lt.config.UseIPTracking && ip != "" {
		ipCount, _ = lt.increment(ctx, failLoginIPPrefix+ip)
	}

	if userCount >= lt.config.MaxAttempts || ipCount >= lt.config.MaxAttempts {
		if err := lt.createBlock(ctx, email, ip, requestID); err != nil {
			return true, userCount, fmt.Errorf("failed to create block: %w", err)
		}
		return true, userCount, nil
	}

	return false, userCount, nil
}

// ClearAttempts clears failed login attempts on successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email, ip string) error {
	keys := []string{failLoginUserPrefix + normalizeEmail(email)}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, failLoginIPPrefix+ip)
	}

	if lt.client == nil {
		lt.mu.Lock()
		for _, k := range keys {
			delete(lt.entries, k)
		}
		lt.mu.Unlock()
		return nil
	}

	if err := lt.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}

// RemainingAttempts returns how many attempts remain before a block.
func (lt *LoginTracker) RemainingAttempts(ctx context.Context, email string) (int, error) {
	key := failLoginUserPrefix + normalizeEmail(email)

	var count int
	if lt.client == nil {
		count = lt.memGet(key)
	} else {
		n, err := lt.client.Get(ctx, key).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return 0, fmt.Errorf("failed to get attempt count: %w", err)
		}
		count = n
	}

	return max(lt.config.MaxAttempts-count, 0), nil
}

func (lt *LoginTracker) increment(ctx context.Context, key string) (int, error) {
	if lt.client == nil {
		return lt.memIncr(key, lt.config.AttemptWindow), nil
	}

	ttlSeconds := max(int(lt.config.AttemptWindow.Seconds()), 1)
	result, err := lt.client.Eval(ctx, incrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (lt *LoginTracker) createBlock(ctx context.Context, email, ip, requestID string) error {
	blockTTL := lt.config.BlockDuration

	if lt.client == nil {
		lt.memSet(blockedLoginUserPrefix+email, blockTTL)
		if lt.config.UseIPTracking && ip != "" {
			lt.memSet(blockedLoginIPPrefix+ip, blockTTL)
		}
	} else {
		if err := lt.client.Set(ctx, blockedLoginUserPrefix+email, "1", blockTTL).Err(); err != nil {
			return fmt.Errorf("failed to set user block: %w", err)
		}
		if lt.config.UseIPTracking && ip != "" {
			if err := lt.client.Set(ctx, blockedLoginIPPrefix+ip, "1", blockTTL).Err(); err != nil {
				// user is already blocked
				lt.logger.zapLogger.Warn("failed to set IP block", zap.Error(err))
			}
		}
	}

	lt.logger.LogBlockCreated(ctx, "email", email, ip, requestID, int(blockTTL.Minutes()))
	return nil
}

func (lt *LoginTracker) memGet(key string) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	e, ok := lt.entries[key]
	if !ok || !lt.now().Before(e.expires) {
		delete(lt.entries, key)
		return 0
	}
	return e.count
}

func (lt *LoginTracker) memIncr(key string, ttl time.Duration) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	now := lt.now()
	e, ok := lt.entries[key]
	if !ok || !now.Before(e.expires) {
		e = memoryEntry{expires: now.Add(ttl)}
	}
	e.count++
	lt.entries[key] = e
	return e.count
}

func (lt *LoginTracker) memSet(key string, ttl time.Duration) {
	lt.mu.Lock()
	lt.entries[key] = memoryEntry{count: 1, expires: lt.now().Add(ttl)}
	lt.mu.Unlock()
}
