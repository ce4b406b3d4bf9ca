package ratelimit

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// Lua script for atomic token bucket operations.
// Returns {allowed, remaining, reset_ms}.
const tokenBucketLuaScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

local elapsed = math.max(0, now - last_refill)
tokens = math.min(tokens + elapsed * rate / 1000, capacity)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

local reset_ms = 0
if tokens < capacity then
    reset_ms = math.ceil((capacity - tokens) / rate * 1000)
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill', now)
redis.call('PEXPIRE', key, reset_ms + 60000)

return {allowed, math.floor(tokens), reset_ms}
`

var tokenBucketScript = redis.NewScript(tokenBucketLuaScript)

// RedisRateLimiter throttles login attempts per dimension and key.
// Buckets live in Redis so every replica shares them; when Redis is absent or failing
// the limiter falls back to per-process buckets.
type RedisRateLimiter struct {
	client  redis.UniversalClient
	limit   int
	window  time.Duration
	local   *cache.Cache
	metrics service.Metrics
	logger  logger.Logger
	now     func() time.Time
}

var _ service.RateLimitService = (*RedisRateLimiter)(nil)

// NewRedisRateLimiter creates a limiter allowing cfg.LoginAttempts per cfg.Window().
// client and metrics may be nil.
func NewRedisRateLimiter(client redis.UniversalClient, cfg *config.RateLimitConfig, metrics service.Metrics, log logger.Logger) *RedisRateLimiter {
	limit := constants.LoginRateLimitAttempts
	window := constants.LoginRateLimitWindow
	if cfg != nil && cfg.LoginAttempts > 0 && cfg.WindowSeconds > 0 {
		limit = cfg.LoginAttempts
		window = cfg.Window()
	}

	rl := &RedisRateLimiter{
		client:  client,
		limit:   limit,
		window:  window,
		local:   cache.New(2*window, 4*window),
		metrics: metrics,
		logger:  log.WithComponent("RateLimiter"),
		now:     time.Now,
	}

	rl.logger.Info(context.Background(), "Rate limiter initialized",
		logger.Int("limit", limit),
		logger.Duration("window", window),
		logger.Bool("redis", client != nil),
	)
	return rl
}

// Allow consumes one attempt for key.
func (rl *RedisRateLimiter) Allow(ctx context.Context, dimension service.RateLimitDimension, key string) (bool, int, time.Time, error) {
	redisKey := buildKey(dimension, key)

	var (
		allowed   bool
		remaining int
		resetIn   time.Duration
	)
	if rl.client == nil {
		allowed, remaining, resetIn = rl.takeLocal(redisKey)
	} else {
		var err error
		allowed, remaining, resetIn, err = rl.takeRemote(ctx, redisKey)
		if err != nil {
			rl.logger.Warn(ctx, "Redis rate limit check failed, using local bucket",
				logger.String("dimension", string(dimension)),
				logger.Error(err),
			)
			allowed, remaining, resetIn = rl.takeLocal(redisKey)
		}
	}

	if !allowed {
		rl.logger.Debug(ctx, "Rate limit exceeded",
			logger.String("dimension", string(dimension)),
			logger.String("key", key),
		)
		if rl.metrics != nil {
			rl.metrics.RecordRateLimitHit(string(dimension))
		}
	}
	return allowed, remaining, rl.now().Add(resetIn), nil
}

// Reset clears the bucket for key. Called after a successful login.
func (rl *RedisRateLimiter) Reset(ctx context.Context, dimension service.RateLimitDimension, key string) error {
	redisKey := buildKey(dimension, key)
	rl.local.Delete(redisKey)

	if rl.client == nil {
		return nil
	}
	if err := rl.client.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return errors.ErrServiceUnavailable.WithError(err)
	}
	return nil
}

func (rl *RedisRateLimiter) takeRemote(ctx context.Context, key string) (bool, int, time.Duration, error) {
	rate := float64(rl.limit) / rl.window.Seconds()
	res, err := tokenBucketScript.Run(ctx, rl.client, []string{key}, rl.limit, rate, rl.now().UnixMilli()).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(res) != 3 {
		return false, 0, 0, errors.ErrInternalServer.WithDescription("unexpected rate limit script result")
	}
	return res[0] == 1, int(res[1]), time.Duration(res[2]) * time.Millisecond, nil
}

func (rl *RedisRateLimiter) takeLocal(key string) (bool, int, time.Duration) {
	rate := float64(rl.limit) / rl.window.Seconds()
	bucket := NewTokenBucket(float64(rl.limit), rate, rl.now)
	if err := rl.local.Add(key, bucket, cache.DefaultExpiration); err != nil {
		if existing, ok := rl.local.Get(key); ok {
			bucket = existing.(*TokenBucket)
		}
	}
	return bucket.Take()
}

func buildKey(dimension service.RateLimitDimension, key string) string {
	return constants.RateLimitKeyPrefix + string(dimension) + ":" + key
}
