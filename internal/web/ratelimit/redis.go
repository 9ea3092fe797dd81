package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims entries older than the window, then admits the
// request when fewer than limit remain. It returns {allowed, count, oldest}
// where oldest is the score of the oldest entry still in the window.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	count = count + 1
	allowed = 1
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then
	first = tonumber(oldest[2])
end
return {allowed, count, first}
`)

// RedisLimiter is a sliding window limiter shared by every server process
// pointed at the same Redis
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// RedisOptions holds Redis connection settings
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLimiter connects to Redis and verifies the connection
func NewRedisLimiter(ctx context.Context, opts RedisOptions, cfg Config) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	limiter, err := NewRedisLimiterWithClient(client, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}
	return limiter, nil
}

// NewRedisLimiterWithClient creates a limiter over an existing client,
// which it closes on Close
func NewRedisLimiterWithClient(client *redis.Client, cfg Config) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &RedisLimiter{
		client: client,
		limit:  cfg.Limit,
		window: cfg.Window,
		prefix: cfg.Prefix,
		now:    time.Now,
	}, nil
}

// Allow implements Limiter
func (r *RedisLimiter) Allow(ctx context.Context, key string) (*Info, error) {
	now := r.now().UnixMilli()
	window := r.window.Milliseconds()

	result, err := slidingWindow.Run(ctx, r.client, []string{r.prefix + key},
		now, window, r.limit, fmt.Sprintf("%d-%s", now, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("unexpected redis script result %v", result)
	}

	allowed, count, oldest := result[0] == 1, int(result[1]), result[2]

	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &Info{
		Limit:     r.limit,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(oldest + window),
		Allowed:   allowed,
	}, nil
}

// Reset removes all rate limit data for the given key
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close closes the Redis client
func (r *RedisLimiter) Close() error {
	return r.client.Close()
}
