// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// redisTimeout bounds one limiter round trip.
const redisTimeout = 250 * time.Millisecond

// Redis is a fixed-window limiter shared by every gateway replica. Redis
// errors allow the request.
type Redis struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
	prefix string
	logger *logging.Logger
}

// NewRedis creates a Redis limiter from a redis:// URL.
func NewRedis(url string, limit int, window time.Duration, logger *logging.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisWithClient(redis.NewClient(opts), limit, window, logger), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, limit int, window time.Duration, logger *logging.Logger) *Redis {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Redis{
		client: client,
		script: redis.NewScript(rateLimitScript),
		limit:  limit,
		window: window,
		prefix: "jobsearch:ratelimit:",
		logger: logger,
	}
}

// Allow implements Limiter.
func (l *Redis) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil || key == "" || l.limit <= 0 || l.window <= 0 {
		return true
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, l.limit).Int64()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request", "error", err)
		return true
	}
	return allowed == 1
}

// Close closes the Redis client.
func (l *Redis) Close() error {
	return l.client.Close()
}
