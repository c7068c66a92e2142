package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ventana deslizante sobre un sorted set: score = instante del hit en ms.
// ARGV: ahora (ms), ventana (ms), maximo, miembro unico.
const redisSlidingWindowScript = `
local cutoff = tonumber(ARGV[1]) - tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", cutoff)
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 1
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRateLimiter struct {
	logger  *zap.Logger
	client  redisEvaler
	prefix  string
	window  time.Duration
	max     int
	timeout time.Duration
	now     func() time.Time
}

// NewRedisRateLimiter comparte la ventana entre instancias. Si redis no
// responde (o el request ya fue cancelado) la solicitud pasa.
func NewRedisRateLimiter(logger *zap.Logger, client *redis.Client, prefix string, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	return newRedisRateLimiter(logger, client, prefix, window, max)
}

func newRedisRateLimiter(logger *zap.Logger, client redisEvaler, prefix string, window time.Duration, max int) *redisRateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		logger:  logger,
		client:  client,
		prefix:  prefix,
		window:  window,
		max:     max,
		timeout: 500 * time.Millisecond,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	if ctx.Err() != nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	allowed, err := l.client.Eval(ctx, redisSlidingWindowScript, []string{l.prefix + key},
		l.now().UnixMilli(), l.window.Milliseconds(), l.max, uuid.NewString(),
	).Int()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.logger.Warn("rate limiter unavailable, allowing request", zap.String("prefix", l.prefix), zap.Error(err))
		}
		return true
	}
	return allowed == 1
}
