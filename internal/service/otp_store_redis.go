package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Borra la clave solo si sigue guardando el hash leido; evita doble consumo.
const redisOTPConsumeScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisOTPClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisOTPStore struct {
	client  redisOTPClient
	prefix  string
	timeout time.Duration
}

// NewRedisOTPStore comparte los OTP entre instancias; la expiracion es el TTL de la clave.
func NewRedisOTPStore(client *redis.Client) OTPStore {
	if client == nil {
		return nil
	}
	return &redisOTPStore{
		client:  client,
		prefix:  "otp:code:",
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisOTPStore) Put(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+email, codeHash, ttl).Err()
}

func (s *redisOTPStore) Consume(ctx context.Context, email string, match func(codeHash string) bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := s.prefix + email
	stored, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !match(stored) {
		return false, nil
	}
	deleted, err := s.client.Eval(ctx, redisOTPConsumeScript, []string{key}, stored).Int()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}
