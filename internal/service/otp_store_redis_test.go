package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisOTPClient struct {
	values    map[string]string
	ttls      map[string]time.Duration
	getErr    error
	evalCalls int
}

func newFakeRedisOTPClient() *fakeRedisOTPClient {
	return &fakeRedisOTPClient{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeRedisOTPClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedisOTPClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if f.getErr != nil {
		cmd.SetErr(f.getErr)
		return cmd
	}
	v, ok := f.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedisOTPClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.evalCalls++
	cmd := redis.NewCmd(ctx)
	if script != redisOTPConsumeScript || len(keys) != 1 || len(args) != 1 {
		cmd.SetErr(errors.New("unexpected eval"))
		return cmd
	}
	if f.values[keys[0]] == args[0] {
		delete(f.values, keys[0])
		cmd.SetVal(int64(1))
		return cmd
	}
	cmd.SetVal(int64(0))
	return cmd
}

func newTestRedisOTPStore(client redisOTPClient) *redisOTPStore {
	return &redisOTPStore{client: client, prefix: "otp:code:", timeout: time.Second}
}

func TestRedisOTPStore_PutConsume(t *testing.T) {
	client := newFakeRedisOTPClient()
	store := newTestRedisOTPStore(client)
	ctx := context.Background()

	if err := store.Put(ctx, "a@x.com", "salt:hash", time.Now().Add(5*time.Minute)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if client.values["otp:code:a@x.com"] != "salt:hash" {
		t.Fatalf("expected prefixed key, got %+v", client.values)
	}
	if ttl := client.ttls["otp:code:a@x.com"]; ttl <= 4*time.Minute || ttl > 5*time.Minute {
		t.Fatalf("expected ttl near 5m, got %v", ttl)
	}

	ok, err := store.Consume(ctx, "a@x.com", func(h string) bool { return h == "salt:hash" })
	if err != nil || !ok {
		t.Fatalf("expected consume success, got %v %v", ok, err)
	}
	ok, err = store.Consume(ctx, "a@x.com", func(h string) bool { return h == "salt:hash" })
	if err != nil || ok {
		t.Fatalf("expected second consume to fail, got %v %v", ok, err)
	}
}

func TestRedisOTPStore_MismatchDoesNotDelete(t *testing.T) {
	client := newFakeRedisOTPClient()
	store := newTestRedisOTPStore(client)
	ctx := context.Background()

	if err := store.Put(ctx, "a@x.com", "salt:hash", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := store.Consume(ctx, "a@x.com", func(string) bool { return false })
	if err != nil || ok {
		t.Fatalf("expected mismatch, got %v %v", ok, err)
	}
	if client.evalCalls != 0 {
		t.Fatalf("expected no delete on mismatch")
	}
	if _, exists := client.values["otp:code:a@x.com"]; !exists {
		t.Fatalf("expected record kept")
	}
}

func TestRedisOTPStore_ExpiredPutIsNoop(t *testing.T) {
	client := newFakeRedisOTPClient()
	store := newTestRedisOTPStore(client)

	if err := store.Put(context.Background(), "a@x.com", "salt:hash", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(client.values) != 0 {
		t.Fatalf("expected nothing stored for past expiry")
	}
}

func TestRedisOTPStore_GetError(t *testing.T) {
	client := newFakeRedisOTPClient()
	client.getErr = errors.New("redis down")
	store := newTestRedisOTPStore(client)

	if _, err := store.Consume(context.Background(), "a@x.com", func(string) bool { return true }); err == nil {
		t.Fatalf("expected redis error to propagate")
	}
}

func TestMemoryOTPStore_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryOTPStore(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Put(ctx, "a@x.com", "h", now.Add(time.Minute)); err != nil {
		t.Fatalf("put: %v", err)
	}
	now = now.Add(time.Minute)
	ok, _ := store.Consume(ctx, "a@x.com", func(string) bool { return true })
	if ok {
		t.Fatalf("expected record expired at its deadline")
	}
	if _, exists := store.items["a@x.com"]; exists {
		t.Fatalf("expected expired record removed")
	}
}

func TestMemoryOTPStore_PutDropsUnclaimedExpiredCodes(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryOTPStore(func() time.Time { return now })
	ctx := context.Background()

	for _, addr := range []string{"a@x.com", "b@x.com"} {
		if err := store.Put(ctx, addr, "h", now.Add(DefaultOTPTTL)); err != nil {
			t.Fatalf("put %s: %v", addr, err)
		}
	}

	now = now.Add(DefaultOTPTTL + time.Second)
	if err := store.Put(ctx, "c@x.com", "h", now.Add(DefaultOTPTTL)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(store.items) != 1 {
		t.Fatalf("expected only the live code kept, got %v", store.items)
	}
	if _, ok := store.items["c@x.com"]; !ok {
		t.Fatalf("expected new code stored")
	}
}
