package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	defaultTTL      = 30 * time.Second
	defaultMaxWait  = 15 * time.Second
	keyPrefix       = "payments:lock:"
	baseRetryDelay  = 30 * time.Millisecond
	maxRetryDelay   = 250 * time.Millisecond
	retryDelayRatio = 1.4
)

// ErrNotAcquired is returned when the lock stays taken for longer than the wait budget.
var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only if it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// redisClient is the subset of *redis.Client used by Redis.
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Redis is a lock shared by every instance talking to the same Redis.
// Each hold expires after TTL so a crashed holder cannot wedge a key.
type Redis struct {
	client  redisClient
	ttl     time.Duration
	maxWait time.Duration
}

// NewRedis returns a Redis lock. Zero durations fall back to defaults.
func NewRedis(client redisClient, ttl, maxWait time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	return &Redis{client: client, ttl: ttl, maxWait: maxWait}
}

// NewRedisClient dials addr with pool settings sized for short lock round-trips.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     50,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  800 * time.Millisecond,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolTimeout:  800 * time.Millisecond,
		IdleTimeout:  90 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Lock polls SET NX with capped exponential backoff until it wins, ctx is
// done, or maxWait elapses.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, r.maxWait)
	defer cancel()

	for attempt := 0; ; attempt++ {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return r.unlocker(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: key=%s: %v", ErrNotAcquired, key, ctx.Err())
		case <-time.After(backoff(attempt)):
		}
	}
}

func (r *Redis) unlocker(redisKey, token string) func() {
	return func() {
		// the caller's ctx may already be cancelled; release on a fresh one
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := r.client.Eval(ctx, releaseScript, []string{redisKey}, token).Err(); err != nil {
			log.Printf("[lock][redis] release failed key=%s err=%v", redisKey, err)
		}
	}
}

func backoff(attempt int) time.Duration {
	delay := time.Duration(float64(baseRetryDelay) * math.Pow(retryDelayRatio, float64(attempt)))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
