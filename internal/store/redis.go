package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// ErrLockTimeout is returned when a lock could not be taken within the wait.
var ErrLockTimeout = errors.New("lock wait timed out")

const lockRetryInterval = 25 * time.Millisecond

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was re-taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serialises mutations of one post across server instances.
type RedisLocker struct {
	rdb  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl, wait: wait}
}

// Lock blocks until the lock for key is held, ctx is done, or the configured
// wait elapses. The returned func releases the lock.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := "lock:" + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(redisKey, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *RedisLocker) release(redisKey, token string) {
	// The request context may already be cancelled; release regardless.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{redisKey}, token).Err(); err != nil {
		log.Warn().Err(err).Str("key", redisKey).Msg("release post lock")
	}
}
