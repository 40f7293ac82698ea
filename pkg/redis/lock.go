package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when the key stays held past the wait budget
var ErrLockNotAcquired = errors.New("lock not acquired")

// compare-and-delete so a holder never releases someone else's lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializes critical sections across processes with SET NX PX
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewLocker builds a Locker whose keys expire after ttl
func NewLocker(c *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Locker{client: c, ttl: ttl, retry: 25 * time.Millisecond}
}

// WithLock runs fn while holding key. It waits at most one ttl for the key.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	full := Key("lock", key)

	deadline := time.Now().Add(l.ttl)
	for {
		ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retry):
		}
	}

	defer func() {
		// release on a fresh context so a cancelled request still frees the key
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{full}, token).Err()
	}()

	return fn(ctx)
}
