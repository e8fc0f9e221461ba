package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Redis is a Locker shared by every server instance. A lock is a key set
// with NX and a TTL, holding a random token; release deletes the key only if
// the token still matches, so an expired holder cannot free someone else's lock.
type Redis struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	prefix string
	log    logrus.FieldLogger
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrNotAcquired is returned when ctx ends before the lock is obtained.
var ErrNotAcquired = errors.New("lock not acquired")

func NewRedis(rdb redis.UniversalClient, ttl time.Duration, prefix string, log logrus.FieldLogger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "lock"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Redis{rdb: rdb, ttl: ttl, retry: 25 * time.Millisecond, prefix: prefix, log: log}
}

// Lock polls SET NX until it wins or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	full := r.prefix + ":" + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()
	for {
		ok, err := r.rdb.SetNX(ctx, full, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", full, err)
		}
		if ok {
			return r.unlocker(full, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, full, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Redis) unlocker(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.rdb, []string{key}, token).Err(); err != nil {
			// The TTL frees the key eventually.
			r.log.WithError(err).WithField("key", key).Warn("redis lock release failed")
		}
	}
}
