package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL   = 30 * time.Second
	defaultRetryWait = 25 * time.Millisecond
	lockKeyPrefix    = "reservio:lock:"
)

// releaseScript deletes the lock only when it is still owned by the caller,
// so an expired lock re-acquired by another transaction is never released
// from under it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisCoordinator implements Coordinator on Redis for multi-instance
// deployments. Each lock is a SET NX key with a TTL guarding against a
// crashed holder; waiters poll with a short retry interval.
type RedisCoordinator struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration

	mu   sync.Mutex
	held map[string][]string // txID -> keys
}

// NewRedisCoordinator builds a coordinator on the given client. Zero ttl or
// retry select the defaults.
func NewRedisCoordinator(client *redis.Client, ttl, retry time.Duration) *RedisCoordinator {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if retry <= 0 {
		retry = defaultRetryWait
	}
	return &RedisCoordinator{
		client: client,
		ttl:    ttl,
		retry:  retry,
		held:   make(map[string][]string),
	}
}

// Acquire polls SET NX until the lock is taken or ctx is done.
func (c *RedisCoordinator) Acquire(ctx context.Context, txID, key string) error {
	redisKey := lockKeyPrefix + key

	if c.holds(txID, key) {
		return nil
	}

	ticker := time.NewTicker(c.retry)
	defer ticker.Stop()

	for {
		ok, err := c.client.SetNX(ctx, redisKey, txID, c.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			c.mu.Lock()
			c.held[txID] = append(c.held[txID], key)
			c.mu.Unlock()
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReleaseAll frees every lock held by txID, keeping locks that have already
// expired and been taken over by someone else untouched.
func (c *RedisCoordinator) ReleaseAll(ctx context.Context, txID string) error {
	c.mu.Lock()
	keys := c.held[txID]
	delete(c.held, txID)
	c.mu.Unlock()

	var firstErr error
	for _, key := range keys {
		if err := releaseScript.Run(ctx, c.client, []string{lockKeyPrefix + key}, txID).Err(); err != nil && err != redis.Nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("release lock %s: %w", key, err)
			}
		}
	}
	return firstErr
}

func (c *RedisCoordinator) holds(txID, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.held[txID] {
		if k == key {
			return true
		}
	}
	return false
}
