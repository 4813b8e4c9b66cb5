package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"boletamaster/internal/shared/constants"
	"boletamaster/pkg/logger"
	"boletamaster/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LockKeys builds the global acquisition order: tickets, then listings, then
// the locality, each group sorted
func LockKeys(ticketIDs, listingIDs []string, localityID string) []string {
	keys := make([]string, 0, len(ticketIDs)+len(listingIDs)+1)
	keys = append(keys, sortedKeys("ticket:", ticketIDs)...)
	keys = append(keys, sortedKeys("listing:", listingIDs)...)
	if localityID != "" {
		keys = append(keys, constants.BuildLockKey("locality:"+localityID))
	}
	return keys
}

func sortedKeys(kind string, ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, constants.BuildLockKey(kind+id))
	}
	sort.Strings(out)
	return out
}

// MemoryLocker keeps one single-slot semaphore per key
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *MemoryLocker) Acquire(ctx context.Context, keys []string) (func(), error) {
	start := time.Now()
	held := make([]chan struct{}, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range keys {
		ch := l.slot(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			release()
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
	}

	metrics.TrackLockWait("memory", time.Since(start))
	var once sync.Once
	return func() { once.Do(release) }, nil
}

// releaseScript deletes a lock only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// RedisLocker takes SET NX PX locks so several API instances share one
// lock space
type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
	retry  time.Duration
	token  func() string
}

func NewRedisLocker(client redis.Cmdable, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = constants.TTL_LOCK_DEFAULT
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		token:  uuid.NewString,
	}
}

// WithTokenSource fixes the lock token, mostly for tests
func (l *RedisLocker) WithTokenSource(token func() string) *RedisLocker {
	l.token = token
	return l
}

func (l *RedisLocker) WithRetryInterval(d time.Duration) *RedisLocker {
	l.retry = d
	return l
}

func (l *RedisLocker) Acquire(ctx context.Context, keys []string) (func(), error) {
	start := time.Now()
	token := l.token()
	held := make([]string, 0, len(keys))

	for _, key := range keys {
		if err := l.acquireOne(ctx, key, token); err != nil {
			l.release(held, token)
			return nil, err
		}
		held = append(held, key)
	}

	metrics.TrackLockWait("redis", time.Since(start))
	var once sync.Once
	return func() { once.Do(func() { l.release(held, token) }) }, nil
}

func (l *RedisLocker) acquireOne(ctx context.Context, key, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
	}
}

// release runs on its own context: the caller's may already be done
func (l *RedisLocker) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err(); err != nil {
			logger.GetDefault().Warn("failed to release lock",
				slog.String("key", keys[i]),
				slog.String("error", err.Error()),
			)
		}
	}
}
