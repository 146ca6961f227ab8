// Package ledger records uploaded asset references until a gallery write
// attaches them. Anything left pending past a grace period is an orphan.
// Orphans are reported, never deleted.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingKey = "media:pending"

// Ledger tracks uploaded references.
type Ledger interface {
	// Track marks refs as uploaded but not yet attached to a gallery.
	Track(ctx context.Context, refs ...string) error
	// Settle removes refs that are now attached.
	Settle(ctx context.Context, refs ...string) error
	// Orphans returns refs tracked before cutoff, oldest first.
	Orphans(ctx context.Context, cutoff time.Time) ([]string, error)
}

// RedisLedger keeps pending refs in a sorted set scored by upload time.
type RedisLedger struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisLedger(client redis.UniversalClient) *RedisLedger {
	return &RedisLedger{client: client, now: time.Now}
}

func (l *RedisLedger) Track(ctx context.Context, refs ...string) error {
	if len(refs) == 0 {
		return nil
	}
	score := float64(l.now().Unix())
	members := make([]redis.Z, 0, len(refs))
	for _, ref := range refs {
		members = append(members, redis.Z{Score: score, Member: ref})
	}
	if err := l.client.ZAdd(ctx, pendingKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to track assets: %w", err)
	}
	return nil
}

func (l *RedisLedger) Settle(ctx context.Context, refs ...string) error {
	if len(refs) == 0 {
		return nil
	}
	members := make([]interface{}, len(refs))
	for i, ref := range refs {
		members[i] = ref
	}
	if err := l.client.ZRem(ctx, pendingKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to settle assets: %w", err)
	}
	return nil
}

func (l *RedisLedger) Orphans(ctx context.Context, cutoff time.Time) ([]string, error) {
	refs, err := l.client.ZRangeByScore(ctx, pendingKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", cutoff.Unix()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned assets: %w", err)
	}
	return refs, nil
}

// MemoryLedger is an in-process Ledger for single-instance deployments.
type MemoryLedger struct {
	mu      sync.Mutex
	pending map[string]time.Time
	now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{pending: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryLedger) Track(_ context.Context, refs ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	at := l.now()
	for _, ref := range refs {
		l.pending[ref] = at
	}
	return nil
}

func (l *MemoryLedger) Settle(_ context.Context, refs ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ref := range refs {
		delete(l.pending, ref)
	}
	return nil
}

func (l *MemoryLedger) Orphans(_ context.Context, cutoff time.Time) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	type entry struct {
		ref string
		at  time.Time
	}
	var found []entry
	for ref, at := range l.pending {
		if at.Before(cutoff) {
			found = append(found, entry{ref, at})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].at.Equal(found[j].at) {
			return found[i].ref < found[j].ref
		}
		return found[i].at.Before(found[j].at)
	})

	refs := make([]string, len(found))
	for i, e := range found {
		refs[i] = e.ref
	}
	return refs, nil
}

// Pending reports whether ref is tracked and not settled.
func (l *MemoryLedger) Pending(ref string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[ref]
	return ok
}
