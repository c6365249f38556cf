package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ErrLockContention means the lock could not be acquired within the retry
// budget. Nothing was written; the caller should ask the user to retry.
var ErrLockContention = errors.New("store: lock contention")

const (
	// LockTTL bounds unavailability after a crashed holder: contenders wait
	// out at most this long before the lease record expires.
	LockTTL = 5 * time.Second

	lockAttempts   = 10
	lockBackoff    = 50 * time.Millisecond
	lockJitterSpan = 100 * time.Millisecond
)

// Lock is a mutual-exclusion lease on a single key, built on SetNX with
// expiry. Any store with a conditional write satisfies it.
type Lock struct {
	store    Store
	key      string
	ttl      time.Duration
	attempts int
}

func NewLock(s Store, key string) *Lock {
	return &Lock{store: s, key: key, ttl: LockTTL, attempts: lockAttempts}
}

// Acquire takes the lease, retrying with jittered backoff. It returns a
// release function that must be called unconditionally, even when the guarded
// work fails.
func (l *Lock) Acquire(ctx context.Context) (func(), error) {
	owner := []byte(uuid.NewString())
	for i := 0; i < l.attempts; i++ {
		acquired, err := l.store.SetNX(ctx, l.key, owner, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if acquired {
			return func() { l.release(owner) }, nil
		}
		wait := lockBackoff + time.Duration(rand.Int63n(int64(lockJitterSpan)))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, ErrLockContention
}

// release deletes the lease only if we still own it, so a holder that
// outlived its TTL cannot evict the next holder. The Get-then-Delete pair is
// not atomic: the lease can expire and change hands between the two calls, in
// which case the delete evicts the new holder. That window requires the holder
// to have already overrun the full TTL, which the coordinator's short
// read-apply-write cycle does not do; an atomic compare-and-delete would need
// a wider Store contract than any backend here shares. Best effort: if the
// store is unreachable the TTL cleans up.
func (l *Lock) release(owner []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	current, err := l.store.Get(ctx, l.key)
	if err != nil || string(current) != string(owner) {
		return
	}
	_ = l.store.Delete(ctx, l.key)
}
