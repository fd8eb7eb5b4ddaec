package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// tracked returns the number of keys currently held or waited on.
func tracked(kl *KeyLock) int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.locks)
}

// held reports whether key is held, by failing to take it within a short timeout.
func held(kl *KeyLock, key int64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := kl.LockContext(ctx, key); err != nil {
		return true
	}
	kl.Unlock(key)
	return false
}

// Property: concurrent read-modify-write cycles on one key behave like their
// sequential execution when every cycle holds the key.
func TestSerializedUpdatesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOps := rapid.IntRange(2, 30).Draw(t, "numOps")
		chatID := rapid.Int64Range(-1000000, 1000000).Draw(t, "chatID")

		kl := NewKeyLock()
		// a slice append is a read-modify-write that loses elements when racing
		var joined []int

		var wg sync.WaitGroup
		wg.Add(numOps)
		for i := 0; i < numOps; i++ {
			go func(n int) {
				defer wg.Done()
				_ = kl.WithLockContext(context.Background(), chatID, func() error {
					cur := joined
					joined = append(cur, n)
					return nil
				})
			}(i)
		}
		wg.Wait()

		if len(joined) != numOps {
			t.Fatalf("lost updates: expected %d entries, got %d", numOps, len(joined))
		}
		if n := tracked(kl); n != 0 {
			t.Fatalf("expected no tracked keys after all releases, got %d", n)
		}
	})
}

// Property: different keys never block each other.
func TestIndependentKeysProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(2, 10).Draw(t, "numChats")
		opsPerChat := rapid.IntRange(5, 20).Draw(t, "opsPerChat")

		kl := NewKeyLock()
		ctx := context.Background()
		counters := make([]int, numChats)

		// hold the first chat for the whole run; the others must still finish
		if err := kl.LockContext(ctx, 0); err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		for c := 1; c < numChats; c++ {
			for j := 0; j < opsPerChat; j++ {
				wg.Add(1)
				go func(chat int) {
					defer wg.Done()
					_ = kl.WithLockContext(ctx, int64(chat), func() error {
						counters[chat]++
						return nil
					})
				}(c)
			}
		}
		wg.Wait()
		kl.Unlock(0)

		for c := 1; c < numChats; c++ {
			if counters[c] != opsPerChat {
				t.Fatalf("chat %d: expected %d ops, got %d", c, opsPerChat, counters[c])
			}
		}
	})
}

// Property: of simultaneous attempts with an expired context at most one holds
// the key at a time, and the key is free once all of them are done.
func TestExclusiveUnderContentionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatID := rapid.Int64Range(1, 1000000).Draw(t, "chatID")
		numAttempts := rapid.IntRange(5, 20).Draw(t, "numAttempts")

		kl := NewKeyLock()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		var holders, maxHolders atomic.Int32
		var wg sync.WaitGroup
		wg.Add(numAttempts)
		start := make(chan struct{})

		for i := 0; i < numAttempts; i++ {
			go func() {
				defer wg.Done()
				<-start
				_ = kl.WithLockContext(ctx, chatID, func() error {
					n := holders.Add(1)
					for {
						m := maxHolders.Load()
						if n <= m || maxHolders.CompareAndSwap(m, n) {
							break
						}
					}
					holders.Add(-1)
					return nil
				})
			}()
		}
		close(start)
		wg.Wait()

		if maxHolders.Load() > 1 {
			t.Fatalf("key held by %d goroutines at once", maxHolders.Load())
		}
		if held(kl, chatID) {
			t.Fatal("key should be free after all attempts complete")
		}
		if n := tracked(kl); n != 0 {
			t.Fatalf("expected no tracked keys, got %d", n)
		}
	})
}

// Property: every LockContext paired with an Unlock leaves the key free and untracked.
func TestLockUnlockSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatID := rapid.Int64Range(1, 1000000).Draw(t, "chatID")
		numCycles := rapid.IntRange(1, 50).Draw(t, "numCycles")

		kl := NewKeyLock()
		for i := 0; i < numCycles; i++ {
			if err := kl.LockContext(context.Background(), chatID); err != nil {
				t.Fatal(err)
			}
			kl.Unlock(chatID)
		}

		if held(kl, chatID) {
			t.Fatal("key should be free after symmetric lock/unlock cycles")
		}
		if n := tracked(kl); n != 0 {
			t.Fatalf("expected no tracked keys, got %d", n)
		}
	})
}

func TestLockContext_Timeout(t *testing.T) {
	kl := NewKeyLock()
	require.NoError(t, kl.LockContext(context.Background(), 42))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := kl.LockContext(ctx, 42)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Equal(t, 1, tracked(kl))

	kl.Unlock(42)
	assert.False(t, held(kl, 42))
	assert.Equal(t, 0, tracked(kl))
}

func TestWithLockContext_RunsFn(t *testing.T) {
	kl := NewKeyLock()
	called := false

	err := kl.WithLockContext(context.Background(), 7, func() error {
		called = true
		assert.True(t, held(kl, 7))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, held(kl, 7))
}

func TestWithLockContext_ReturnsFnError(t *testing.T) {
	kl := NewKeyLock()
	boom := assert.AnError

	err := kl.WithLockContext(context.Background(), 7, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, tracked(kl))
}

func TestUnlock_UnknownKeyIsNoop(t *testing.T) {
	kl := NewKeyLock()
	kl.Unlock(99)
	assert.Equal(t, 0, tracked(kl))
}
