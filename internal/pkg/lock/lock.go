// Package lock provides per-key mutual exclusion. The game engine keys it by
// chat id so that all read-modify-write cycles on one chat are serialized
// while different chats proceed in parallel.
package lock

import (
	"context"
	"sync"
)

// keyMutex is a one-slot semaphore shared by every holder and waiter of a key.
type keyMutex struct {
	sem     chan struct{}
	waiters int
}

// KeyLock hands out one mutex per key and drops it once nobody holds or
// waits on it, so the map does not grow with every chat ever seen.
type KeyLock struct {
	mu    sync.Mutex
	locks map[int64]*keyMutex
}

// NewKeyLock creates a new KeyLock instance.
func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[int64]*keyMutex)}
}

func (kl *KeyLock) acquire(key int64) *keyMutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m, ok := kl.locks[key]
	if !ok {
		m = &keyMutex{sem: make(chan struct{}, 1)}
		kl.locks[key] = m
	}
	m.waiters++
	return m
}

func (kl *KeyLock) release(key int64, m *keyMutex) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m.waiters--
	if m.waiters == 0 {
		delete(kl.locks, key)
	}
}

// LockContext blocks until the key is held by the caller. It returns
// ErrLockTimeout when ctx expires first.
func (kl *KeyLock) LockContext(ctx context.Context, key int64) error {
	m := kl.acquire(key)
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		kl.release(key, m)
		return ErrLockTimeout
	}
}

// Unlock releases a key previously acquired by LockContext.
func (kl *KeyLock) Unlock(key int64) {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return
	}
	<-m.sem
	kl.release(key, m)
}

// WithLockContext executes fn while holding the key, giving up when ctx ends first.
func (kl *KeyLock) WithLockContext(ctx context.Context, key int64, fn func() error) error {
	if err := kl.LockContext(ctx, key); err != nil {
		return err
	}
	defer kl.Unlock(key)
	return fn()
}
