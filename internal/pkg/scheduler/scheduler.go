// Package scheduler runs cancellable delayed tasks keyed by chat.
// Tasks live in process memory only; callers must not rely on them surviving
// a restart.
package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type task struct {
	timer *time.Timer
	seq   uint64
}

// Scheduler holds at most one pending task per key.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[int64]*task
	seq     uint64
	stopped bool
}

// New creates a new Scheduler instance.
func New() *Scheduler {
	return &Scheduler{tasks: make(map[int64]*task)}
}

// Schedule runs fn after delay, replacing any task pending for key.
func (s *Scheduler) Schedule(key int64, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if old, ok := s.tasks[key]; ok {
		old.timer.Stop()
	}

	s.seq++
	seq := s.seq
	t := &task{seq: seq}
	t.timer = time.AfterFunc(delay, func() {
		if !s.finish(key, seq) {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Int64("key", key).Msg("Scheduled task panicked")
			}
		}()
		fn()
	})
	s.tasks[key] = t
}

// finish removes the task if it is still the current one for key.
func (s *Scheduler) finish(key int64, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key]
	if !ok || t.seq != seq {
		return false
	}
	delete(s.tasks, key)
	return !s.stopped
}

// Cancel drops the task pending for key and reports whether there was one.
func (s *Scheduler) Cancel(key int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}

// Pending reports whether a task is waiting for key.
func (s *Scheduler) Pending(key int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.tasks[key]
	return ok
}

// Stop cancels every pending task and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
}
