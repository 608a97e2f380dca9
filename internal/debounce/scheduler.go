// Package debounce delays work until a quiet period follows repeated
// triggers, one pending timer per slot.
package debounce

import (
	"fmt"
	"sync"
	"time"
)

// Defaults for NewScheduler.
const (
	DefaultSlots = 4
	DefaultDelay = time.Second
)

// Func is invoked when a slot fires. gen identifies the arm that fired;
// pass it to Current to detect a newer arm in the same slot.
type Func func(gen uint64)

type slot struct {
	timer *time.Timer
	gen   uint64
}

// Scheduler owns a fixed table of debounce slots.
type Scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	slots   []slot
	stopped bool
}

// NewScheduler creates a scheduler with n slots and the given delay.
// Non-positive values fall back to the defaults.
func NewScheduler(n int, delay time.Duration) *Scheduler {
	if n <= 0 {
		n = DefaultSlots
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{
		delay: delay,
		slots: make([]slot, n),
	}
}

// Slots returns the table capacity.
func (s *Scheduler) Slots() int {
	return len(s.slots)
}

// Delay returns the quiet period.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

func (s *Scheduler) check(i int) error {
	if i < 0 || i >= len(s.slots) {
		return fmt.Errorf("debounce: slot %d out of range [0,%d)", i, len(s.slots))
	}
	return nil
}

// Arm cancels any pending timer in slot i and starts a new one. fn runs on
// its own goroutine once the delay elapses without another Arm of the same
// slot. The slot is cleared before fn is called.
func (s *Scheduler) Arm(i int, fn Func) (uint64, error) {
	if err := s.check(i); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return 0, fmt.Errorf("debounce: scheduler stopped")
	}

	sl := &s.slots[i]
	if sl.timer != nil {
		sl.timer.Stop()
		sl.timer = nil
	}
	sl.gen++
	gen := sl.gen

	var t *time.Timer
	t = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		cur := &s.slots[i]
		// A Stop that lost the race with the runtime leaves a stale timer.
		if cur.timer != t || cur.gen != gen {
			s.mu.Unlock()
			return
		}
		cur.timer = nil
		s.mu.Unlock()

		fn(gen)
	})
	sl.timer = t

	return gen, nil
}

// Current reports whether gen is still the latest arm of slot i.
func (s *Scheduler) Current(i int, gen uint64) bool {
	if s.check(i) != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && s.slots[i].gen == gen
}

// Pending reports whether slot i holds an unfired timer.
func (s *Scheduler) Pending(i int) bool {
	if s.check(i) != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[i].timer != nil
}

// Cancel drops the pending timer in slot i, if any. Callbacks already
// running see a stale generation afterwards.
func (s *Scheduler) Cancel(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &s.slots[i]
	if sl.timer != nil {
		sl.timer.Stop()
		sl.timer = nil
	}
	sl.gen++
	return nil
}

// Stop cancels every slot and rejects further arms.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.slots {
		if s.slots[i].timer != nil {
			s.slots[i].timer.Stop()
			s.slots[i].timer = nil
		}
		s.slots[i].gen++
	}
	s.stopped = true
}
