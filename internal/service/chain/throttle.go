package chain

import (
	"sort"
	"sync"
	"time"
)

// ThrottleState is the process-wide set of provider names presumed rate
// limited, each with the time it was last marked.
type ThrottleState struct {
	mu        sync.RWMutex
	names     map[string]time.Time
	lastReset time.Time
	now       func() time.Time
}

func NewThrottleState() *ThrottleState {
	return newThrottleState(time.Now)
}

func newThrottleState(now func() time.Time) *ThrottleState {
	return &ThrottleState{
		names:     make(map[string]time.Time),
		lastReset: now(),
		now:       now,
	}
}

func (s *ThrottleState) Mark(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[name] = s.now()
}

func (s *ThrottleState) Unmark(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, name)
}

func (s *ThrottleState) IsThrottled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

// Names returns a sorted copy of the throttled set.
func (s *ThrottleState) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s *ThrottleState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

func (s *ThrottleState) LastReset() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReset
}

func (s *ThrottleState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = make(map[string]time.Time)
	s.lastReset = s.now()
}

// ResetIfExpired unmarks every provider whose latest mark is at least
// cooldown old. It reports whether any provider was restored.
func (s *ThrottleState) ResetIfExpired(cooldown time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	restored := false
	for name, marked := range s.names {
		if now.Sub(marked) >= cooldown {
			delete(s.names, name)
			restored = true
		}
	}
	if restored {
		s.lastReset = now
	}
	return restored
}
