package conversation

import (
	"sync"

	"github.com/sandevgo/campusbot/internal/core"
)

const DefaultCapacity = 10

type ring struct {
	mu    sync.Mutex
	turns []core.Turn
}

// Store keeps the most recent turns per user in memory. Nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	rings    map[string]*ring
	capacity int
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		rings:    make(map[string]*ring),
		capacity: capacity,
	}
}

func (s *Store) get(user string) *ring {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rings[user]
}

func (s *Store) getOrCreate(user string) *ring {
	if r := s.get(user); r != nil {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rings[user]
	if !ok {
		r = &ring{}
		s.rings[user] = r
	}
	return r
}

// Append adds a turn and drops the oldest ones beyond capacity.
func (s *Store) Append(user string, turn core.Turn) {
	r := s.getOrCreate(user)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.turns = append(r.turns, turn)
	if over := len(r.turns) - s.capacity; over > 0 {
		kept := make([]core.Turn, s.capacity)
		copy(kept, r.turns[over:])
		r.turns = kept
	}
}

// History returns a copy, oldest first. Unknown users get an empty slice.
func (s *Store) History(user string) []core.Turn {
	r := s.get(user)
	if r == nil {
		return []core.Turn{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]core.Turn, len(r.turns))
	copy(out, r.turns)
	return out
}

func (s *Store) Clear(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rings, user)
}

// Users returns the number of users with stored history.
func (s *Store) Users() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rings)
}
