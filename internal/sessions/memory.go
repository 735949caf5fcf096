package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Entries older than the TTL
// are evicted on every Put, so an idle server does not accumulate dead
// sessions between creations. The mutex is required: gin serves handlers on
// concurrent goroutines.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]*Session

	now func() time.Time // test hook
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{ttl: ttl, m: make(map[string]*Session), now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for id, old := range s.m {
		if old.CreatedAt.Before(cutoff) {
			delete(s.m, id)
		}
	}

	s.m[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok || sess.CreatedAt.Before(s.now().Add(-s.ttl)) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}
