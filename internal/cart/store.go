package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"royal-kart/internal/model"
)

// ErrConflict is returned when a cart kept changing underneath an update
// until the retry budget ran out.
var ErrConflict = errors.New("cart was modified concurrently")

// UpdateFunc mutates a session's cart. Returning an error discards the
// mutation.
type UpdateFunc func(c *Cart) error

// Store persists carts by session id. Update calls are serialised per
// session, so concurrent tabs never lose writes.
type Store interface {
	// Load returns the session's cart, or an empty cart when none is stored.
	Load(ctx context.Context, session string) (*Cart, error)

	// Update loads the cart, applies fn and saves the result if fn succeeds.
	// The returned cart reflects the saved state.
	Update(ctx context.Context, session string, fn UpdateFunc) (*Cart, error)

	// Delete drops the session's cart.
	Delete(ctx context.Context, session string) error
}

type memoryEntry struct {
	lines     []model.CartLine
	expiresAt time.Time
}

// memoryStore keeps carts in process memory. Used when Redis is disabled.
type memoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore creates an in-process store. Sessions idle for longer than
// ttl are dropped on next access.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *memoryStore) loadLocked(session string) *Cart {
	e, ok := s.entries[session]
	if !ok {
		return New()
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.entries, session)
		return New()
	}
	return FromLines(e.lines)
}

func (s *memoryStore) Load(ctx context.Context, session string) (*Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(session), nil
}

func (s *memoryStore) Update(ctx context.Context, session string, fn UpdateFunc) (*Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.loadLocked(session)
	if err := fn(c); err != nil {
		return nil, err
	}

	lines := c.Lines()
	if len(lines) == 0 {
		delete(s.entries, session)
	} else {
		s.entries[session] = memoryEntry{lines: lines, expiresAt: s.now().Add(s.ttl)}
	}
	return c, nil
}

func (s *memoryStore) Delete(ctx context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, session)
	return nil
}
