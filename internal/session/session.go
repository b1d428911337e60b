package session

import (
	"sync"
	"time"

	"itinventory/internal/inventory/equipment"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"
)

// Session is the context of one signed-in principal. Operations run through
// Exclusive, one at a time.
type Session struct {
	principal models.Principal
	store     *equipment.Store
	openedAt  time.Time

	mu     sync.Mutex
	closed bool
}

func New(principal models.Principal, store *equipment.Store) *Session {
	return &Session{
		principal: principal,
		store:     store,
		openedAt:  time.Now(),
	}
}

func (s *Session) Principal() models.Principal {
	return s.principal
}

func (s *Session) Store() *equipment.Store {
	return s.store
}

func (s *Session) OpenedAt() time.Time {
	return s.openedAt
}

// Exclusive runs fn while no other operation of this session runs.
func (s *Session) Exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return custom_error.New(custom_error.CodeUnauthorized, "session closed")
	}
	return fn()
}

func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
