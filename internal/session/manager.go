package session

import (
	"context"
	"sync"

	"itinventory/internal/docstore"
	"itinventory/internal/inventory/equipment"
	"itinventory/pkg/models"

	"go.uber.org/zap"
)

// Manager owns the open sessions, one per principal.
type Manager struct {
	docs   docstore.Store
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(docs docstore.Store, logger *zap.Logger) *Manager {
	return &Manager{
		docs:     docs,
		logger:   logger,
		sessions: map[string]*Session{},
	}
}

// Open returns the principal's session, creating and loading it on first
// use. A failed load leaves the session open with an empty cache; the load
// error is returned alongside it.
func (m *Manager) Open(ctx context.Context, principal models.Principal) (*Session, error) {
	m.mu.Lock()
	if existing, ok := m.sessions[principal.ID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	sess := New(principal, equipment.NewStore(m.docs, principal.ID, m.logger))
	m.sessions[principal.ID] = sess
	m.mu.Unlock()

	m.logger.Info("Session opened", zap.String("principal", principal.ID), zap.String("email", principal.Email))

	err := sess.Exclusive(func() error {
		return sess.Store().Load(ctx)
	})
	return sess, err
}

func (m *Manager) Get(principalID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[principalID]
	return sess, ok
}

// Close tears the principal's session down. Operations already running
// finish first.
func (m *Manager) Close(principalID string) {
	m.mu.Lock()
	sess, ok := m.sessions[principalID]
	delete(m.sessions, principalID)
	m.mu.Unlock()

	if !ok {
		return
	}
	sess.close()
	m.logger.Info("Session closed", zap.String("principal", principalID))
}

// HandleEvent follows the auth service's sign-in and sign-out events.
func (m *Manager) HandleEvent(ctx context.Context, event models.SessionEvent) {
	switch event.Kind {
	case models.SignedIn:
		if _, err := m.Open(ctx, event.Principal); err != nil {
			m.logger.Warn("Session opened without data", zap.String("principal", event.Principal.ID), zap.Error(err))
		}
	case models.SignedOut:
		m.Close(event.Principal.ID)
	}
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
