package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/hints"
)

// Manager is the registry of live sessions behind the HTTP surface.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	cfg       *config.Config
	suggester *hints.Suggester
	logger    *zap.Logger
}

// NewManager creates a session registry. suggester may be nil.
func NewManager(cfg *config.Config, suggester *hints.Suggester, logger *zap.Logger) *Manager {
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		cfg:       cfg,
		suggester: suggester,
		logger:    logger,
	}
}

// Create registers a new session and returns it.
func (m *Manager) Create() *Session {
	sess := New(m.cfg, m.suggester, m.logger)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess
}

// Get returns the session with the given ID.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return sess, nil
}

// Delete removes a session from the registry.
func (m *Manager) Delete(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
