package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/logger"
	"github.com/comigor/creatorvault/internal/vault"
)

// Manager owns the live sessions. Sessions share nothing with each other.
type Manager struct {
	negotiator Negotiator
	timeout    time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(negotiator Negotiator, timeout time.Duration) *Manager {
	return &Manager{
		negotiator: negotiator,
		timeout:    timeout,
		sessions:   make(map[string]*Session),
	}
}

// Start opens a session for asset, seeded with the licensee request notice.
func (m *Manager) Start(asset vault.Asset) *Session {
	s := New(uuid.NewString(), asset, m.negotiator,
		WithTimeout(m.timeout),
		WithNotice(fmt.Sprintf("Potential licensee has initiated a request for %q.", asset.Name)),
	)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	logger.L.Info("session started", "session_id", s.ID, "asset_id", asset.ID)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session " + id)
	}
	return s, nil
}

// End discards the session and its log.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return apperr.NotFound("session " + id)
	}
	delete(m.sessions, id)
	logger.L.Info("session ended", "session_id", id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
