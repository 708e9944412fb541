// Package session tracks live connections and the identity attached to each.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/satyamsb1/Tic-tack-toe/protocol"
)

// Session is one live connection. Its ID is the opaque connection identity
// that seats bind to.
type Session struct {
	ID         string
	Conn       protocol.Conn
	CreatedAt  time.Time
	LastActive time.Time

	mu   sync.RWMutex
	name string
}

func NewSession(id string, conn protocol.Conn) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// SetName records the display name announced by the client.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// Name returns the display name, or a placeholder derived from the session
// id when the client never identified itself.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.name != "" {
		return s.name
	}
	id := s.ID
	if len(id) > 4 {
		id = id[:4]
	}
	return fmt.Sprintf("User-%s", id)
}

func (s *Session) GetID() string {
	return s.ID
}

// Send pushes one event down the connection.
func (s *Session) Send(evt protocol.Event) error {
	s.LastActive = time.Now()
	return s.Conn.Send(evt)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks all live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// Each calls fn on a snapshot of every live session. The snapshot keeps fn
// free to send, which may block, without holding the manager lock.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		fn(s)
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
