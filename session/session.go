// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/duet/protocol"
)

// Session represents one connected party. It carries no identity beyond
// being one side of whichever room it joined.
type Session struct {
	ID         string
	Conn       protocol.Conn
	RoomID     string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.Mutex
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

func (s *Session) Send(ev protocol.Event) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.WriteEvent(ev)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
