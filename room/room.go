// room/room.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/duet/session"
)

// MaxParties is the hard capacity of a room: the protocol pairs exactly two
// participants.
const MaxParties = 2

// ErrRoomFull is returned when a third party tries to join a pair.
var ErrRoomFull = errors.New("room already has two parties")

// Room pairs up to two sessions. It is purely a routing entry: the relay
// keeps no game state here: no history, no scores, no activity.
type Room struct {
	ID        string
	CreatedAt time.Time
	sessions  map[string]*session.Session
	mutex     sync.RWMutex
}

// NewRoom 创建一个新房间
func NewRoom(id string) *Room {
	return &Room{
		ID:        id,
		CreatedAt: time.Now(),
		sessions:  make(map[string]*session.Session),
	}
}

// AddSession joins a session to the room, enforcing the two-party limit.
func (r *Room) AddSession(s *session.Session) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.sessions) >= MaxParties {
		return ErrRoomFull
	}

	r.sessions[s.ID] = s
	s.RoomID = r.ID
	return nil
}

// RemoveSession drops a session from the room.
func (r *Room) RemoveSession(sessionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if s, exists := r.sessions[sessionID]; exists {
		s.RoomID = ""
		delete(r.sessions, sessionID)
	}
}

// Peer returns the other party in the room, if one is connected. The second
// return value is false when the sender is alone, which is a normal
// condition and not an error.
func (r *Room) Peer(excludeID string) (*session.Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for id, s := range r.sessions {
		if id != excludeID {
			return s, true
		}
	}
	return nil, false
}

// Sessions returns a snapshot of all sessions in the room (thread-safe).
func (r *Room) Sessions() []*session.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Size returns the number of joined sessions.
func (r *Room) Size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}

// --- 房间管理器 ---

// Manager tracks all live rooms.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate returns the room with the given ID, creating it on first join.
// Pairing is external: both parties arrive with the same room ID and nothing
// else ties them together.
func (m *Manager) GetOrCreate(id string) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if r, exists := m.rooms[id]; exists {
		return r
	}
	r := NewRoom(id)
	m.rooms[id] = r
	return r
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, exists := m.rooms[id]
	return r, exists
}

// Remove drops a room from the manager.
func (m *Manager) Remove(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, id)
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
