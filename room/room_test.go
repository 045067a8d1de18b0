package room

import (
	"net"
	"testing"

	"github.com/wfunc/duet/protocol"
	"github.com/wfunc/duet/session"
)

// MockConn is a test double for the protocol.Conn interface.
type MockConn struct{}

func (m *MockConn) WriteEvent(ev protocol.Event) error  { return nil }
func (m *MockConn) ReadEvent() (*protocol.Event, error) { return nil, nil }
func (m *MockConn) Close() error                        { return nil }
func (m *MockConn) RemoteAddr() net.Addr                { return &net.TCPAddr{} }

func newTestSession(id string) *session.Session {
	return session.NewSession(id, &MockConn{})
}

func TestRoom_AddSession(t *testing.T) {
	room := NewRoom("test_room")
	s1 := newTestSession("s1")

	if err := room.AddSession(s1); err != nil {
		t.Fatalf("Failed to add first session: %v", err)
	}
	if room.Size() != 1 {
		t.Errorf("Expected size 1, got %d", room.Size())
	}
	if s1.RoomID != room.ID {
		t.Errorf("Session should carry the room ID, got %q", s1.RoomID)
	}
}

func TestRoom_AddSession_Full(t *testing.T) {
	room := NewRoom("test_room")

	if err := room.AddSession(newTestSession("s1")); err != nil {
		t.Fatalf("Failed to add the first session: %v", err)
	}
	if err := room.AddSession(newTestSession("s2")); err != nil {
		t.Fatalf("Failed to add the second session: %v", err)
	}

	if err := room.AddSession(newTestSession("s3")); err != ErrRoomFull {
		t.Fatalf("Expected ErrRoomFull for a third party, got %v", err)
	}
	if room.Size() != 2 {
		t.Errorf("Expected size to stay 2, got %d", room.Size())
	}
}

func TestRoom_Peer(t *testing.T) {
	room := NewRoom("test_room")
	s1 := newTestSession("s1")
	s2 := newTestSession("s2")

	room.AddSession(s1)

	// Alone in the room: no counterpart, and that is not an error.
	if _, ok := room.Peer(s1.ID); ok {
		t.Fatal("Peer should report no counterpart for a lone session")
	}

	room.AddSession(s2)

	peer, ok := room.Peer(s1.ID)
	if !ok {
		t.Fatal("Peer should find the counterpart")
	}
	if peer != s2 {
		t.Error("Peer should return the other session, not the sender")
	}

	peer, ok = room.Peer(s2.ID)
	if !ok || peer != s1 {
		t.Error("Peer should be symmetric")
	}
}

func TestRoom_RemoveSession(t *testing.T) {
	room := NewRoom("test_room")
	s1 := newTestSession("s1")
	room.AddSession(s1)

	room.RemoveSession(s1.ID)

	if room.Size() != 0 {
		t.Errorf("Expected size 0 after removal, got %d", room.Size())
	}
	if s1.RoomID != "" {
		t.Errorf("Removed session should drop its room ID, got %q", s1.RoomID)
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()

	r1 := manager.GetOrCreate("pair-1")
	if r1 == nil {
		t.Fatal("GetOrCreate should not return nil")
	}
	if again := manager.GetOrCreate("pair-1"); again != r1 {
		t.Error("GetOrCreate should return the existing room for the same ID")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 room, got %d", manager.Count())
	}

	manager.Remove("pair-1")
	if manager.Count() != 0 {
		t.Errorf("Expected 0 rooms after removal, got %d", manager.Count())
	}
	if _, exists := manager.Get("pair-1"); exists {
		t.Error("Get should not find the removed room")
	}
}
