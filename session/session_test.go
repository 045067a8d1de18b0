package session

import (
	"net"
	"testing"

	"github.com/wfunc/duet/protocol"
)

// MockConn is a test double for the protocol.Conn interface.
type MockConn struct {
	events []protocol.Event
}

func (m *MockConn) WriteEvent(ev protocol.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *MockConn) ReadEvent() (*protocol.Event, error) { return nil, nil }
func (m *MockConn) Close() error                        { return nil }
func (m *MockConn) RemoteAddr() net.Addr                { return &net.TCPAddr{} }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConn{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrieved, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrieved != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	if _, exists = manager.Get(sessionID); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_Send(t *testing.T) {
	conn := &MockConn{}
	sess := NewSession("test_session", conn)
	before := sess.LastActive

	ev, err := protocol.NewEvent(protocol.EventChat, "hi")
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if err := sess.Send(ev); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(conn.events) != 1 {
		t.Fatalf("Expected 1 written event, got %d", len(conn.events))
	}
	if conn.events[0].Name != protocol.EventChat {
		t.Errorf("Expected chat event, got %q", conn.events[0].Name)
	}
	if sess.LastActive.Before(before) {
		t.Error("Send should refresh LastActive")
	}
}
