package broadcast

import (
	"net"
	"testing"

	"github.com/wfunc/duet/protocol"
	"github.com/wfunc/duet/room"
	"github.com/wfunc/duet/session"
)

// MockConn records every event written to it.
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

func setup(t *testing.T) (*RoomBroadcaster, *MockConn, *MockConn) {
	t.Helper()
	rm := room.NewManager()
	r := rm.GetOrCreate("pair")

	connA := &MockConn{}
	connB := &MockConn{}
	if err := r.AddSession(session.NewSession("a", connA)); err != nil {
		t.Fatalf("AddSession a: %v", err)
	}
	if err := r.AddSession(session.NewSession("b", connB)); err != nil {
		t.Fatalf("AddSession b: %v", err)
	}
	return NewRoomBroadcaster(rm), connA, connB
}

func TestForwardToPeer(t *testing.T) {
	b, connA, connB := setup(t)

	ev, _ := protocol.NewEvent(protocol.EventDraw, protocol.DrawPayload{X: 1, Y: 2})
	delivered, err := b.ForwardToPeer("pair", "a", ev)
	if err != nil {
		t.Fatalf("ForwardToPeer failed: %v", err)
	}
	if !delivered {
		t.Fatal("Expected delivery to the counterpart")
	}

	if len(connB.events) != 1 || connB.events[0].Name != protocol.EventDraw {
		t.Errorf("Peer should have received the draw event, got %v", connB.events)
	}
	if len(connA.events) != 0 {
		t.Error("Sender must never receive its own event back")
	}
}

func TestForwardToPeer_LoneSenderDrops(t *testing.T) {
	rm := room.NewManager()
	r := rm.GetOrCreate("solo")
	conn := &MockConn{}
	r.AddSession(session.NewSession("a", conn))

	b := NewRoomBroadcaster(rm)
	ev, _ := protocol.NewEvent(protocol.EventSkipRound, nil)

	// A missing counterpart is normal operation, not an error.
	delivered, err := b.ForwardToPeer("solo", "a", ev)
	if err != nil {
		t.Fatalf("A silent drop must not be an error, got %v", err)
	}
	if delivered {
		t.Error("Nothing should be delivered without a counterpart")
	}
}

func TestForwardToPeer_UnknownRoom(t *testing.T) {
	b := NewRoomBroadcaster(room.NewManager())
	ev, _ := protocol.NewEvent(protocol.EventChat, "hi")
	if _, err := b.ForwardToPeer("missing", "a", ev); err != ErrRoomNotFound {
		t.Fatalf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestBroadcastToRoom(t *testing.T) {
	b, connA, connB := setup(t)

	ev, _ := protocol.NewEvent(protocol.EventSwitchApproved, nil)
	if err := b.BroadcastToRoom("pair", ev); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	for name, conn := range map[string]*MockConn{"a": connA, "b": connB} {
		if len(conn.events) != 1 || conn.events[0].Name != protocol.EventSwitchApproved {
			t.Errorf("Connection %s should have received switch-approved, got %v", name, conn.events)
		}
	}
}
