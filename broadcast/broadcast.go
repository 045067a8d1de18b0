// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/duet/protocol"
	"github.com/wfunc/duet/room"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// Broadcaster delivers relay events. Delivery is best-effort throughout: no
// acknowledgment type exists anywhere in the protocol, and an undeliverable
// event is dropped silently.
type Broadcaster interface {
	// ForwardToPeer unicasts an event to the other party in the room. The
	// bool reports whether anyone received it; a lone sender is normal
	// operation, not an error.
	ForwardToPeer(roomID, senderID string, ev protocol.Event) (bool, error)
	// BroadcastToRoom delivers an event to every connection in the room,
	// sender included.
	BroadcastToRoom(roomID string, ev protocol.Event) error
}

// RoomBroadcaster routes through the room manager.
type RoomBroadcaster struct {
	roomManager *room.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{roomManager: roomManager}
}

func (b *RoomBroadcaster) ForwardToPeer(roomID, senderID string, ev protocol.Event) (bool, error) {
	r, exists := b.roomManager.Get(roomID)
	if !exists {
		return false, ErrRoomNotFound
	}

	peer, ok := r.Peer(senderID)
	if !ok {
		return false, nil
	}

	if err := peer.Send(ev); err != nil {
		// The write failed mid-disconnect; treated the same as a drop.
		return false, nil
	}
	return true, nil
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, ev protocol.Event) error {
	r, exists := b.roomManager.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, s := range r.Sessions() {
		if err := s.Send(ev); err != nil {
			continue
		}
	}
	return nil
}
