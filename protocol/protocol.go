// Package protocol defines the event vocabulary exchanged through the relay
// and the connection primitives both sides use to carry it. The relay routes
// on the event name only; Data stays an opaque blob end to end.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event names carried over the relay.
const (
	EventDraw           = "draw"
	EventChat           = "chat"
	EventVoiceSignal    = "voice-signal"
	EventSkipRound      = "skip-round"
	EventAddScore       = "add-score"
	EventRequestSwitch  = "request-switch"
	EventAcceptSwitch   = "accept-switch"
	EventSwitchApproved = "switch-approved"
	EventBlitzWin       = "blitz-win"
)

// Event is the JSON envelope for every message on the wire.
type Event struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrMalformedEvent reports an inbound frame that does not decode into an
// Event envelope. Receivers treat it as a no-op, never as a fault.
var ErrMalformedEvent = errors.New("malformed event envelope")

// NewEvent builds an envelope with the payload marshalled into Data. A nil
// payload produces an event with no Data, which several events in the
// vocabulary use (skip-round, add-score, the switch negotiation).
func NewEvent(name string, payload interface{}) (Event, error) {
	ev := Event{Name: name}
	if payload == nil {
		return ev, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	ev.Data = data
	return ev, nil
}

// DrawPayload is a single stroke point. Coordinates are canvas-local and are
// never validated or clamped anywhere in the protocol.
type DrawPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
}
