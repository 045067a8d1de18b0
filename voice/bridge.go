// Package voice implements the signaling side of the peer-to-peer audio
// channel. Handshake envelopes ride the relay as voice-signal events; the
// relay and the rest of the protocol treat them as opaque blobs. Media
// capture and codec negotiation are the embedder's concern.
package voice

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/wfunc/duet/protocol"
)

// Signal kinds inside the envelope.
const (
	signalOffer     = "offer"
	signalAnswer    = "answer"
	signalCandidate = "candidate"
)

// Signal is the handshake envelope carried inside a voice-signal event.
type Signal struct {
	Type      string `json:"type"`
	SDP       string `json:"sdp,omitempty"`
	Candidate string `json:"candidate,omitempty"` // JSON-encoded ICECandidateInit
}

// Emitter sends a voice-signal event toward the relay.
type Emitter interface {
	Emit(ev protocol.Event) error
}

// Bridge drives one side of the handshake. Exactly one side is the
// initiator, designated out of band; the other side stays passive until an
// offer arrives.
type Bridge struct {
	pc        *webrtc.PeerConnection
	emitter   Emitter
	initiator bool

	mutex sync.Mutex
	muted bool
}

// NewBridge builds the peer connection, attaches an audio transceiver, and
// registers the trickle-ICE callback.
func NewBridge(initiator bool, emitter Emitter) (*Bridge, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio); err != nil {
		pc.Close()
		return nil, fmt.Errorf("add audio transceiver: %w", err)
	}

	b := &Bridge{pc: pc, emitter: emitter, initiator: initiator}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		data, _ := json.Marshal(c.ToJSON())
		// Best-effort, like every other relay event.
		_ = b.send(Signal{Type: signalCandidate, Candidate: string(data)})
	})

	return b, nil
}

// Start kicks off the handshake. Non-initiators do nothing here and wait
// for HandleSignal to see the offer.
func (b *Bridge) Start() error {
	if !b.initiator {
		return nil
	}

	offer, err := b.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	if err := b.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}
	return b.send(Signal{Type: signalOffer, SDP: offer.SDP})
}

// HandleSignal applies one incoming envelope. Malformed payloads are
// no-ops; the session must survive anything the relay passes along.
func (b *Bridge) HandleSignal(data json.RawMessage) {
	var sig Signal
	if err := json.Unmarshal(data, &sig); err != nil {
		return
	}

	switch sig.Type {
	case signalOffer:
		if b.initiator {
			return
		}
		if err := b.pc.SetRemoteDescription(webrtc.SessionDescription{
			Type: webrtc.SDPTypeOffer,
			SDP:  sig.SDP,
		}); err != nil {
			return
		}
		answer, err := b.pc.CreateAnswer(nil)
		if err != nil {
			return
		}
		if err := b.pc.SetLocalDescription(answer); err != nil {
			return
		}
		_ = b.send(Signal{Type: signalAnswer, SDP: answer.SDP})

	case signalAnswer:
		_ = b.pc.SetRemoteDescription(webrtc.SessionDescription{
			Type: webrtc.SDPTypeAnswer,
			SDP:  sig.SDP,
		})

	case signalCandidate:
		var init webrtc.ICECandidateInit
		if err := json.Unmarshal([]byte(sig.Candidate), &init); err != nil {
			return
		}
		_ = b.pc.AddICECandidate(init)
	}
}

func (b *Bridge) send(sig Signal) error {
	ev, err := protocol.NewEvent(protocol.EventVoiceSignal, sig)
	if err != nil {
		return err
	}
	return b.emitter.Emit(ev)
}

// SetMuted flips the local mute flag. Nothing is transmitted; the partner
// is never told. The capture layer consults Muted before pushing samples.
func (b *Bridge) SetMuted(muted bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.muted = muted
}

func (b *Bridge) Muted() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.muted
}

// SignalingState exposes the underlying handshake progress.
func (b *Bridge) SignalingState() webrtc.SignalingState {
	return b.pc.SignalingState()
}

func (b *Bridge) Close() error {
	return b.pc.Close()
}
