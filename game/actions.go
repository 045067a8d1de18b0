package game

import (
	"math/rand"
	"strings"
	"time"

	"github.com/wfunc/duet/models"
	"github.com/wfunc/duet/protocol"
)

// Local user actions. Every action mutates local state optimistically, then
// emits at most one relay event; the matching remote handler lives in
// handlers.go.

// SetPressed tracks the pointer button / touch state for the drawing
// channel.
func (s *Session) SetPressed(pressed bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pressed = pressed
}

// PointerMove renders a stroke point locally and emits it. Coordinates are
// canvas-local and deliberately unclamped; out-of-bounds points are the
// renderer's problem.
func (s *Session) PointerMove(x, y float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.pressed || !s.inDrawing() {
		return
	}
	s.ui.DrawDot(x, y, DefaultStrokeColor)
	s.emitEvent(protocol.EventDraw, protocol.DrawPayload{X: x, Y: y, Color: DefaultStrokeColor})
}

// SendChat appends the message to the local transcript and emits it
// verbatim. No delivery confirmation, no message IDs.
func (s *Session) SendChat(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.transcript = append(s.transcript, models.TranscriptEntry{
		Author: models.AuthorSelf,
		Text:   text,
		At:     time.Now(),
	})
	s.emitEvent(protocol.EventChat, text)
}

// SetChatOpen tracks the transcript panel; opening it clears the unread
// indicator.
func (s *Session) SetChatOpen(open bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.chatOpen = open
	if open {
		s.unread = false
	}
}

// Save banks the current drawing: a random bonus for this side, a
// notification for the other, and the round moves on. The partner awards
// itself an independently drawn bonus; the two amounts are not required to
// match.
func (s *Session) Save() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.inDrawing() {
		return
	}
	s.yourScore += rand.Intn(maxSaveBonus) + 1
	s.emitEvent(protocol.EventAddScore, nil)
	s.advanceRound()
}

// Skip advances the round with no score effect and tells the partner to do
// the same.
func (s *Session) Skip() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.finished() {
		return
	}
	s.emitEvent(protocol.EventSkipRound, nil)
	s.advanceRound()
}

// RequestSwitch proposes moving to the word race. The request stays pending
// until a switch-approved broadcast arrives; if the partner lets the prompt
// expire, no resolution ever comes and the flag stays set.
func (s *Session) RequestSwitch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.inDrawing() || s.switchRequestPending {
		return
	}
	s.switchRequestPending = true
	s.emitEvent(protocol.EventRequestSwitch, nil)
	s.ui.Notice("Waiting for partner...")
}

// AcceptSwitch answers a visible prompt. The activity does not change here:
// both sides transition only on the switch-approved broadcast, so that the
// switch lands at the same point in each side's own event order.
func (s *Session) AcceptSwitch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.promptVisible {
		return
	}
	s.promptVisible = false
	s.ui.HideSwitchPrompt()
	s.emitEvent(protocol.EventAcceptSwitch, nil)
}

// DeclineSwitch hides the prompt locally. Nothing is sent; the requester is
// left pending.
func (s *Session) DeclineSwitch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.promptVisible {
		return
	}
	s.promptVisible = false
	s.ui.HideSwitchPrompt()
}

// ArmBlitz picks a secret word and opens the race for input on this side.
func (s *Session) ArmBlitz() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.inWordRace() || s.blitz == BlitzArmed {
		return
	}
	s.currentWord = pickWord()
	s.blitz = BlitzArmed
	s.ui.BlitzStatus("GO!")
}

// SubmitGuess checks free-text input against the armed word. The match is
// exact and case-sensitive after trimming. A win awards the fixed bonus,
// emits exactly one blitz-win, and schedules the return to drawing.
func (s *Session) SubmitGuess(text string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.blitz != BlitzArmed || s.currentWord == "" {
		return false
	}
	if strings.TrimSpace(text) != s.currentWord {
		return false
	}

	s.blitz = BlitzWon
	s.currentWord = ""
	s.yourScore += BlitzBonus
	s.emitEvent(protocol.EventBlitzWin, nil)
	s.ui.BlitzStatus("You won!")
	s.ui.UpdateScoreboard(s.scoreboard())
	s.sched.After(BlitzCooldown, s.finishBlitz)
	return true
}
