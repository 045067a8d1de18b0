package game

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/wfunc/duet/models"
	"github.com/wfunc/duet/protocol"
)

// HandleEvent applies one remote event to local state. Unknown names and
// malformed payloads are no-ops: a peer can never crash this session.
// Handlers never re-emit: the relay already withholds the echo from the
// sender, and re-emitting here would bounce events between the two parties
// forever.
func (s *Session) HandleEvent(ev protocol.Event) {
	switch ev.Name {
	case protocol.EventDraw:
		s.handleDraw(ev.Data)
	case protocol.EventChat:
		s.handleChat(ev.Data)
	case protocol.EventSkipRound:
		s.handleSkipRound()
	case protocol.EventAddScore:
		s.handleAddScore()
	case protocol.EventRequestSwitch:
		s.handleRequestSwitch()
	case protocol.EventSwitchApproved:
		s.handleSwitchApproved()
	case protocol.EventBlitzWin:
		s.handleBlitzWin()
	}
}

func (s *Session) handleDraw(data json.RawMessage) {
	var p protocol.DrawPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.inDrawing() {
		return
	}
	color := p.Color
	if color == "" {
		color = DefaultStrokeColor
	}
	s.ui.DrawDot(p.X, p.Y, color)
}

func (s *Session) handleChat(data json.RawMessage) {
	var msg string
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.transcript = append(s.transcript, models.TranscriptEntry{
		Author: models.AuthorPartner,
		Text:   msg,
		At:     time.Now(),
	})
	if !s.chatOpen {
		s.unread = true
	}
}

func (s *Session) handleSkipRound() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.finished() {
		return
	}
	s.ui.Notice("Partner skipped the round!")
	s.advanceRound()
}

// handleAddScore mirrors the partner's save. The bonus is drawn locally and
// is not required to equal the amount the sender awarded itself: scores only
// need to be directionally consistent. The round does not move here, only
// the saving side advances.
func (s *Session) handleAddScore() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.finished() {
		return
	}
	s.partnerScore += rand.Intn(maxSaveBonus) + 1
	s.ui.UpdateScoreboard(s.scoreboard())
}

func (s *Session) handleRequestSwitch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.finished() {
		return
	}
	s.promptVisible = true
	s.promptSeq++
	seq := s.promptSeq
	s.ui.ShowSwitchPrompt()
	s.sched.After(SwitchPromptTTL, func() {
		s.expireSwitchPrompt(seq)
	})
}

// expireSwitchPrompt auto-hides the prompt. The timeout sends nothing back:
// the requester never learns and its pending flag stays set indefinitely.
func (s *Session) expireSwitchPrompt(seq int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.promptVisible || s.promptSeq != seq {
		return
	}
	s.promptVisible = false
	s.ui.HideSwitchPrompt()
}

// handleSwitchApproved is the single point where the activity changes, on
// both the requester and the accepter.
func (s *Session) handleSwitchApproved() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.finished() {
		return
	}
	s.switchRequestPending = false
	if s.promptVisible {
		s.promptVisible = false
		s.ui.HideSwitchPrompt()
	}
	if s.inDrawing() {
		_ = s.machine.ChangeState(s.wordRace)
	}
}

func (s *Session) handleBlitzWin() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.finished() {
		return
	}
	s.blitz = BlitzLost
	s.currentWord = ""
	s.partnerScore += BlitzBonus
	s.ui.BlitzStatus("You lost")
	s.ui.UpdateScoreboard(s.scoreboard())
	s.sched.After(BlitzCooldown, s.finishBlitz)
}
