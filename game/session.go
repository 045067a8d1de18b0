// Package game implements the client-side session state machine. Each
// client runs its own instance; the two instances converge by reacting to
// the same event stream, never by sharing an object or receiving a state
// snapshot. Equivalence invariant: after quiescence both machines must agree
// on the active activity and on every round advanced by skip or word-race
// resolution.
package game

import (
	"sync"
	"time"

	"github.com/wfunc/duet/models"
	"github.com/wfunc/duet/protocol"
	"github.com/wfunc/duet/state"
)

const (
	// MaxRounds bounds the progress axis; round MaxRounds+1 is the final
	// screen.
	MaxRounds = 5

	// BlitzBonus is the fixed award for a word-race win, identical on both
	// sides.
	BlitzBonus = 5

	// maxSaveBonus bounds the random save award, drawn independently on
	// each side.
	maxSaveBonus = 5

	// SwitchPromptTTL is how long the responder's prompt stays up before it
	// auto-hides.
	SwitchPromptTTL = 15 * time.Second

	// BlitzCooldown is the celebratory delay before a resolved word race
	// returns to drawing.
	BlitzCooldown = 2 * time.Second

	DefaultStrokeColor = "#ff69b4"
)

// BlitzState tracks the word race on the local side. Only the initiator
// moves through Armed; the opposing side only ever observes Won or Lost.
type BlitzState int

const (
	BlitzIdle BlitzState = iota
	BlitzArmed
	BlitzWon
	BlitzLost
)

// Emitter sends one event toward the relay.
type Emitter interface {
	Emit(ev protocol.Event) error
}

// Scheduler defers a callback. The production implementation is
// timer.Manager; tests substitute a double that fires on demand.
type Scheduler interface {
	After(delay time.Duration, callback func()) int64
}

// UI receives the session's rendering side effects. Canvas and DOM concerns
// live entirely behind it.
type UI interface {
	DrawDot(x, y float64, color string)
	Notice(msg string)
	UpdateScoreboard(sb models.Scoreboard)
	ShowSwitchPrompt()
	HideSwitchPrompt()
	BlitzStatus(msg string)
	ShowFinal(result models.FinalResult)
}

// Session is one client's replicated view of the paired session.
type Session struct {
	mutex sync.Mutex

	round        int
	yourScore    int
	partnerScore int

	machine  state.Machine
	drawing  *DrawingState
	wordRace *WordRaceState
	final    *FinalState

	switchRequestPending bool
	promptVisible        bool
	promptSeq            int // stale-timer guard for the prompt auto-hide

	blitz       BlitzState
	currentWord string

	pressed bool
	muted   bool

	transcript []models.TranscriptEntry
	chatOpen   bool
	unread     bool

	emitter Emitter
	sched   Scheduler
	ui      UI
}

func NewSession(emitter Emitter, sched Scheduler, ui UI) *Session {
	s := &Session{
		round:   1,
		emitter: emitter,
		sched:   sched,
		ui:      ui,
	}
	s.drawing = &DrawingState{s: s}
	s.wordRace = &WordRaceState{s: s}
	s.final = &FinalState{s: s}

	machine := state.NewBaseMachine(s.drawing)
	// The final screen is terminal.
	machine.AddTransition(s.final, s.drawing, func() bool { return false })
	machine.AddTransition(s.final, s.wordRace, func() bool { return false })
	s.machine = machine
	return s
}

// --- read accessors ---

func (s *Session) Round() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.round
}

func (s *Session) YourScore() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.yourScore
}

func (s *Session) PartnerScore() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.partnerScore
}

// Activity returns the current activity state ID.
func (s *Session) Activity() string {
	return s.machine.Current().ID()
}

func (s *Session) SwitchRequestPending() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.switchRequestPending
}

func (s *Session) Blitz() BlitzState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.blitz
}

// CurrentWord is only meaningful on the side that armed the race.
func (s *Session) CurrentWord() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.currentWord
}

// Transcript returns a copy of the chat log.
func (s *Session) Transcript() []models.TranscriptEntry {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]models.TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) Unread() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.unread
}

func (s *Session) Scoreboard() models.Scoreboard {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.scoreboard()
}

// Muted reports the local mute flag. Mute is strictly local: it is never
// transmitted and the partner is never told.
func (s *Session) Muted() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.muted
}

func (s *Session) SetMuted(muted bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.muted = muted
}

// --- internal helpers, callers hold s.mutex ---

// emitEvent sends one event toward the relay. Failures are swallowed: the
// protocol is fire-and-forget and a lost event is an accepted desync risk,
// never a user-visible error.
func (s *Session) emitEvent(name string, payload interface{}) {
	ev, err := protocol.NewEvent(name, payload)
	if err != nil {
		return
	}
	_ = s.emitter.Emit(ev)
}

func (s *Session) inDrawing() bool {
	return s.machine.Current() == state.State(s.drawing)
}

func (s *Session) inWordRace() bool {
	return s.machine.Current() == state.State(s.wordRace)
}

func (s *Session) finished() bool {
	return s.machine.Current() == state.State(s.final)
}

func (s *Session) scoreboard() models.Scoreboard {
	return models.Scoreboard{
		Round:        s.round,
		MaxRounds:    MaxRounds,
		YourScore:    s.yourScore,
		PartnerScore: s.partnerScore,
	}
}

func (s *Session) finalResult() models.FinalResult {
	verdict := models.VerdictDraw
	switch {
	case s.yourScore > s.partnerScore:
		verdict = models.VerdictYou
	case s.partnerScore > s.yourScore:
		verdict = models.VerdictPartner
	}
	return models.FinalResult{
		YourScore:    s.yourScore,
		PartnerScore: s.partnerScore,
		Verdict:      verdict,
	}
}

// advanceRound moves the progress axis by exactly one. Past the last round
// the session enters the terminal final screen instead; round never moves
// again after that.
func (s *Session) advanceRound() {
	if s.finished() {
		return
	}
	s.round++
	if s.round > MaxRounds {
		_ = s.machine.ChangeState(s.final)
		return
	}
	s.ui.UpdateScoreboard(s.scoreboard())
}

// finishBlitz runs after the BlitzCooldown. The word race may already be
// over by the time it fires; returning to drawing clears the armed word, so
// a stale invocation is a no-op.
func (s *Session) finishBlitz() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.inWordRace() {
		return
	}
	// At the final round a word-race win does not advance past the last
	// screen; the gate avoids overshooting MaxRounds.
	if s.round < MaxRounds {
		s.round++
		s.ui.UpdateScoreboard(s.scoreboard())
	}
	_ = s.machine.ChangeState(s.drawing)
}
