package game

// Activity state IDs. At most one activity is active at any time.
const (
	StateDrawing  = "drawing"
	StateWordRace = "wordrace"
	StateFinal    = "final"
)

// DrawingState is the default activity: stroke points flow both ways.
type DrawingState struct {
	s *Session
}

func (st *DrawingState) ID() string { return StateDrawing }

func (st *DrawingState) OnEnter() {
	st.s.pressed = false
}

func (st *DrawingState) OnExit() {}

// WordRaceState is the timed typing contest. Entering or leaving it always
// clears the armed word, so a deferred win check left behind by a timer
// finds nothing to act on.
type WordRaceState struct {
	s *Session
}

func (st *WordRaceState) ID() string { return StateWordRace }

func (st *WordRaceState) OnEnter() {
	st.s.blitz = BlitzIdle
	st.s.currentWord = ""
}

func (st *WordRaceState) OnExit() {
	st.s.blitz = BlitzIdle
	st.s.currentWord = ""
}

// FinalState is terminal: the machine blocks every transition out of it and
// the handlers ignore round and score events once it is entered.
type FinalState struct {
	s *Session
}

func (st *FinalState) ID() string { return StateFinal }

func (st *FinalState) OnEnter() {
	st.s.ui.ShowFinal(st.s.finalResult())
}

func (st *FinalState) OnExit() {}
