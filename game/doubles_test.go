package game

import (
	"sync"
	"testing"
	"time"

	"github.com/wfunc/duet/models"
	"github.com/wfunc/duet/protocol"
)

// mockEmitter records emitted events.
type mockEmitter struct {
	mu     sync.Mutex
	events []protocol.Event
}

func (m *mockEmitter) Emit(ev protocol.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockEmitter) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Name == name {
			n++
		}
	}
	return n
}

func (m *mockEmitter) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// mockScheduler captures deferred callbacks so tests fire them on demand.
type mockScheduler struct {
	mu     sync.Mutex
	nextID int64
	tasks  []scheduledTask
}

type scheduledTask struct {
	id       int64
	delay    time.Duration
	callback func()
}

func (m *mockScheduler) After(delay time.Duration, callback func()) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.tasks = append(m.tasks, scheduledTask{id: m.nextID, delay: delay, callback: callback})
	return m.nextID
}

func (m *mockScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// fire runs the i-th scheduled callback. It does not consume the task, so a
// test can invoke the same callback twice to simulate a stale timer.
func (m *mockScheduler) fire(t *testing.T, i int) {
	t.Helper()
	m.mu.Lock()
	if i >= len(m.tasks) {
		m.mu.Unlock()
		t.Fatalf("No scheduled task at index %d", i)
	}
	cb := m.tasks[i].callback
	m.mu.Unlock()
	cb()
}

// mockUI records every rendering side effect.
type mockUI struct {
	mu           sync.Mutex
	dots         []protocol.DrawPayload
	notices      []string
	scoreboards  []models.Scoreboard
	promptShown  int
	promptHidden int
	blitzStatus  []string
	finals       []models.FinalResult
}

func (m *mockUI) DrawDot(x, y float64, color string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dots = append(m.dots, protocol.DrawPayload{X: x, Y: y, Color: color})
}

func (m *mockUI) Notice(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, msg)
}

func (m *mockUI) UpdateScoreboard(sb models.Scoreboard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreboards = append(m.scoreboards, sb)
}

func (m *mockUI) ShowSwitchPrompt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptShown++
}

func (m *mockUI) HideSwitchPrompt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptHidden++
}

func (m *mockUI) BlitzStatus(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blitzStatus = append(m.blitzStatus, msg)
}

func (m *mockUI) ShowFinal(result models.FinalResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finals = append(m.finals, result)
}

func (m *mockUI) dotCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dots)
}

func (m *mockUI) finalCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.finals)
}

// testSession wires a session to fresh doubles.
func newTestSession() (*Session, *mockEmitter, *mockScheduler, *mockUI) {
	emitter := &mockEmitter{}
	sched := &mockScheduler{}
	ui := &mockUI{}
	return NewSession(emitter, sched, ui), emitter, sched, ui
}

// approveSwitch moves the session into the word race the way the relay
// would, via the broadcast.
func approveSwitch(s *Session) {
	s.HandleEvent(protocol.Event{Name: protocol.EventSwitchApproved})
}
