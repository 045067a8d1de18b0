// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task is a scheduled one-shot callback.
type Task struct {
	ID       int64
	Execute  time.Time
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

const tickInterval = 50 * time.Millisecond

// Manager fires deferred callbacks. Callbacks that can go stale are expected
// to re-check state themselves before acting; the manager makes no promise
// about how soon after the deadline a callback runs, only that it does not
// run before it.
type Manager struct {
	clock  clockwork.Clock
	queue  taskQueue
	mutex  sync.Mutex
	nextID int64
	stop   chan struct{}
}

func NewManager() *Manager {
	return NewManagerWithClock(clockwork.NewRealClock())
}

// NewManagerWithClock injects the clock, letting tests drive the 15 s prompt
// expiry and 2 s blitz cooldown from a fake clock.
func NewManagerWithClock(clock clockwork.Clock) *Manager {
	m := &Manager{
		clock:  clock,
		queue:  make(taskQueue, 0),
		nextID: 1,
		stop:   make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.process()
	return m
}

// After schedules callback to run once delay has elapsed and returns the
// task ID.
func (m *Manager) After(delay time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &Task{
		ID:       m.nextID,
		Execute:  m.clock.Now().Add(delay),
		Callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, task)
	return task.ID
}

// Remove drops a pending task. Removing an already-fired task is a no-op.
func (m *Manager) Remove(taskID int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.ID == taskID {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop shuts down the processing loop. Pending tasks never fire.
func (m *Manager) Stop() {
	close(m.stop)
}

func (m *Manager) process() {
	ticker := m.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			for _, task := range m.popDue() {
				go task.Callback()
			}
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) popDue() []*Task {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.clock.Now()
	var due []*Task
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}
		heap.Pop(&m.queue)
		due = append(due, task)
	}
	return due
}
