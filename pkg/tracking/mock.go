package tracking

import (
	"sync"
	"time"
)

// ManualScheduler is a Scheduler for tests: tasks only run when Tick is called.
type ManualScheduler struct {
	mu      sync.Mutex
	tasks   []*manualTask
	created int
}

// NewManualScheduler creates an idle manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

type manualTask struct {
	owner    *ManualScheduler
	interval time.Duration
	fn       func()
	stopped  bool
}

func (t *manualTask) Stop() {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	t.stopped = true
}

// Every registers fn; it runs once per Tick until stopped.
func (m *ManualScheduler) Every(interval time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTask{owner: m, interval: interval, fn: fn}
	m.tasks = append(m.tasks, t)
	m.created++
	return t
}

// Tick runs every live task once and returns how many ran.
func (m *ManualScheduler) Tick() int {
	m.mu.Lock()
	var live []*manualTask
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.tasks = live
	m.mu.Unlock()

	ran := 0
	for _, t := range live {
		m.mu.Lock()
		stopped := t.stopped
		m.mu.Unlock()
		if stopped {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

// Active returns the number of tasks not yet stopped.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Created returns how many tasks were ever registered.
func (m *ManualScheduler) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}

// Intervals returns the periods of the live tasks.
func (m *ManualScheduler) Intervals() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []time.Duration
	for _, t := range m.tasks {
		if !t.stopped {
			out = append(out, t.interval)
		}
	}
	return out
}
