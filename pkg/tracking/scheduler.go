package tracking

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task is a scheduled, cancellable recurring job.
type Task interface {
	// Stop cancels the task. No new run starts after Stop returns.
	// Safe to call more than once.
	Stop()
}

// Scheduler creates recurring tasks. Whoever calls Every owns the returned Task.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

// TickerScheduler runs each task on its own goroutine driven by a time.Ticker.
type TickerScheduler struct {
	active atomic.Int64
}

// NewTickerScheduler creates a scheduler backed by real time.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// Every starts fn every interval until the task is stopped.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) Task {
	t := &tickerTask{
		quit:  make(chan struct{}),
		owner: s,
	}
	s.active.Add(1)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.quit:
				return
			case <-ticker.C:
				// Stop may have raced with the tick.
				select {
				case <-t.quit:
					return
				default:
				}
				fn()
			}
		}
	}()
	return t
}

// Active returns the number of tasks that have not been stopped.
func (s *TickerScheduler) Active() int {
	return int(s.active.Load())
}

type tickerTask struct {
	quit  chan struct{}
	once  sync.Once
	owner *TickerScheduler
}

func (t *tickerTask) Stop() {
	t.once.Do(func() {
		close(t.quit)
		t.owner.active.Add(-1)
	})
}
