// Package tracking runs the periodic face polling loop that feeds the mirror overlays.
package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/debug"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
)

// SampleFunc receives the faces found on one tick (zero or one element).
type SampleFunc func(faces []detection.Face)

// ObserveFunc is notified after every tick. err is non-nil when the source failed.
type ObserveFunc func(faces int, err error)

// Loop polls a face source on a fixed period and publishes each result.
// At most one scheduled task exists at any time.
type Loop struct {
	source  detection.Detector
	sched   Scheduler
	logger  *slog.Logger
	observe ObserveFunc

	mu       sync.Mutex
	task     Task
	gen      uint64
	interval time.Duration
	onSample SampleFunc

	ticks  atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop's logger.
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) {
		lp.logger = log.Or(l, "tracking")
	}
}

// WithObserver registers a per-tick observer (metrics).
func WithObserver(fn ObserveFunc) Option {
	return func(lp *Loop) {
		lp.observe = fn
	}
}

// NewLoop creates a stopped loop reading from source.
func NewLoop(source detection.Detector, sched Scheduler, opts ...Option) *Loop {
	l := &Loop{
		source: source,
		sched:  sched,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.Component("tracking")
	}
	return l
}

// Start begins ticking every interval. A running task is stopped first.
func (l *Loop) Start(interval time.Duration, onSample SampleFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopLocked()

	l.gen++
	gen := l.gen
	l.interval = interval
	l.onSample = onSample
	l.task = l.sched.Every(interval, func() { l.tick(gen) })

	l.logger.Info("tracking loop started", "interval", interval)
}

// Stop cancels the running task. Calling Stop on a stopped loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.task == nil {
		return
	}
	l.stopLocked()
	l.logger.Info("tracking loop stopped", "ticks", l.ticks.Load())
}

func (l *Loop) stopLocked() {
	if l.task != nil {
		l.task.Stop()
		l.task = nil
	}
	// Invalidates any tick already past the scheduler.
	l.gen++
	l.onSample = nil
}

// Running reports whether a task is scheduled.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.task != nil
}

// Interval returns the period of the running task, or zero when stopped.
func (l *Loop) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.task == nil {
		return 0
	}
	return l.interval
}

// Stats returns lifetime tick, miss and error counts.
func (l *Loop) Stats() (ticks, misses, errs uint64) {
	return l.ticks.Load(), l.misses.Load(), l.errors.Load()
}

// current returns the callback for gen, or nil when gen is stale.
func (l *Loop) current(gen uint64) (SampleFunc, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen || l.task == nil {
		return nil, 0
	}
	return l.onSample, l.interval
}

func (l *Loop) tick(gen uint64) {
	onSample, interval := l.current(gen)
	if onSample == nil {
		return
	}

	l.ticks.Add(1)

	faces, err := l.detect(interval)
	if err != nil {
		l.errors.Add(1)
		l.logger.Warn("tracking tick failed, continuing", "error", err)
		if l.observe != nil {
			l.observe(0, err)
		}
		return
	}

	var out []detection.Face
	if best := detection.SelectBest(faces); best != nil {
		out = []detection.Face{best.Clone()}
		x, y := best.Center()
		debug.TrackLog("face sample", "x", x, "y", y, "confidence", best.Confidence)
	} else {
		l.misses.Add(1)
		debug.TrackLog("face miss")
	}

	if l.observe != nil {
		l.observe(len(out), nil)
	}

	// Re-check: Stop may have run while the source was busy.
	if cb, _ := l.current(gen); cb == nil {
		return
	}
	onSample(out)
}

// detect calls the source, converting a panic into an error so the loop survives.
func (l *Loop) detect(timeout time.Duration) (faces []detection.Face, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tracking: face source panicked: %v", r)
		}
	}()

	if timeout <= 0 {
		timeout = InteractiveInterval
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return l.source.Detect(ctx)
}
