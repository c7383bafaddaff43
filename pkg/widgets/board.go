// Package widgets refreshes the information panels shown around the mirror
// image: clock, weather, calendar, news and system info.
//
// Each enabled widget gets one recurring task on a tracking.Scheduler. A
// failed refresh keeps the last good data (or the widget's offline data) and
// records the error on the panel.
package widgets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/tracking"
)

// ErrUnknownWidget is returned for ids the board was not built with.
var ErrUnknownWidget = errors.New("widgets: unknown widget")

// DefaultTimeout bounds a single refresh.
const DefaultTimeout = 10 * time.Second

// Widget produces the data for one panel.
type Widget interface {
	ID() string
	Interval() time.Duration
	// Refresh returns the panel data. On error it may still return
	// offline data to show instead.
	Refresh(ctx context.Context) (any, error)
}

// Panel is the latest state of one widget.
type Panel struct {
	ID        string    `json:"id"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type entry struct {
	w       Widget
	refresh sync.Mutex // one refresh at a time per widget
}

// Board owns the refresh task of every enabled widget.
type Board struct {
	sched   tracking.Scheduler
	logger  *slog.Logger
	timeout time.Duration
	observe func(id string, err error)
	publish func(Panel)
	now     func() time.Time

	order   []string
	entries map[string]*entry

	mu     sync.Mutex
	tasks  map[string]tracking.Task
	panels map[string]Panel
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger. Records carry component=widgets.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.logger = log.Or(l, "widgets") }
}

// WithTimeout bounds each refresh.
func WithTimeout(d time.Duration) Option {
	return func(b *Board) { b.timeout = d }
}

// WithRefreshObserver is told the outcome of every refresh.
func WithRefreshObserver(fn func(id string, err error)) Option {
	return func(b *Board) { b.observe = fn }
}

// WithPublisher receives each updated panel.
func WithPublisher(fn func(Panel)) Option {
	return func(b *Board) { b.publish = fn }
}

// WithClock overrides time.Now for panel timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// NewBoard builds a board for widgets. Nothing runs until Start.
func NewBoard(sched tracking.Scheduler, widgets []Widget, opts ...Option) *Board {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Board{
		sched:   sched,
		timeout: DefaultTimeout,
		now:     time.Now,
		entries: make(map[string]*entry, len(widgets)),
		tasks:   make(map[string]tracking.Task),
		panels:  make(map[string]Panel),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, w := range widgets {
		b.order = append(b.order, w.ID())
		b.entries[w.ID()] = &entry{w: w}
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.Component("widgets")
	}
	return b
}

// Start schedules every widget for which enabled returns true and kicks off
// their first refresh in the background. A nil enabled starts all widgets.
func (b *Board) Start(enabled func(id string) bool) {
	for _, id := range b.order {
		if enabled == nil || enabled(id) {
			b.SetEnabled(id, true)
		}
	}
}

// SetEnabled starts or stops one widget. Disabling drops its panel.
func (b *Board) SetEnabled(id string, enabled bool) error {
	e, ok := b.entries[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWidget, id)
	}

	b.mu.Lock()
	if b.ctx.Err() != nil {
		b.mu.Unlock()
		return nil
	}
	task, running := b.tasks[id]
	switch {
	case enabled && !running:
		b.tasks[id] = b.sched.Every(e.w.Interval(), func() { b.refresh(e) })
		b.mu.Unlock()
		go b.refresh(e)
		b.logger.Debug("widget enabled", "widget", id, "interval", e.w.Interval())
		return nil
	case !enabled && running:
		task.Stop()
		delete(b.tasks, id)
		delete(b.panels, id)
		b.logger.Debug("widget disabled", "widget", id)
	}
	b.mu.Unlock()
	return nil
}

// Refresh updates widget id now and returns its panel.
func (b *Board) Refresh(id string) (Panel, error) {
	e, ok := b.entries[id]
	if !ok {
		return Panel{}, fmt.Errorf("%w: %q", ErrUnknownWidget, id)
	}
	b.refresh(e)
	p, _ := b.Panel(id)
	return p, nil
}

func (b *Board) refresh(e *entry) {
	e.refresh.Lock()
	defer e.refresh.Unlock()

	id := e.w.ID()
	ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	data, err := e.w.Refresh(ctx)
	cancel()

	if b.observe != nil {
		b.observe(id, err)
	}
	if err != nil {
		b.logger.Warn("widget refresh failed", "widget", id, "error", err)
	}

	b.mu.Lock()
	if _, running := b.tasks[id]; !running || b.ctx.Err() != nil {
		b.mu.Unlock()
		return
	}
	p := b.panels[id]
	p.ID = id
	p.UpdatedAt = b.now()
	p.Error = ""
	if err != nil {
		p.Error = err.Error()
	}
	if data != nil {
		p.Data = data
	}
	b.panels[id] = p
	b.mu.Unlock()

	if b.publish != nil {
		b.publish(p)
	}
}

// Panel returns the latest panel for id.
func (b *Board) Panel(id string) (Panel, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.panels[id]
	return p, ok
}

// Panels returns the panels of enabled widgets that have refreshed at least
// once, in board order.
func (b *Board) Panels() []Panel {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Panel, 0, len(b.panels))
	for _, id := range b.order {
		if p, ok := b.panels[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Enabled reports whether id has a running task.
func (b *Board) Enabled(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tasks[id]
	return ok
}

// Stop cancels in-flight refreshes and every task. The board cannot be
// restarted.
func (b *Board) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cancel()
	for id, t := range b.tasks {
		t.Stop()
		delete(b.tasks, id)
	}
}
