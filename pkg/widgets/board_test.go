package widgets

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/tracking"
)

type fakeWidget struct {
	id       string
	interval time.Duration

	mu    sync.Mutex
	calls int
	data  any
	err   error
}

func (f *fakeWidget) ID() string              { return f.id }
func (f *fakeWidget) Interval() time.Duration { return f.interval }

func (f *fakeWidget) Refresh(ctx context.Context) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.data, f.err
}

func (f *fakeWidget) set(data any, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data, f.err = data, err
}

func (f *fakeWidget) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestBoard(t *testing.T, widgets []Widget, opts ...Option) (*Board, *tracking.ManualScheduler) {
	t.Helper()
	sched := tracking.NewManualScheduler()
	b := NewBoard(sched, widgets, append([]Option{WithLogger(log.Discard())}, opts...)...)
	t.Cleanup(b.Stop)
	return b, sched
}

func TestStartSchedulesEnabledWidgets(t *testing.T) {
	a := &fakeWidget{id: "a", interval: time.Second, data: 1}
	b := &fakeWidget{id: "b", interval: time.Minute, data: 2}
	board, sched := newTestBoard(t, []Widget{a, b})

	board.Start(func(id string) bool { return id == "a" })

	if sched.Active() != 1 {
		t.Fatalf("active tasks = %d, want 1", sched.Active())
	}
	if got := sched.Intervals(); len(got) != 1 || got[0] != time.Second {
		t.Errorf("intervals = %v", got)
	}
	waitFor(t, func() bool { _, ok := board.Panel("a"); return ok })
	if b.callCount() != 0 {
		t.Error("disabled widget was refreshed")
	}
	if !board.Enabled("a") || board.Enabled("b") {
		t.Error("Enabled() disagrees with Start")
	}
}

func TestTickRefreshesPanels(t *testing.T) {
	w := &fakeWidget{id: "w", interval: time.Second, data: "first"}
	board, sched := newTestBoard(t, []Widget{w})
	board.Start(nil)
	waitFor(t, func() bool { return w.callCount() == 1 })
	waitFor(t, func() bool { _, ok := board.Panel("w"); return ok })

	w.set("second", nil)
	if ran := sched.Tick(); ran != 1 {
		t.Fatalf("Tick ran %d tasks", ran)
	}
	p, _ := board.Panel("w")
	if p.Data != "second" || p.Error != "" {
		t.Errorf("panel = %+v", p)
	}
}

func TestFailedRefreshKeepsLastData(t *testing.T) {
	w := &fakeWidget{id: "w", interval: time.Second, data: "good"}
	board, _ := newTestBoard(t, []Widget{w})
	board.Start(nil)
	waitFor(t, func() bool { p, _ := board.Panel("w"); return p.Data == "good" })

	w.set(nil, errors.New("offline"))
	p, err := board.Refresh("w")
	if err != nil {
		t.Fatal(err)
	}
	if p.Data != "good" || p.Error != "offline" {
		t.Errorf("panel = %+v", p)
	}

	w.set("fallback", errors.New("still offline"))
	p, _ = board.Refresh("w")
	if p.Data != "fallback" || p.Error != "still offline" {
		t.Errorf("panel = %+v", p)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWithLoggerTagsComponent(t *testing.T) {
	var out syncBuffer
	w := &fakeWidget{id: "w", interval: time.Second, err: errors.New("offline")}
	board := NewBoard(tracking.NewManualScheduler(), []Widget{w},
		WithLogger(slog.New(slog.NewTextHandler(&out, nil))))
	t.Cleanup(board.Stop)

	if _, err := board.Refresh("w"); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "widget refresh failed") {
		t.Fatalf("missing refresh warning in %q", got)
	}
	if !strings.Contains(got, "component=widgets") {
		t.Errorf("missing component attr in %q", got)
	}
}

func TestDisableDropsPanel(t *testing.T) {
	w := &fakeWidget{id: "w", interval: time.Second, data: 1}
	board, sched := newTestBoard(t, []Widget{w})
	board.Start(nil)
	waitFor(t, func() bool { _, ok := board.Panel("w"); return ok })

	if err := board.SetEnabled("w", false); err != nil {
		t.Fatal(err)
	}
	if sched.Active() != 0 {
		t.Errorf("active = %d after disable", sched.Active())
	}
	if len(board.Panels()) != 0 {
		t.Error("panel kept after disable")
	}

	// A refresh racing the disable must not resurrect the panel.
	board.Refresh("w")
	if _, ok := board.Panel("w"); ok {
		t.Error("refresh after disable stored a panel")
	}

	if err := board.SetEnabled("nope", true); !errors.Is(err, ErrUnknownWidget) {
		t.Errorf("err = %v, want ErrUnknownWidget", err)
	}
}

func TestEnableTwiceKeepsOneTask(t *testing.T) {
	w := &fakeWidget{id: "w", interval: time.Second}
	board, sched := newTestBoard(t, []Widget{w})
	board.SetEnabled("w", true)
	board.SetEnabled("w", true)
	if sched.Created() != 1 {
		t.Errorf("created %d tasks, want 1", sched.Created())
	}
}

func TestStopCancelsEverything(t *testing.T) {
	a := &fakeWidget{id: "a", interval: time.Second}
	b := &fakeWidget{id: "b", interval: time.Second}
	board, sched := newTestBoard(t, []Widget{a, b})
	board.Start(nil)

	board.Stop()
	if sched.Active() != 0 {
		t.Errorf("active = %d after Stop", sched.Active())
	}
	board.SetEnabled("a", true)
	if sched.Active() != 0 {
		t.Error("SetEnabled after Stop scheduled a task")
	}
}

func TestPublisherAndObserver(t *testing.T) {
	var mu sync.Mutex
	var published []Panel
	results := map[string]int{}

	w := &fakeWidget{id: "w", interval: time.Second, data: 7}
	board, _ := newTestBoard(t, []Widget{w},
		WithPublisher(func(p Panel) {
			mu.Lock()
			published = append(published, p)
			mu.Unlock()
		}),
		WithRefreshObserver(func(id string, err error) {
			mu.Lock()
			if err != nil {
				results[id+":error"]++
			} else {
				results[id+":ok"]++
			}
			mu.Unlock()
		}),
		WithClock(func() time.Time { return time.Unix(100, 0) }),
	)
	board.Start(nil)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(published) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if published[0].ID != "w" || published[0].Data != 7 || !published[0].UpdatedAt.Equal(time.Unix(100, 0)) {
		t.Errorf("published = %+v", published[0])
	}
	if results["w:ok"] != 1 {
		t.Errorf("results = %v", results)
	}
}
