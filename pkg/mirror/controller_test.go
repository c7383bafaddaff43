package mirror

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/camera"
	"github.com/teslashibe/go-mirror/pkg/display"
	"github.com/teslashibe/go-mirror/pkg/tracking"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
)

type fixture struct {
	session *camera.Session
	sched   *tracking.ManualScheduler
	loop    *tracking.Loop
	host    *display.FakeHost
	ctrl    *Controller
}

func newFixture(t *testing.T, capturer camera.Capturer, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithMissRate(t, capturer, 0, opts...)
}

func newFixtureWithMissRate(t *testing.T, capturer camera.Capturer, missRate float64, opts ...Option) *fixture {
	t.Helper()

	cfg := camera.DefaultConfig()
	cfg.ResetDelay = 0
	session := camera.NewSession(capturer, cfg, camera.WithLogger(log.Discard()))

	gen := detection.NewSynthetic(
		detection.WithRand(rand.New(rand.NewPCG(1, 2))),
		detection.WithMissRate(missRate),
	)
	sched := tracking.NewManualScheduler()
	loop := tracking.NewLoop(gen, sched, tracking.WithLogger(log.Discard()))

	host := &display.FakeHost{
		ScreenValue: display.Screen{Width: 1920, Height: 1080},
		Agent:       "Mozilla/5.0 Chromium/120 kiosk",
	}

	opts = append([]Option{WithLogger(log.Discard())}, opts...)
	ctrl := New(session, loop, host, opts...)
	t.Cleanup(func() { ctrl.Close() })

	return &fixture{session: session, sched: sched, loop: loop, host: host, ctrl: ctrl}
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	if err := f.ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
}

func intervals(s *tracking.ManualScheduler) string {
	return fmt.Sprint(s.Intervals())
}

// statusLog records the distinct statuses seen by a subscriber.
type statusLog struct {
	mu       sync.Mutex
	statuses []camera.Status
	seqs     []uint64
}

func (l *statusLog) record(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seqs = append(l.seqs, s.Seq)
	if n := len(l.statuses); n > 0 && l.statuses[n-1] == s.Status {
		return
	}
	l.statuses = append(l.statuses, s.Status)
}

func (l *statusLog) get() []camera.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]camera.Status(nil), l.statuses...)
}

type memoryStore struct {
	mu     sync.Mutex
	loaded Preferences
	err    error
	saved  []Preferences
}

func (m *memoryStore) LoadPreferences() (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded, m.err
}

func (m *memoryStore) SavePreferences(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, p)
	return nil
}

func (m *memoryStore) last() (Preferences, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return Preferences{}, false
	}
	return m.saved[len(m.saved)-1], true
}

func TestController_InitializeWithCamera(t *testing.T) {
	m := &camera.MockCapturer{}
	f := newFixture(t, m)
	f.init(t)

	s := f.ctrl.Snapshot()
	if s.Status != camera.StatusAvailable || !s.Streaming {
		t.Fatalf("Expected available and streaming, got %s streaming=%v", s.Status, s.Streaming)
	}
	if s.Tier != camera.Tier1080pFront {
		t.Errorf("Expected tier %q, got %q", camera.Tier1080pFront, s.Tier)
	}
	if len(s.Faces) != 1 {
		t.Errorf("Expected the idle face to be seeded, got %d faces", len(s.Faces))
	}
	if s.Display.Kind != display.KindMirror {
		t.Errorf("Expected mirror display, got %s", s.Display.Kind)
	}
	if s.SessionID == "" {
		t.Error("Expected a session id")
	}
	if got := intervals(f.sched); got != fmt.Sprint([]time.Duration{tracking.InteractiveInterval}) {
		t.Errorf("Expected one task at the interactive rate, got %s", got)
	}
	if s.StatusText() != "Live Camera" {
		t.Errorf("Expected status text 'Live Camera', got %q", s.StatusText())
	}
}

func TestController_InitializeIsIdempotent(t *testing.T) {
	m := &camera.MockCapturer{}
	f := newFixture(t, m)
	f.init(t)
	f.init(t)

	if m.Calls() != 1 {
		t.Errorf("Expected one acquisition, got %d", m.Calls())
	}
	if f.sched.Active() != 1 {
		t.Errorf("Expected one task, got %d", f.sched.Active())
	}
}

func TestController_NoCaptureAPIRunsDemo(t *testing.T) {
	f := newFixture(t, camera.NullCapturer{})
	f.init(t)

	s := f.ctrl.Snapshot()
	if s.Status != camera.StatusUnavailable {
		t.Errorf("Expected unavailable, got %s", s.Status)
	}
	if s.Streaming {
		t.Error("Expected no stream")
	}
	if s.Error != camera.MsgUnsupported {
		t.Errorf("Expected %q, got %q", camera.MsgUnsupported, s.Error)
	}
	idle := detection.Idle()
	if len(s.Faces) != 1 || s.Faces[0].X != idle.X || s.Faces[0].Y != idle.Y || s.Faces[0].Width != idle.Width {
		t.Errorf("Expected exactly the idle face, got %+v", s.Faces)
	}
	if got := intervals(f.sched); got != fmt.Sprint([]time.Duration{tracking.DemoInterval}) {
		t.Errorf("Expected one task at the demo rate, got %s", got)
	}
	if s.StatusText() != "Demo Mode" {
		t.Errorf("Expected status text 'Demo Mode', got %q", s.StatusText())
	}
}

func TestController_DeniedLeavesExactlyOneFace(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{OpenFunc: camera.RejectAll(camera.ErrPermissionDenied)})

	// Tracking off clears faces; the failure still installs the idle face.
	f.ctrl.ToggleTracking(false)
	f.init(t)

	s := f.ctrl.Snapshot()
	if s.Status != camera.StatusDenied {
		t.Fatalf("Expected denied, got %s", s.Status)
	}
	if len(s.Faces) != 1 {
		t.Errorf("Expected exactly one face, got %d", len(s.Faces))
	}
	if s.StatusText() != "Permission Denied" {
		t.Errorf("Expected 'Permission Denied', got %q", s.StatusText())
	}
}

func TestController_DeniedThenPermissionGranted(t *testing.T) {
	m := &camera.MockCapturer{OpenFunc: camera.RejectFirst(1, camera.ErrPermissionDenied)}
	f := newFixture(t, m)

	rec := &statusLog{}
	f.ctrl.Subscribe(rec.record)

	f.init(t)
	if f.ctrl.Snapshot().Status != camera.StatusDenied {
		t.Fatalf("Expected denied, got %s", f.ctrl.Snapshot().Status)
	}

	if err := f.ctrl.RequestPermission(context.Background()); err != nil {
		t.Fatalf("RequestPermission failed: %v", err)
	}

	want := []camera.Status{camera.StatusChecking, camera.StatusDenied, camera.StatusChecking, camera.StatusAvailable}
	if got := rec.get(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Expected transitions %v, got %v", want, got)
	}

	s := f.ctrl.Snapshot()
	if !s.Streaming || s.Error != "" {
		t.Errorf("Expected streaming with no error, got streaming=%v error=%q", s.Streaming, s.Error)
	}
	if got := intervals(f.sched); got != fmt.Sprint([]time.Duration{tracking.InteractiveInterval}) {
		t.Errorf("Expected the loop re-armed at the interactive rate, got %s", got)
	}
}

func TestController_LadderFallback(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{OpenFunc: camera.RejectFirst(3, camera.ErrConstraintsUnsupported)})
	f.init(t)

	s := f.ctrl.Snapshot()
	if s.Status != camera.StatusAvailable || !s.Streaming || s.Tier != camera.TierAny {
		t.Errorf("Expected available on tier %q, got %+v", camera.TierAny, s)
	}
}

func TestController_ToggleTracking(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})
	f.init(t)

	f.ctrl.ToggleTracking(false)
	s := f.ctrl.Snapshot()
	if len(s.Faces) != 0 {
		t.Errorf("Expected faces cleared on disable, got %d", len(s.Faces))
	}
	if s.TrackingEnabled {
		t.Error("Expected tracking disabled")
	}
	if f.sched.Active() != 0 {
		t.Errorf("Expected no task while disabled, got %d", f.sched.Active())
	}
	if ran := f.sched.Tick(); ran != 0 {
		t.Errorf("Expected no ticks while disabled, got %d", ran)
	}
	if !s.Streaming {
		t.Error("Expected the stream to be left running")
	}

	f.ctrl.ToggleTracking(true)
	if f.sched.Active() != 1 {
		t.Fatalf("Expected one task after enable, got %d", f.sched.Active())
	}
	f.sched.Tick()

	s = f.ctrl.Snapshot()
	if len(s.Faces) != 1 {
		t.Fatalf("Expected a face within one tick, got %d", len(s.Faces))
	}
	if !s.Faces[0].Valid() {
		t.Errorf("Expected a valid face, got %+v", s.Faces[0])
	}
}

func TestController_MissKeepsLastFace(t *testing.T) {
	tests := []struct {
		name     string
		capturer camera.Capturer
		status   camera.Status
	}{
		{"streaming", &camera.MockCapturer{}, camera.StatusAvailable},
		{"denied", &camera.MockCapturer{OpenFunc: camera.RejectAll(camera.ErrPermissionDenied)}, camera.StatusDenied},
		{"no capture API", camera.NullCapturer{}, camera.StatusUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWithMissRate(t, tt.capturer, 1)
			f.init(t)

			for i := 0; i < 3; i++ {
				f.sched.Tick()
			}
			s := f.ctrl.Snapshot()
			if s.Status != tt.status {
				t.Fatalf("Expected %s, got %s", tt.status, s.Status)
			}
			if len(s.Faces) != 1 {
				t.Errorf("Expected the last face kept through misses, got %d faces", len(s.Faces))
			}
			if _, misses, _ := f.loop.Stats(); misses != 3 {
				t.Errorf("Expected 3 misses, got %d", misses)
			}
		})
	}
}

func TestController_EnableSeedsFaceDespiteMiss(t *testing.T) {
	f := newFixtureWithMissRate(t, &camera.MockCapturer{}, 1)
	f.init(t)

	f.ctrl.ToggleTracking(false)
	f.ctrl.ToggleTracking(true)
	if n := len(f.ctrl.Snapshot().Faces); n != 1 {
		t.Fatalf("Expected the idle face on enable, got %d", n)
	}

	f.sched.Tick()
	s := f.ctrl.Snapshot()
	if len(s.Faces) != 1 {
		t.Fatalf("Expected a face after one missed tick, got %d", len(s.Faces))
	}
	idle := detection.Idle()
	if s.Faces[0].X != idle.X || s.Faces[0].Y != idle.Y {
		t.Errorf("Expected the idle face, got %+v", s.Faces[0])
	}
}

func TestController_PermissionOnLiveCameraStaysAvailable(t *testing.T) {
	m := &camera.MockCapturer{}
	f := newFixture(t, m)
	f.init(t)

	if err := f.ctrl.RequestPermission(context.Background()); err != nil {
		t.Fatalf("RequestPermission failed: %v", err)
	}
	s := f.ctrl.Snapshot()
	if s.Status != camera.StatusAvailable || !s.Streaming {
		t.Errorf("Expected available and streaming, got %s streaming=%v", s.Status, s.Streaming)
	}
	if m.Calls() != 1 {
		t.Errorf("Expected no second acquisition, got %d", m.Calls())
	}
}

func TestController_StopDuringAcquisitionSettles(t *testing.T) {
	gate := make(chan struct{})
	m := &camera.MockCapturer{Gate: gate}
	f := newFixture(t, m)

	done := make(chan error, 1)
	go func() { done <- f.ctrl.Initialize(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for m.Calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the camera open")
		}
		time.Sleep(time.Millisecond)
	}
	f.ctrl.StopCamera()
	close(gate)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Initialize did not return")
	}

	s := f.ctrl.Snapshot()
	if s.Status != camera.StatusAvailable || s.Streaming {
		t.Errorf("Expected available without a stream, got %s streaming=%v", s.Status, s.Streaming)
	}
	if s.StatusText() != "Camera Off" {
		t.Errorf("Expected 'Camera Off', got %q", s.StatusText())
	}
	if m.LiveStreams() != 0 {
		t.Errorf("Expected the late stream released, got %d live", m.LiveStreams())
	}
}

func TestController_LateSampleAfterDisableIsDropped(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})
	f.init(t)

	f.ctrl.ToggleTracking(false)
	f.ctrl.OnSample([]detection.Face{detection.Idle()})

	if n := len(f.ctrl.Snapshot().Faces); n != 0 {
		t.Errorf("Expected late sample dropped, got %d faces", n)
	}
}

func TestController_RetryNeverLeavesTwoTasks(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})
	f.init(t)

	for i := 0; i < 5; i++ {
		if err := f.ctrl.RetryCamera(context.Background()); err != nil {
			t.Fatalf("RetryCamera %d failed: %v", i, err)
		}
		if f.sched.Active() != 1 {
			t.Fatalf("Retry %d: expected one task, got %d", i, f.sched.Active())
		}
	}

	before, _, _ := f.loop.Stats()
	if ran := f.sched.Tick(); ran != 1 {
		t.Errorf("Expected one task to run, got %d", ran)
	}
	after, _, _ := f.loop.Stats()
	if after-before != 1 {
		t.Errorf("Expected one tick, got %d", after-before)
	}
	if !f.ctrl.Snapshot().Streaming {
		t.Error("Expected a stream after retry")
	}
}

func TestController_RetryFromDemoRecovers(t *testing.T) {
	m := &camera.MockCapturer{OpenFunc: camera.RejectFirst(1, camera.ErrDeviceBusy)}
	f := newFixture(t, m)
	f.init(t)

	s := f.ctrl.Snapshot()
	if s.Error != camera.MsgBusy {
		t.Fatalf("Expected busy message, got %q", s.Error)
	}

	if err := f.ctrl.RetryCamera(context.Background()); err != nil {
		t.Fatalf("RetryCamera failed: %v", err)
	}
	s = f.ctrl.Snapshot()
	if !s.Streaming || s.Status != camera.StatusAvailable {
		t.Errorf("Expected recovery, got %+v", s)
	}
	if got := intervals(f.sched); got != fmt.Sprint([]time.Duration{tracking.InteractiveInterval}) {
		t.Errorf("Expected interactive rate after recovery, got %s", got)
	}
}

func TestController_StopAndStartCamera(t *testing.T) {
	m := &camera.MockCapturer{}
	f := newFixture(t, m)
	f.init(t)

	f.ctrl.StopCamera()
	s := f.ctrl.Snapshot()
	if s.Streaming {
		t.Error("Expected stream stopped")
	}
	if m.LiveStreams() != 0 {
		t.Errorf("Expected tracks released, got %d", m.LiveStreams())
	}
	if s.StatusText() != "Camera Off" {
		t.Errorf("Expected 'Camera Off', got %q", s.StatusText())
	}
	if got := intervals(f.sched); got != fmt.Sprint([]time.Duration{tracking.DemoInterval}) {
		t.Errorf("Expected demo rate, got %s", got)
	}

	if err := f.ctrl.StartCamera(context.Background()); err != nil {
		t.Fatalf("StartCamera failed: %v", err)
	}
	if !f.ctrl.Snapshot().Streaming {
		t.Error("Expected stream restarted")
	}
	if f.sched.Active() != 1 {
		t.Errorf("Expected one task, got %d", f.sched.Active())
	}
}

func TestController_ModesFiltersGuides(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})
	f.init(t)

	if err := f.ctrl.SetMode("makeup"); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	if g := f.ctrl.Snapshot().Guide; g != GuideFoundation {
		t.Errorf("Expected default makeup guide, got %q", g)
	}
	if err := f.ctrl.SetGuide("lipstick"); err != nil {
		t.Errorf("SetGuide(lipstick) failed: %v", err)
	}
	if err := f.ctrl.SetGuide("bangs"); !errors.Is(err, ErrUnknownGuide) {
		t.Errorf("Expected ErrUnknownGuide, got %v", err)
	}
	if g := f.ctrl.Snapshot().Guide; g != GuideLipstick {
		t.Errorf("Expected guide unchanged after a bad request, got %q", g)
	}
	if err := f.ctrl.SetMode("disco"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Expected ErrUnknownMode, got %v", err)
	}

	var cycle []Mode
	for i := 0; i < 4; i++ {
		cycle = append(cycle, f.ctrl.CycleMode())
	}
	want := []Mode{ModeHair, ModeSkincare, ModeNormal, ModeMakeup}
	if fmt.Sprint(cycle) != fmt.Sprint(want) {
		t.Errorf("Expected cycle %v, got %v", want, cycle)
	}

	if err := f.ctrl.SetFilter("snapchat-dog"); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}
	if f.ctrl.Snapshot().Filter != FilterSnapchatDog {
		t.Error("Expected the dog filter")
	}
	if err := f.ctrl.SetFilter("sepia"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("Expected ErrUnknownFilter, got %v", err)
	}
	if err := f.ctrl.SetFilter(""); err != nil {
		t.Fatalf("Clearing the filter failed: %v", err)
	}
	if f.ctrl.Snapshot().Filter != FilterNone {
		t.Error("Expected the filter cleared")
	}
}

func TestController_AdjustPresentation(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})

	tests := []struct {
		db, dc     int
		brightness int
		contrast   int
	}{
		{LevelStep, -LevelStep, 110, 90},
		{100, -100, MaxLevel, MinLevel},
		{-300, 300, MinLevel, MaxLevel},
	}
	for _, tt := range tests {
		p := f.ctrl.AdjustPresentation(tt.db, tt.dc)
		if p.Brightness != tt.brightness || p.Contrast != tt.contrast {
			t.Errorf("Adjust(%d,%d): expected %d/%d, got %d/%d",
				tt.db, tt.dc, tt.brightness, tt.contrast, p.Brightness, p.Contrast)
		}
	}
	if got := f.ctrl.Snapshot().Presentation.CSSFilter(); got != "brightness(0.50) contrast(1.50)" {
		t.Errorf("Unexpected CSS filter %q", got)
	}
}

func TestController_RestoresAndSavesPreferences(t *testing.T) {
	store := &memoryStore{loaded: Preferences{
		Mode:         ModeHair,
		Guide:        GuideUpdo,
		Tracking:     false,
		Presentation: Presentation{Brightness: 120},
	}}
	f := newFixture(t, &camera.MockCapturer{}, WithStore(store))
	f.init(t)

	s := f.ctrl.Snapshot()
	if s.Mode != ModeHair || s.Guide != GuideUpdo {
		t.Errorf("Expected hair/updo restored, got %s/%s", s.Mode, s.Guide)
	}
	if s.TrackingEnabled {
		t.Error("Expected tracking restored as disabled")
	}
	if f.sched.Active() != 0 {
		t.Errorf("Expected no task with tracking disabled, got %d", f.sched.Active())
	}
	if s.Presentation != (Presentation{Brightness: 120, Contrast: 100}) {
		t.Errorf("Expected normalized presentation, got %+v", s.Presentation)
	}

	if err := f.ctrl.SetFilter("tiktok-beauty"); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}
	saved, ok := store.last()
	if !ok {
		t.Fatal("Expected preferences to be saved")
	}
	if saved.Filter != FilterTikTokBeauty || saved.Mode != ModeHair {
		t.Errorf("Unexpected saved preferences %+v", saved)
	}
}

func TestController_BadPreferencesFallBack(t *testing.T) {
	store := &memoryStore{loaded: Preferences{Mode: "disco", Filter: "sepia", Guide: "mohawk", Tracking: true}}
	f := newFixture(t, &camera.MockCapturer{}, WithStore(store))
	f.init(t)

	s := f.ctrl.Snapshot()
	if s.Mode != ModeNormal || s.Filter != FilterNone || s.Guide != "" {
		t.Errorf("Expected defaults, got mode=%q filter=%q guide=%q", s.Mode, s.Filter, s.Guide)
	}
}

func TestController_SnapshotIsACopy(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})
	f.init(t)

	s := f.ctrl.Snapshot()
	s.Faces[0].X = 999
	s.Faces[0].Landmarks.Nose.X = -1

	again := f.ctrl.Snapshot()
	if again.Faces[0].X == 999 || again.Faces[0].Landmarks.Nose.X == -1 {
		t.Error("Mutating a snapshot leaked into the controller")
	}
}

func TestController_Reprobe(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})
	f.init(t)

	if f.ctrl.Display().Kind != display.KindMirror {
		t.Fatalf("Expected mirror, got %s", f.ctrl.Display().Kind)
	}

	f.host.Touch = true
	if f.ctrl.Display().Kind != display.KindMirror {
		t.Error("Expected the profile to stay cached until reprobe")
	}
	if p := f.ctrl.Reprobe(); p.Kind != display.KindTouchscreen {
		t.Errorf("Expected touchscreen after reprobe, got %s", p.Kind)
	}
	if f.ctrl.Display().Kind != display.KindTouchscreen {
		t.Error("Expected the new profile to be stored")
	}
}

func TestController_SubscribeAndCancel(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})
	rec := &statusLog{}
	cancel := f.ctrl.Subscribe(rec.record)
	f.init(t)

	rec.mu.Lock()
	n := len(rec.seqs)
	for i := 1; i < n; i++ {
		if rec.seqs[i] <= rec.seqs[i-1] {
			t.Errorf("Expected increasing sequence numbers, got %v", rec.seqs)
			break
		}
	}
	rec.mu.Unlock()
	if n == 0 {
		t.Fatal("Expected published snapshots")
	}

	cancel()
	f.sched.Tick()
	_ = f.ctrl.SetMode("hair")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.seqs) != n {
		t.Errorf("Expected no deliveries after cancel, got %d more", len(rec.seqs)-n)
	}
}

func TestController_SetTuning(t *testing.T) {
	f := newFixture(t, &camera.MockCapturer{})
	f.init(t)

	got := f.ctrl.SetTuning(tracking.TuningParams{InteractiveHz: 5})
	if got.InteractiveHz != 5 {
		t.Errorf("Expected 5 Hz, got %v", got.InteractiveHz)
	}
	if iv := intervals(f.sched); iv != fmt.Sprint([]time.Duration{200 * time.Millisecond}) {
		t.Errorf("Expected the loop re-armed at 200ms, got %s", iv)
	}
	if f.sched.Active() != 1 {
		t.Errorf("Expected one task, got %d", f.sched.Active())
	}
}

func TestController_Close(t *testing.T) {
	m := &camera.MockCapturer{}
	f := newFixture(t, m)
	f.init(t)

	if err := f.ctrl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if m.LiveStreams() != 0 {
		t.Errorf("Expected tracks released, got %d", m.LiveStreams())
	}
	if f.sched.Active() != 0 {
		t.Errorf("Expected no tasks, got %d", f.sched.Active())
	}
	if err := f.ctrl.StartCamera(context.Background()); !errors.Is(err, camera.ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
	if f.sched.Active() != 0 {
		t.Errorf("Expected the loop to stay stopped after close, got %d", f.sched.Active())
	}
	if err := f.ctrl.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}
