// Package mirror coordinates the camera session, the face tracking loop and
// the display probe into the single snapshot every overlay renders from.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/camera"
	"github.com/teslashibe/go-mirror/pkg/display"
	"github.com/teslashibe/go-mirror/pkg/tracking"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
)

// Controller owns the authoritative Snapshot.
//
// Lock order: armMu, then mu. mu is never held while calling into the camera
// session, the tracking loop or a subscriber.
type Controller struct {
	session  *camera.Session
	loop     *tracking.Loop
	host     display.Host
	store    PreferenceStore
	observer Observer
	logger   *slog.Logger
	now      func() time.Time

	// armMu serializes decisions to start or stop the loop.
	armMu sync.Mutex

	mu          sync.Mutex
	cfg         tracking.Config
	snap        Snapshot
	initialized bool
	closed      bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
	lastSeq uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = log.Or(l, "mirror")
	}
}

// WithTrackingConfig overrides the tracking intervals and initial flag.
func WithTrackingConfig(cfg tracking.Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithStore restores and persists user preferences through s.
func WithStore(s PreferenceStore) Option {
	return func(c *Controller) {
		c.store = s
	}
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithClock sets the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates a controller. Nothing is probed until Initialize.
func New(session *camera.Session, loop *tracking.Loop, host display.Host, opts ...Option) *Controller {
	c := &Controller{
		session: session,
		loop:    loop,
		host:    host,
		cfg:     tracking.DefaultConfig(),
		now:     time.Now,
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Component("mirror")
	}

	c.snap = Snapshot{
		SessionID:       uuid.NewString(),
		Status:          camera.StatusChecking,
		TrackingEnabled: c.cfg.Enabled,
		Mode:            ModeNormal,
		Presentation:    DefaultPresentation(),
	}

	session.OnChange(c.applyCamera)
	return c
}

// Initialize probes the display, seeds the idle face, probes the camera and
// starts tracking. Camera failures are absorbed into the snapshot.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	c.mu.Unlock()

	profile := display.Probe(c.host)
	prefs, restored := c.loadPreferences()

	c.mutate(func(s *Snapshot) {
		s.Display = profile
		s.Faces = []detection.Face{detection.Idle()}
		if restored {
			s.Mode = prefs.Mode
			s.Filter = prefs.Filter
			s.Guide = prefs.Guide
			s.TrackingEnabled = prefs.Tracking
			s.Presentation = prefs.Presentation
		}
	})
	c.logger.Info("display probed", "kind", profile.Kind, "width", profile.Width, "height", profile.Height)

	err := c.session.ProbeAvailability(ctx)
	c.rearm()
	return c.absorb("initialize", err)
}

// ToggleTracking switches face tracking. Disabling clears faces before it
// returns; the camera stream is left alone.
func (c *Controller) ToggleTracking(enabled bool) {
	c.armMu.Lock()
	c.mutate(func(s *Snapshot) {
		s.TrackingEnabled = enabled
		if !enabled {
			s.Faces = nil
		} else if len(s.Faces) == 0 {
			s.Faces = []detection.Face{detection.Idle()}
		}
	})
	if enabled {
		c.rearmLocked()
	} else {
		c.loop.Stop()
	}
	c.armMu.Unlock()

	if c.observer != nil {
		c.observer.TrackingChanged(enabled)
	}
	c.savePreferences()
	c.logger.Info("face tracking toggled", "enabled", enabled)
}

// RetryCamera stops the stream, waits the reset delay and acquires again.
func (c *Controller) RetryCamera(ctx context.Context) error {
	err := c.session.Reset(ctx)
	c.rearm()
	return c.absorb("retry", err)
}

// RequestPermission re-runs the probe after the user granted access.
func (c *Controller) RequestPermission(ctx context.Context) error {
	err := c.session.ProbeAvailability(ctx)
	c.rearm()
	return c.absorb("permission", err)
}

// StartCamera requests a stream if none is live.
func (c *Controller) StartCamera(ctx context.Context) error {
	err := c.session.RequestStream(ctx)
	c.rearm()
	return c.absorb("start", err)
}

// StopCamera releases the stream; tracking drops to the demo rate.
func (c *Controller) StopCamera() {
	c.session.Stop()
	c.rearm()
}

// AdjustPresentation shifts brightness and contrast, clamped to [50,150].
func (c *Controller) AdjustPresentation(brightnessDelta, contrastDelta int) Presentation {
	var p Presentation
	c.mutate(func(s *Snapshot) {
		s.Presentation = s.Presentation.Adjust(brightnessDelta, contrastDelta)
		p = s.Presentation
	})
	c.savePreferences()
	return p
}

// SetMode switches the overlay family and selects its default guide.
func (c *Controller) SetMode(mode string) error {
	m, err := ParseMode(mode)
	if err != nil {
		return err
	}
	c.setMode(m)
	return nil
}

// CycleMode advances normal → makeup → hair → skincare → normal.
func (c *Controller) CycleMode() Mode {
	c.mu.Lock()
	next := c.snap.Mode.Next()
	c.mu.Unlock()

	c.setMode(next)
	return next
}

func (c *Controller) setMode(m Mode) {
	c.mutate(func(s *Snapshot) {
		s.Mode = m
		s.Guide = DefaultGuide(m)
	})
	c.savePreferences()
}

// SetFilter selects a social filter; the empty string clears it.
func (c *Controller) SetFilter(filter string) error {
	f, err := ParseFilter(filter)
	if err != nil {
		return err
	}
	c.mutate(func(s *Snapshot) {
		s.Filter = f
	})
	c.savePreferences()
	return nil
}

// SetGuide selects a sub-style of the current mode.
func (c *Controller) SetGuide(guide string) error {
	var err error
	c.mutate(func(s *Snapshot) {
		var g Guide
		if g, err = ParseGuide(s.Mode, guide); err == nil {
			s.Guide = g
		}
	})
	if err != nil {
		return err
	}
	c.savePreferences()
	return nil
}

// SetTuning changes the tick rates and re-arms the loop at the new rate.
func (c *Controller) SetTuning(params tracking.TuningParams) tracking.TuningParams {
	c.mu.Lock()
	c.cfg.ApplyTuning(params)
	tuning := c.cfg.Tuning()
	c.mu.Unlock()

	c.rearm()
	return tuning
}

// Tuning returns the current tick rates.
func (c *Controller) Tuning() tracking.TuningParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Tuning()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Clone()
}

// Display returns the profile computed at Initialize or the last Reprobe.
func (c *Controller) Display() display.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Display
}

// Reprobe recomputes the display profile.
func (c *Controller) Reprobe() display.Profile {
	profile := display.Probe(c.host)
	c.mutate(func(s *Snapshot) {
		s.Display = profile
	})
	c.logger.Info("display re-probed", "kind", profile.Kind)
	return profile
}

// Subscribe calls fn with every published snapshot until cancel is called.
// fn runs on the publishing goroutine; it must not block or call back into
// the controller.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// CaptureJPEG returns a preview frame from the live stream.
func (c *Controller) CaptureJPEG() ([]byte, error) {
	return c.session.CaptureJPEG()
}

// Close stops the loop and releases the camera.
func (c *Controller) Close() error {
	c.armMu.Lock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.armMu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	c.loop.Stop()
	c.armMu.Unlock()

	err := c.session.Close()

	c.subMu.Lock()
	clear(c.subs)
	c.subMu.Unlock()
	return err
}

// OnSample is the tracking loop callback. Samples arriving after tracking was
// disabled are dropped. A miss keeps the last face on screen.
func (c *Controller) OnSample(faces []detection.Face) {
	if len(faces) == 0 {
		return
	}
	c.mu.Lock()
	if c.closed || !c.snap.TrackingEnabled {
		c.mu.Unlock()
		return
	}
	c.snap.Faces = cloneFaces(faces)
	snap := c.stampLocked()
	c.mu.Unlock()

	c.publish(snap)
}

// applyCamera mirrors a session transition into the snapshot.
func (c *Controller) applyCamera(st camera.State) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.snap
	c.snap.Status = st.Status
	c.snap.Streaming = st.Streaming
	c.snap.Error = st.Error
	c.snap.Tier = st.Tier

	failed := st.Status == camera.StatusUnavailable || st.Status == camera.StatusDenied
	if failed && len(c.snap.Faces) == 0 {
		c.snap.Faces = []detection.Face{detection.Idle()}
	}
	snap := c.stampLocked()
	c.mu.Unlock()

	if c.observer != nil {
		if prev.Status != st.Status {
			c.observer.StatusChanged(st.Status)
		}
		if prev.Streaming != st.Streaming {
			c.observer.StreamingChanged(st.Streaming)
		}
	}
	if prev.Status != st.Status {
		c.logger.Info("camera status changed", "from", prev.Status, "to", st.Status, "error", st.Error)
	}
	c.publish(snap)
}

// rearm starts the loop at the interval matching the stream state, or stops
// it when tracking is off. A loop already at the right interval is untouched.
func (c *Controller) rearm() {
	c.armMu.Lock()
	defer c.armMu.Unlock()
	c.rearmLocked()
}

func (c *Controller) rearmLocked() {
	c.mu.Lock()
	closed := c.closed
	enabled := c.snap.TrackingEnabled
	interval := c.cfg.IntervalFor(c.snap.Streaming)
	c.mu.Unlock()

	switch {
	case closed:
		return
	case !enabled:
		c.loop.Stop()
	case c.loop.Running() && c.loop.Interval() == interval:
	default:
		c.loop.Start(interval, c.OnSample)
	}
}

// mutate applies fn to the snapshot and publishes the result.
func (c *Controller) mutate(fn func(*Snapshot)) {
	c.mu.Lock()
	fn(&c.snap)
	snap := c.stampLocked()
	c.mu.Unlock()

	c.publish(snap)
}

// stampLocked bumps the sequence number and returns a copy. Caller holds mu.
func (c *Controller) stampLocked() Snapshot {
	c.snap.Seq++
	c.snap.At = c.now()
	return c.snap.Clone()
}

// publish delivers snap to subscribers, dropping it if a newer one already went out.
func (c *Controller) publish(snap Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if snap.Seq <= c.lastSeq {
		return
	}
	c.lastSeq = snap.Seq
	for _, fn := range c.subs {
		fn(snap.Clone())
	}
	if c.observer != nil {
		c.observer.SnapshotPublished()
	}
}

func (c *Controller) loadPreferences() (Preferences, bool) {
	if c.store == nil {
		return Preferences{}, false
	}
	p, err := c.store.LoadPreferences()
	if err != nil {
		c.logger.Warn("could not load preferences, using defaults", "error", err)
		return Preferences{}, false
	}

	if _, err := ParseMode(string(p.Mode)); err != nil {
		p.Mode = ModeNormal
	}
	if _, err := ParseFilter(string(p.Filter)); err != nil {
		p.Filter = FilterNone
	}
	if _, err := ParseGuide(p.Mode, string(p.Guide)); err != nil {
		p.Guide = DefaultGuide(p.Mode)
	}
	p.Presentation = p.Presentation.Normalize()
	return p, true
}

func (c *Controller) savePreferences() {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	p := Preferences{
		Mode:         c.snap.Mode,
		Filter:       c.snap.Filter,
		Guide:        c.snap.Guide,
		Tracking:     c.snap.TrackingEnabled,
		Presentation: c.snap.Presentation,
	}
	c.mu.Unlock()

	if err := c.store.SavePreferences(p); err != nil {
		c.logger.Warn("could not save preferences", "error", err)
	}
}

// absorb keeps acquisition failures in the snapshot. Only cancellation and a
// closed session are reported to the caller.
func (c *Controller) absorb(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, camera.ErrSessionClosed):
		return err
	default:
		c.logger.Debug("camera operation failed, running in demo mode", "op", op, "error", err)
		return nil
	}
}

func cloneFaces(faces []detection.Face) []detection.Face {
	if len(faces) == 0 {
		return nil
	}
	out := make([]detection.Face, len(faces))
	for i, f := range faces {
		out[i] = f.Clone()
	}
	return out
}
