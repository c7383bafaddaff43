package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-mirror/internal/log"
)

// Status is the camera's externally visible condition.
type Status string

const (
	StatusChecking    Status = "checking"
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusDenied      Status = "denied"
)

// State is a snapshot of the session.
type State struct {
	Status    Status `json:"status"`
	Streaming bool   `json:"streaming"`
	Error     string `json:"error,omitempty"`
	Tier      string `json:"tier,omitempty"`
	StreamID  string `json:"stream_id,omitempty"`
}

// AttemptFunc observes each tier attempt; err is nil on success.
type AttemptFunc func(tier string, err error)

// Session owns the capture handle and its lifecycle.
//
// Acquisitions are serialized. Stop and Close bump an epoch so a handle that
// resolves after them is released instead of installed.
type Session struct {
	capturer Capturer
	cfg      Config
	logger   *slog.Logger
	attempt  AttemptFunc

	acquireMu sync.Mutex

	mu        sync.Mutex
	state     State
	stream    Stream
	epoch     uint64
	closed    bool
	listeners []func(State)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = log.Or(l, "camera")
	}
}

// WithAttemptObserver registers a per-tier observer (metrics).
func WithAttemptObserver(fn AttemptFunc) SessionOption {
	return func(s *Session) {
		s.attempt = fn
	}
}

// NewSession creates a session in the checking state. No device is touched until
// ProbeAvailability or RequestStream is called.
func NewSession(c Capturer, cfg Config, opts ...SessionOption) *Session {
	s := &Session{
		capturer: c,
		cfg:      cfg,
		state:    State{Status: StatusChecking},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Component("camera")
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnChange registers fn to be called after every transition.
// fn must not call mutating Session methods.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// update mutates state under the lock and notifies listeners outside it.
func (s *Session) update(fn func(*State)) State {
	s.mu.Lock()
	fn(&s.state)
	st := s.state
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(st)
	}
	return st
}

// Devices enumerates video inputs through the capturer.
func (s *Session) Devices(ctx context.Context) ([]Device, error) {
	if !s.capturer.Supported() {
		return nil, ErrCaptureUnsupported
	}
	return s.capturer.Devices(ctx)
}

// ProbeAvailability checks for a capture API and at least one device, then
// requests a stream. Failures are recorded in State and returned.
func (s *Session) ProbeAvailability(ctx context.Context) error {
	s.acquireMu.Lock()
	defer s.acquireMu.Unlock()

	s.mu.Lock()
	closed, live := s.closed, s.stream != nil
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}
	if live {
		return nil
	}

	s.update(func(st *State) {
		st.Status = StatusChecking
	})

	if !s.capturer.Supported() {
		s.fail(ErrCaptureUnsupported, MsgUnsupported)
		return ErrCaptureUnsupported
	}

	devices, err := s.capturer.Devices(ctx)
	if err != nil {
		status, msg := Classify(err)
		s.failWith(status, msg, err)
		return fmt.Errorf("camera: enumerate devices: %w", err)
	}
	if len(devices) == 0 {
		s.fail(ErrNoDevice, MsgNoDevices)
		return ErrNoDevice
	}

	s.logger.Debug("video inputs found", "count", len(devices))
	return s.requestLocked(ctx)
}

// RequestStream walks the constraint ladder and installs the first stream
// that opens. It is a no-op while a stream is already live.
func (s *Session) RequestStream(ctx context.Context) error {
	s.acquireMu.Lock()
	defer s.acquireMu.Unlock()
	return s.requestLocked(ctx)
}

// requestLocked runs with acquireMu held.
func (s *Session) requestLocked(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.stream != nil {
		s.mu.Unlock()
		return nil
	}
	epoch := s.epoch
	s.mu.Unlock()

	s.update(func(st *State) {
		st.Status = StatusChecking
	})

	ladderErr := &LadderError{}
	for _, tier := range Ladder() {
		if err := ctx.Err(); err != nil {
			ladderErr.Attempts = append(ladderErr.Attempts, &TierError{Tier: tier.Name, Err: err})
			break
		}

		stream, err := s.capturer.Open(ctx, tier.Constraints)
		if s.attempt != nil {
			s.attempt(tier.Name, err)
		}
		if err == nil {
			return s.install(epoch, tier, stream)
		}

		s.logger.Debug("constraint tier failed", "tier", tier.Name, "error", err)
		ladderErr.Attempts = append(ladderErr.Attempts, &TierError{Tier: tier.Name, Err: err})
		if terminal(err) {
			break
		}
	}

	status, msg := Classify(ladderErr)
	s.failWith(status, msg, ladderErr)
	return ladderErr
}

// install records a freshly opened stream unless the session moved on
// meanwhile. A discarded stream still proves the camera works, so the status
// settles on available without a stream.
func (s *Session) install(epoch uint64, tier Tier, stream Stream) error {
	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		closed := s.closed
		s.mu.Unlock()
		if err := StopTracks(stream); err != nil {
			s.logger.Warn("releasing stale stream", "error", err)
		}
		if !closed {
			s.update(func(st *State) {
				*st = State{Status: StatusAvailable}
			})
		}
		s.logger.Info("discarded stream acquired after stop", "tier", tier.Name)
		return ErrStaleAcquisition
	}
	s.stream = stream
	s.mu.Unlock()

	s.update(func(st *State) {
		*st = State{
			Status:    StatusAvailable,
			Streaming: true,
			Tier:      tier.Name,
			StreamID:  stream.ID(),
		}
	})
	s.logger.Info("camera stream started", "tier", tier.Name, "constraints", tier.Constraints.String())
	return nil
}

func (s *Session) fail(err error, msg string) {
	status, _ := Classify(err)
	s.failWith(status, msg, err)
}

func (s *Session) failWith(status Status, msg string, err error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	s.update(func(st *State) {
		*st = State{Status: status, Error: msg}
	})
	s.logger.Warn("camera unavailable", "status", status, "error", err)
}

// Stop stops every track and clears the handle. Calling it with no active
// stream is a no-op apart from invalidating in-flight acquisitions.
func (s *Session) Stop() {
	s.mu.Lock()
	s.epoch++
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()

	if stream == nil {
		return
	}
	if err := StopTracks(stream); err != nil {
		s.logger.Warn("stopping camera tracks", "error", err)
	}
	s.update(func(st *State) {
		st.Streaming = false
		st.StreamID = ""
	})
	s.logger.Info("camera stream stopped")
}

// Reset stops the stream, waits the reset delay, then re-acquires: directly
// when the camera was available, through a full probe otherwise.
func (s *Session) Reset(ctx context.Context) error {
	prev := s.State().Status
	s.Stop()

	if err := sleep(ctx, s.cfg.ResetDelay); err != nil {
		return err
	}

	if prev == StatusAvailable {
		return s.RequestStream(ctx)
	}
	return s.ProbeAvailability(ctx)
}

// Close releases the stream for good. Later acquisitions fail with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.epoch++
	stream := s.stream
	s.stream = nil
	s.state.Streaming = false
	s.mu.Unlock()

	if stream != nil {
		return StopTracks(stream)
	}
	return nil
}

// CaptureJPEG reads one preview frame from the live stream.
func (s *Session) CaptureJPEG() ([]byte, error) {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream == nil {
		return nil, errors.New("camera: no active stream")
	}
	fs, ok := stream.(FrameSource)
	if !ok {
		return nil, errors.New("camera: stream does not provide frames")
	}
	return fs.CaptureJPEG()
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
