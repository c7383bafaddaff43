package camera

import (
	"context"
	"fmt"
	"sync"
)

// MockCapturer is a scriptable Capturer for tests.
type MockCapturer struct {
	mu sync.Mutex

	// Unsupported makes Supported report false.
	Unsupported bool

	// DeviceList is returned by Devices. Nil means one default device.
	DeviceList []Device
	DevicesErr error

	// OpenFunc decides each Open call (1-based). Nil accepts everything.
	OpenFunc func(call int, c Constraints) error

	// Gate, when set, blocks Open until it is closed or ctx is done.
	Gate chan struct{}

	calls   int
	opened  []Constraints
	streams []*MockStream
}

// RejectFirst returns an OpenFunc failing the first n calls with err.
func RejectFirst(n int, err error) func(int, Constraints) error {
	return func(call int, _ Constraints) error {
		if call <= n {
			return err
		}
		return nil
	}
}

// RejectAll returns an OpenFunc that always fails with err.
func RejectAll(err error) func(int, Constraints) error {
	return func(int, Constraints) error { return err }
}

func (m *MockCapturer) Supported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Unsupported
}

func (m *MockCapturer) Devices(ctx context.Context) ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DevicesErr != nil {
		return nil, m.DevicesErr
	}
	if m.DeviceList == nil {
		return []Device{{ID: "mock0", Label: "Mock Camera", Facing: FacingUser}}, nil
	}
	return m.DeviceList, nil
}

func (m *MockCapturer) Open(ctx context.Context, c Constraints) (Stream, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	gate := m.Gate
	fn := m.OpenFunc
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fn != nil {
		if err := fn(call, c); err != nil {
			return nil, err
		}
	}

	s := &MockStream{
		id:       fmt.Sprintf("mock-stream-%d", call),
		settings: c,
		tracks:   []*MockTrack{{label: "Mock Camera"}},
	}

	m.mu.Lock()
	m.opened = append(m.opened, c)
	m.streams = append(m.streams, s)
	m.mu.Unlock()
	return s, nil
}

// Calls returns how many times Open was invoked.
func (m *MockCapturer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Opened returns the constraints of every successful Open.
func (m *MockCapturer) Opened() []Constraints {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Constraints(nil), m.opened...)
}

// LiveStreams counts streams that still have a running track.
func (m *MockCapturer) LiveStreams() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, s := range m.streams {
		if !s.Stopped() {
			n++
		}
	}
	return n
}

// MockStream is the stream handed out by MockCapturer.
type MockStream struct {
	id       string
	settings Constraints
	tracks   []*MockTrack
}

func (s *MockStream) ID() string            { return s.id }
func (s *MockStream) Settings() Constraints { return s.settings }

func (s *MockStream) Tracks() []Track {
	out := make([]Track, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t
	}
	return out
}

// Stopped reports whether every track was stopped.
func (s *MockStream) Stopped() bool {
	for _, t := range s.tracks {
		if !t.Stopped() {
			return false
		}
	}
	return true
}

// CaptureJPEG returns a minimal JPEG marker pair.
func (s *MockStream) CaptureJPEG() ([]byte, error) {
	if s.Stopped() {
		return nil, fmt.Errorf("camera: stream %s stopped", s.id)
	}
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil
}

// MockTrack is a single mock capture track.
type MockTrack struct {
	mu      sync.Mutex
	label   string
	stopped bool
}

func (t *MockTrack) Label() string { return t.label }

func (t *MockTrack) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return nil
}

func (t *MockTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
