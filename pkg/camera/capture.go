package camera

import (
	"context"
	"log/slog"
	"path/filepath"
)

// Device is an enumerated video input.
type Device struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Facing Facing `json:"facing,omitempty"`
}

// Track is one active capture track of a stream.
type Track interface {
	Label() string
	Stop() error
}

// Stream is a live capture handle. Only Session starts and stops it.
type Stream interface {
	ID() string
	Tracks() []Track
	Settings() Constraints
}

// FrameSource is implemented by streams that can hand out preview frames.
type FrameSource interface {
	CaptureJPEG() ([]byte, error)
}

// Capturer is the host media-capture API.
type Capturer interface {
	// Supported reports whether capture exists at all on this host.
	Supported() bool

	// Devices enumerates video inputs.
	Devices(ctx context.Context) ([]Device, error)

	// Open acquires a stream satisfying c, or fails with one of the Err… sentinels.
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// StopTracks stops every track of s and returns the first error.
func StopTracks(s Stream) error {
	var first error
	for _, t := range s.Tracks() {
		if err := t.Stop(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewCapturer builds the capturer selected by cfg.Backend. Auto picks gocv only
// when at least one device node matches cfg.DevicePattern.
func NewCapturer(cfg Config, logger *slog.Logger) Capturer {
	switch cfg.Backend {
	case BackendNone:
		return NullCapturer{}
	case BackendGocv:
		return NewGocvCapturer(cfg, logger)
	}

	pattern := cfg.DevicePattern
	if pattern == "" {
		pattern = DefaultConfig().DevicePattern
	}
	if matches, _ := filepath.Glob(pattern); len(matches) == 0 && cfg.Device == "" {
		return NullCapturer{}
	}
	return NewGocvCapturer(cfg, logger)
}
