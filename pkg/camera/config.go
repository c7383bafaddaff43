// Package camera owns the live capture stream behind the mirror: probing for
// hardware, negotiating constraints, and exposing stream health.
package camera

import (
	"fmt"
	"time"
)

// Facing selects which way the camera points.
type Facing string

const (
	FacingAny  Facing = ""
	FacingUser Facing = "user" // front-facing, towards the person at the mirror
)

// Constraints describe one acquisition attempt. Zero Width/Height means "any size".
type Constraints struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Facing Facing `json:"facing,omitempty"`
}

// HasResolution reports whether a specific frame size is requested.
func (c Constraints) HasResolution() bool {
	return c.Width > 0 && c.Height > 0
}

func (c Constraints) String() string {
	facing := "any camera"
	if c.Facing == FacingUser {
		facing = "front-facing"
	}
	if c.HasResolution() {
		return fmt.Sprintf("%dx%d %s", c.Width, c.Height, facing)
	}
	return facing
}

// Backend selects the capture implementation.
type Backend string

const (
	BackendAuto Backend = "auto" // gocv when a V4L2 node exists
	BackendGocv Backend = "gocv"
	BackendNone Backend = "none" // capture unsupported; demo mode only
)

// Config holds capture configuration.
type Config struct {
	// Backend selects the capture implementation.
	Backend Backend `yaml:"backend" json:"backend"`

	// Device is the preferred front-facing device (e.g. "/dev/video0").
	// Empty picks the first enumerated device.
	Device string `yaml:"device" json:"device"`

	// DevicePattern globs for video inputs when enumerating.
	DevicePattern string `yaml:"device_pattern" json:"device_pattern"`

	// ResetDelay is the pause between stop and re-acquire on retry.
	ResetDelay time.Duration `yaml:"reset_delay" json:"reset_delay"`

	// PreviewFPS caps the rate of preview frames pushed to the dashboard.
	PreviewFPS int `yaml:"preview_fps" json:"preview_fps"`

	// Quality is the JPEG quality of preview frames (1-100).
	Quality int `yaml:"quality" json:"quality"`
}

// DefaultResetDelay debounces repeated retry presses.
const DefaultResetDelay = 500 * time.Millisecond

// DefaultConfig returns the recommended capture configuration.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendAuto,
		DevicePattern: "/dev/video*",
		ResetDelay:    DefaultResetDelay,
		PreviewFPS:    15,
		Quality:       80,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	switch c.Backend {
	case BackendAuto, BackendGocv, BackendNone:
	default:
		errors = append(errors, "backend must be auto, gocv, or none")
	}
	if c.ResetDelay < 0 || c.ResetDelay > 10*time.Second {
		errors = append(errors, "reset_delay must be between 0 and 10s")
	}
	if c.PreviewFPS < 0 || c.PreviewFPS > 60 {
		errors = append(errors, "preview_fps must be between 0 and 60")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}
