package mirror

import (
	"time"

	"github.com/teslashibe/go-mirror/pkg/camera"
	"github.com/teslashibe/go-mirror/pkg/display"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
)

// Snapshot is the state every overlay renders from. Published snapshots are
// copies; mutating one never affects the controller.
type Snapshot struct {
	SessionID       string           `json:"session_id"`
	Seq             uint64           `json:"seq"`
	Status          camera.Status    `json:"status"`
	Streaming       bool             `json:"streaming"`
	Error           string           `json:"error,omitempty"`
	Tier            string           `json:"tier,omitempty"`
	Faces           []detection.Face `json:"faces"`
	TrackingEnabled bool             `json:"tracking_enabled"`
	Mode            Mode             `json:"mode"`
	Filter          Filter           `json:"filter,omitempty"`
	Guide           Guide            `json:"guide,omitempty"`
	Presentation    Presentation     `json:"presentation"`
	Display         display.Profile  `json:"display"`
	At              time.Time        `json:"at"`
}

// Clone deep-copies the faces slice.
func (s Snapshot) Clone() Snapshot {
	faces := make([]detection.Face, len(s.Faces))
	for i, f := range s.Faces {
		faces[i] = f.Clone()
	}
	s.Faces = faces
	return s
}

// StatusText is the short banner shown over the mirror image.
func (s Snapshot) StatusText() string {
	switch {
	case s.Streaming:
		return "Live Camera"
	case s.Status == camera.StatusChecking:
		return "Connecting..."
	case s.Status == camera.StatusDenied:
		return "Permission Denied"
	case s.Status == camera.StatusUnavailable:
		return "Demo Mode"
	default:
		return "Camera Off"
	}
}

// Demo reports whether faces come from the generator alone.
func (s Snapshot) Demo() bool {
	return !s.Streaming
}

// Preferences are the user choices that survive a restart.
type Preferences struct {
	Mode         Mode         `json:"mode"`
	Filter       Filter       `json:"filter"`
	Guide        Guide        `json:"guide"`
	Tracking     bool         `json:"tracking"`
	Presentation Presentation `json:"presentation"`
}

// PreferenceStore persists Preferences.
type PreferenceStore interface {
	LoadPreferences() (Preferences, error)
	SavePreferences(Preferences) error
}

// Observer receives controller events (metrics).
type Observer interface {
	StatusChanged(status camera.Status)
	StreamingChanged(streaming bool)
	TrackingChanged(enabled bool)
	SnapshotPublished()
}
