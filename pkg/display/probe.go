// Package display classifies the screen the mirror is running on.
//
// Classification only reads capability flags from a Host. Each platform has
// its own Host implementation:
//   - Linux: sysfs/procfs (DRM connectors, framebuffer depth, input devices)
//   - other: a static profile from configuration
//   - FakeHost: tests
package display

import "strings"

// Kind is the detected display environment.
type Kind string

const (
	KindMirror      Kind = "mirror"
	KindTouchscreen Kind = "touchscreen"
	KindVR          Kind = "vr"
	KindXR          Kind = "xr"
	KindOLED        Kind = "oled"
)

// Thresholds used by the classifier.
const (
	MirrorWidth  = 1920
	MirrorHeight = 1080

	DeepColorBits   = 24
	HighResPixels   = 2073600 // 1920x1080
	UltraWideWidth  = 3840
	defaultDepth    = 24
	defaultRatio    = 1.0
)

// kioskAgents identify the browser shells the mirror ships in.
var kioskAgents = []string{"chromium", "electron"}

// Screen is the geometry reported by the host.
type Screen struct {
	Width      int     `json:"width" yaml:"width"`
	Height     int     `json:"height" yaml:"height"`
	ColorDepth int     `json:"color_depth" yaml:"color_depth"`
	PixelRatio float64 `json:"pixel_ratio" yaml:"pixel_ratio"`
}

// XRSupport is the answer to an immersive-session query.
type XRSupport struct {
	Queryable   bool `json:"queryable"`    // host can answer XR queries at all
	ImmersiveVR bool `json:"immersive_vr"` // an immersive-vr session is supported
}

// Host exposes the capability signals the probe reads. Implementations must
// not block for long; the probe runs once at startup.
type Host interface {
	Screen() Screen
	XR() XRSupport
	HasTouch() bool
	FullscreenCapable() bool
	UserAgent() string
	HasCamera() bool
}

// Profile is the result of a probe. It is a value; re-probe to refresh it.
type Profile struct {
	Kind              Kind    `json:"kind"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	ColorDepth        int     `json:"color_depth"`
	PixelRatio        float64 `json:"pixel_ratio"`
	HasTouch          bool    `json:"has_touch"`
	HasXR             bool    `json:"has_xr"`
	FullscreenCapable bool    `json:"fullscreen_capable"`
	HasCamera         bool    `json:"has_camera"`
	UserAgent         string  `json:"user_agent,omitempty"`
}

// Probe reads h once and classifies the environment.
func Probe(h Host) Profile {
	s := h.Screen()
	if s.ColorDepth == 0 {
		s.ColorDepth = defaultDepth
	}
	if s.PixelRatio == 0 {
		s.PixelRatio = defaultRatio
	}
	xr := h.XR()

	p := Profile{
		Width:             s.Width,
		Height:            s.Height,
		ColorDepth:        s.ColorDepth,
		PixelRatio:        s.PixelRatio,
		HasTouch:          h.HasTouch(),
		HasXR:             xr.Queryable,
		FullscreenCapable: h.FullscreenCapable(),
		HasCamera:         h.HasCamera(),
		UserAgent:         h.UserAgent(),
	}
	p.Kind = classify(p, xr)
	return p
}

func classify(p Profile, xr XRSupport) Kind {
	switch {
	case xr.Queryable && xr.ImmersiveVR:
		return KindVR
	case xr.Queryable:
		return KindXR
	case p.Width == MirrorWidth && p.Height == MirrorHeight && !p.HasTouch && isKiosk(p.UserAgent):
		return KindMirror
	case p.HasTouch:
		return KindTouchscreen
	case p.ColorDepth >= DeepColorBits && p.Width*p.Height >= HighResPixels && p.Width >= UltraWideWidth:
		return KindOLED
	default:
		return KindMirror
	}
}

func isKiosk(ua string) bool {
	ua = strings.ToLower(ua)
	for _, k := range kioskAgents {
		if strings.Contains(ua, k) {
			return true
		}
	}
	return false
}

// Immersive reports whether overlays should use the larger headset layout.
func (p Profile) Immersive() bool {
	return p.Kind == KindVR || p.Kind == KindXR
}
