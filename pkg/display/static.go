package display

// Overrides are operator-supplied capability values. Zero values mean "ask the host".
type Overrides struct {
	UserAgent   string  `yaml:"user_agent" json:"user_agent"`
	Width       int     `yaml:"width" json:"width"`
	Height      int     `yaml:"height" json:"height"`
	ColorDepth  int     `yaml:"color_depth" json:"color_depth"`
	PixelRatio  float64 `yaml:"pixel_ratio" json:"pixel_ratio"`
	Touch       *bool   `yaml:"touch" json:"touch,omitempty"`
	XR          bool    `yaml:"xr" json:"xr"`
	ImmersiveVR bool    `yaml:"immersive_vr" json:"immersive_vr"`
}

// DefaultUserAgent is reported when nothing better is known.
const DefaultUserAgent = "chromium-kiosk"

// StaticHost reports a fixed profile. It is the fallback on platforms
// without a native host and is handy for pinning a known panel.
type StaticHost struct {
	S          Screen
	X          XRSupport
	Touch      bool
	Fullscreen bool
	Agent      string
	Camera     bool
}

// NewStaticHost builds a host from overrides, defaulting to a 1080p kiosk panel.
func NewStaticHost(o Overrides) *StaticHost {
	h := &StaticHost{
		S: Screen{
			Width:      MirrorWidth,
			Height:     MirrorHeight,
			ColorDepth: defaultDepth,
			PixelRatio: defaultRatio,
		},
		Fullscreen: true,
		Agent:      DefaultUserAgent,
	}
	h.apply(o)
	return h
}

func (h *StaticHost) apply(o Overrides) {
	if o.Width > 0 && o.Height > 0 {
		h.S.Width, h.S.Height = o.Width, o.Height
	}
	if o.ColorDepth > 0 {
		h.S.ColorDepth = o.ColorDepth
	}
	if o.PixelRatio > 0 {
		h.S.PixelRatio = o.PixelRatio
	}
	if o.Touch != nil {
		h.Touch = *o.Touch
	}
	if o.UserAgent != "" {
		h.Agent = o.UserAgent
	}
	if o.XR || o.ImmersiveVR {
		h.X = XRSupport{Queryable: true, ImmersiveVR: o.ImmersiveVR}
	}
}

func (h *StaticHost) Screen() Screen          { return h.S }
func (h *StaticHost) XR() XRSupport           { return h.X }
func (h *StaticHost) HasTouch() bool          { return h.Touch }
func (h *StaticHost) FullscreenCapable() bool { return h.Fullscreen }
func (h *StaticHost) UserAgent() string       { return h.Agent }
func (h *StaticHost) HasCamera() bool         { return h.Camera }
