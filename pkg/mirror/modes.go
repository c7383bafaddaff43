package mirror

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownMode   = errors.New("mirror: unknown mode")
	ErrUnknownFilter = errors.New("mirror: unknown filter")
	ErrUnknownGuide  = errors.New("mirror: unknown guide for mode")
)

// Mode selects which overlay family is drawn over the face.
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeMakeup   Mode = "makeup"
	ModeHair     Mode = "hair"
	ModeSkincare Mode = "skincare"
)

// Modes lists the modes in cycling order.
var Modes = []Mode{ModeNormal, ModeMakeup, ModeHair, ModeSkincare}

// Filter is an optional social-media style decoration. Empty means none.
type Filter string

const (
	FilterNone          Filter = ""
	FilterInstagramGlow Filter = "instagram-glow"
	FilterSnapchatDog   Filter = "snapchat-dog"
	FilterTikTokBeauty  Filter = "tiktok-beauty"
	FilterFacebookFrame Filter = "facebook-frame"
)

// Filters lists every selectable filter.
var Filters = []Filter{FilterInstagramGlow, FilterSnapchatDog, FilterTikTokBeauty, FilterFacebookFrame}

// filterNames are the short labels shown in the header.
var filterNames = map[Filter]string{
	FilterInstagramGlow: "IG Glow",
	FilterSnapchatDog:   "Snap Dog",
	FilterTikTokBeauty:  "TT Beauty",
	FilterFacebookFrame: "FB Frame",
}

// Guide is the active sub-style within a mode.
type Guide string

const (
	GuideFoundation Guide = "foundation"
	GuideEyeshadow  Guide = "eyeshadow"
	GuideEyeliner   Guide = "eyeliner"
	GuideLipstick   Guide = "lipstick"
	GuideContour    Guide = "contour"

	GuideBangs      Guide = "bangs"
	GuideLayers     Guide = "layers"
	GuideUpdo       Guide = "updo"
	GuideColorZones Guide = "color-zones"
	GuideFaceFrame  Guide = "face-frame"

	GuideTZone       Guide = "t-zone"
	GuidePores       Guide = "pores"
	GuideWrinkles    Guide = "wrinkles"
	GuideDarkCircles Guide = "dark-circles"
	GuideAcneZones   Guide = "acne-zones"
)

var guides = map[Mode][]Guide{
	ModeMakeup:   {GuideFoundation, GuideEyeshadow, GuideEyeliner, GuideLipstick, GuideContour},
	ModeHair:     {GuideBangs, GuideLayers, GuideUpdo, GuideColorZones, GuideFaceFrame},
	ModeSkincare: {GuideTZone, GuidePores, GuideWrinkles, GuideDarkCircles, GuideAcneZones},
}

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !slices.Contains(Modes, m) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Next returns the mode after m in cycling order.
func (m Mode) Next() Mode {
	i := slices.Index(Modes, m)
	return Modes[(i+1)%len(Modes)]
}

// ParseFilter validates s. The empty string clears the filter.
func ParseFilter(s string) (Filter, error) {
	f := Filter(s)
	if f == FilterNone || slices.Contains(Filters, f) {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Name returns the display label of f.
func (f Filter) Name() string {
	return filterNames[f]
}

// Guides returns the sub-styles available in m. Normal mode has none.
func Guides(m Mode) []Guide {
	return slices.Clone(guides[m])
}

// DefaultGuide is the sub-style selected when entering m.
func DefaultGuide(m Mode) Guide {
	if g := guides[m]; len(g) > 0 {
		return g[0]
	}
	return ""
}

// ParseGuide validates s against mode m.
func ParseGuide(m Mode, s string) (Guide, error) {
	g := Guide(s)
	if !slices.Contains(guides[m], g) {
		return "", fmt.Errorf("%w %s: %q", ErrUnknownGuide, m, s)
	}
	return g, nil
}
