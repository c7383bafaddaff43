package mirror

import "fmt"

// Presentation bounds, in percent.
const (
	MinLevel     = 50
	MaxLevel     = 150
	DefaultLevel = 100
	LevelStep    = 10
)

// Presentation is the brightness and contrast applied to the mirror image.
type Presentation struct {
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
}

// DefaultPresentation returns 100% brightness and contrast.
func DefaultPresentation() Presentation {
	return Presentation{Brightness: DefaultLevel, Contrast: DefaultLevel}
}

// Adjust returns p shifted by the deltas and clamped to [MinLevel, MaxLevel].
func (p Presentation) Adjust(brightnessDelta, contrastDelta int) Presentation {
	return Presentation{
		Brightness: clampLevel(p.Brightness + brightnessDelta),
		Contrast:   clampLevel(p.Contrast + contrastDelta),
	}
}

// Normalize clamps both levels, mapping zero to the default.
func (p Presentation) Normalize() Presentation {
	if p.Brightness == 0 {
		p.Brightness = DefaultLevel
	}
	if p.Contrast == 0 {
		p.Contrast = DefaultLevel
	}
	return p.Adjust(0, 0)
}

// CSSFilter renders p as a CSS filter expression.
func (p Presentation) CSSFilter() string {
	return fmt.Sprintf("brightness(%.2f) contrast(%.2f)", float64(p.Brightness)/100, float64(p.Contrast)/100)
}

func clampLevel(v int) int {
	return min(max(v, MinLevel), MaxLevel)
}
