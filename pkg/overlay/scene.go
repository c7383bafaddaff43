// Package overlay turns face samples into positioned overlay shapes.
//
// Rendering is a pure function of the faces and the user's selection; it
// never reads the camera. Coordinates in a Scene are percentages of the
// mirror surface.
package overlay

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
)

// Shape tells the renderer how to draw a region.
type Shape string

const (
	ShapeBox  Shape = "box"
	ShapeOval Shape = "oval"
	ShapeLine Shape = "line" // Rect.Height is zero; Stroke gives the thickness in px
	ShapeDot  Shape = "dot"
)

// Mode colours.
const (
	ColorMakeup   = "#ec4899"
	ColorHair     = "#3b82f6"
	ColorSkincare = "#22c55e"
	ColorNormal   = "#ffffff"
)

// Landmark dot colours.
const (
	colorEye   = "#22d3ee"
	colorNose  = "#facc15"
	colorMouth = "#f87171"
)

// Region is one positioned overlay shape.
type Region struct {
	Name   string `json:"name"`
	Shape  Shape  `json:"shape"`
	Rect   Rect   `json:"rect"`
	Color  string `json:"color"`
	Label  string `json:"label,omitempty"`
	Stroke int    `json:"stroke,omitempty"`
}

// Dot is a landmark marker centred on At.
type Dot struct {
	Name  string `json:"name"`
	At    Point  `json:"at"`
	Color string `json:"color"`
}

// Selection is what the user has chosen to see.
type Selection struct {
	Mode   mirror.Mode   `json:"mode"`
	Guide  mirror.Guide  `json:"guide,omitempty"`
	Filter mirror.Filter `json:"filter,omitempty"`
}

// Scene is everything drawn over the mirror image for one snapshot.
type Scene struct {
	Status      string   `json:"status"`
	ModeLabel   string   `json:"mode_label"`
	FilterLabel string   `json:"filter_label,omitempty"`
	CSSFilter   string   `json:"css_filter,omitempty"`
	Faces       []Region `json:"faces"`
	Landmarks   []Dot    `json:"landmarks"`
	Guides      []Region `json:"guides"`
	Decorations []Region `json:"decorations"`
}

// ModeColor returns the outline colour for mode.
func ModeColor(mode mirror.Mode) string {
	switch mode {
	case mirror.ModeMakeup:
		return ColorMakeup
	case mirror.ModeHair:
		return ColorHair
	case mirror.ModeSkincare:
		return ColorSkincare
	default:
		return ColorNormal
	}
}

// Render lays out the overlays for faces. Guides and filters follow the
// first face only.
func Render(faces []detection.Face, sel Selection) Scene {
	m := NewMapper()
	color := ModeColor(sel.Mode)

	scene := Scene{
		ModeLabel:   modeLabel(sel.Mode),
		FilterLabel: sel.Filter.Name(),
		Faces:       []Region{},
		Landmarks:   []Dot{},
		Guides:      []Region{},
		Decorations: []Region{},
	}

	for i, f := range faces {
		scene.Faces = append(scene.Faces,
			Region{
				Name:  fmt.Sprintf("face-%d", i),
				Shape: ShapeBox,
				Rect:  m.Rect(f.X, f.Y, f.Width, f.Height),
				Color: color,
				Label: fmt.Sprintf("%d%%", int(math.Round(f.Confidence*100))),
			},
			Region{
				Name:  fmt.Sprintf("face-%d-oval", i),
				Shape: ShapeOval,
				Rect:  m.Rect(f.X-f.Width*0.1, f.Y-f.Height*0.05, f.Width*1.2, f.Height*1.1),
				Color: color,
			},
		)
		if lm := f.Landmarks; lm != nil {
			scene.Landmarks = append(scene.Landmarks,
				Dot{Name: "left-eye", At: m.Point(lm.LeftEye), Color: colorEye},
				Dot{Name: "right-eye", At: m.Point(lm.RightEye), Color: colorEye},
				Dot{Name: "nose", At: m.Point(lm.Nose), Color: colorNose},
				Dot{Name: "mouth", At: m.Point(lm.Mouth), Color: colorMouth},
			)
		}
	}

	if len(faces) == 0 {
		return scene
	}
	face := faces[0]

	guide := sel.Guide
	if guide == "" {
		guide = mirror.DefaultGuide(sel.Mode)
	}
	if build, ok := guideBuilders[guide]; ok && guideModes[guide] == sel.Mode {
		scene.Guides = append(scene.Guides, build(face, m)...)
	}
	if build, ok := filterBuilders[sel.Filter]; ok {
		scene.Decorations = append(scene.Decorations, build(face, m)...)
	}
	return scene
}

// RenderSnapshot renders s including its status banner and presentation filter.
func RenderSnapshot(s mirror.Snapshot) Scene {
	scene := Render(s.Faces, Selection{Mode: s.Mode, Guide: s.Guide, Filter: s.Filter})
	scene.Status = s.StatusText()
	scene.CSSFilter = s.Presentation.CSSFilter()
	return scene
}

func modeLabel(mode mirror.Mode) string {
	switch mode {
	case mirror.ModeMakeup:
		return "Makeup Guide"
	case mirror.ModeHair:
		return "Hair Styling"
	case mirror.ModeSkincare:
		return "Skincare Analysis"
	default:
		return "Face Detection Active"
	}
}
