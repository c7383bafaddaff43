package overlay

import "github.com/teslashibe/go-mirror/pkg/tracking/detection"

// Rect is a region in percent of the rendered mirror surface.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a position in percent of the rendered mirror surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Mapper converts reference-frame pixels to surface percentages.
// Every overlay goes through it so layers line up regardless of screen size.
type Mapper struct {
	FrameWidth  float64
	FrameHeight float64
}

// NewMapper returns a mapper for the 640x480 reference frame.
func NewMapper() Mapper {
	return Mapper{FrameWidth: detection.FrameWidth, FrameHeight: detection.FrameHeight}
}

// X maps a horizontal pixel coordinate or length.
func (m Mapper) X(px float64) float64 {
	return px / m.FrameWidth * 100
}

// Y maps a vertical pixel coordinate or length.
func (m Mapper) Y(px float64) float64 {
	return px / m.FrameHeight * 100
}

// Rect maps a pixel rectangle.
func (m Mapper) Rect(x, y, w, h float64) Rect {
	return Rect{Left: m.X(x), Top: m.Y(y), Width: m.X(w), Height: m.Y(h)}
}

// Point maps a pixel point.
func (m Mapper) Point(p detection.Point) Point {
	return Point{X: m.X(p.X), Y: m.Y(p.Y)}
}
