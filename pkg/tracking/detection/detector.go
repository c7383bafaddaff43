// Package detection defines the face samples published by the tracking loop
// and the sources that produce them.
package detection

import "context"

// Reference frame all face coordinates are expressed in.
const (
	FrameWidth  = 640.0
	FrameHeight = 480.0
)

// Point is a position in the reference frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks are the five facial reference points.
type Landmarks struct {
	LeftEye  Point `json:"left_eye"`
	RightEye Point `json:"right_eye"`
	Nose     Point `json:"nose"`
	Mouth    Point `json:"mouth"`
}

// Face is one detected or synthesized face at a point in time.
// X/Y is the top-left corner of the box in reference-frame pixels.
type Face struct {
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Confidence float64    `json:"confidence"`
	Landmarks  *Landmarks `json:"landmarks,omitempty"`
}

// Center returns the center point of the face box
func (f Face) Center() (x, y float64) {
	return f.X + f.Width/2, f.Y + f.Height/2
}

// Area returns the area of the bounding box
func (f Face) Area() float64 {
	return f.Width * f.Height
}

// Valid reports whether the face satisfies the sample invariants.
func (f Face) Valid() bool {
	return f.Width > 0 && f.Height > 0 && f.Confidence >= 0 && f.Confidence <= 1
}

// Contains reports whether p lies inside the box grown by margin pixels on every side.
func (f Face) Contains(p Point, margin float64) bool {
	return p.X >= f.X-margin && p.X <= f.X+f.Width+margin &&
		p.Y >= f.Y-margin && p.Y <= f.Y+f.Height+margin
}

// Clone returns a deep copy so published samples stay immutable.
func (f Face) Clone() Face {
	if f.Landmarks != nil {
		lm := *f.Landmarks
		f.Landmarks = &lm
	}
	return f
}

// Detector is the interface for face sources.
// An empty result is a miss, not an error.
type Detector interface {
	// Detect returns the faces visible right now
	Detect(ctx context.Context) ([]Face, error)

	// Close releases resources
	Close() error
}

// SelectBest picks the primary face from multiple detections.
// Priority: confidence * 0.7 + area * 0.3
func SelectBest(faces []Face) *Face {
	if len(faces) == 0 {
		return nil
	}

	if len(faces) == 1 {
		return &faces[0]
	}

	// Find max area for normalization
	maxArea := 0.0
	for _, f := range faces {
		if f.Area() > maxArea {
			maxArea = f.Area()
		}
	}
	if maxArea == 0 {
		maxArea = 1
	}

	bestScore := -1.0
	var best *Face

	for i := range faces {
		score := faces[i].Confidence*0.7 + (faces[i].Area()/maxArea)*0.3
		if score > bestScore {
			bestScore = score
			best = &faces[i]
		}
	}

	return best
}
