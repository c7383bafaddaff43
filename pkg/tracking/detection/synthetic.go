package detection

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Synthetic generation bounds. Faces stay inside the middle third of the frame
// horizontally and the 40%..80% band vertically.
const (
	ColumnMinX = FrameWidth / 3
	ColumnMaxX = FrameWidth * 2 / 3
	BandMinY   = FrameHeight * 0.4
	BandMaxY   = FrameHeight * 0.8

	MinFaceWidth  = 100.0
	MaxFaceWidth  = 140.0
	MinFaceHeight = 140.0
	MaxFaceHeight = 180.0
	MinConfidence = 0.85

	// DefaultMissRate is the fraction of samples that report no face.
	DefaultMissRate = 0.2

	// Landmark jitter amplitude (full range, centred on the anchor).
	jitterX = 5.0
	jitterY = 3.0

	// LandmarkMargin is how far outside the box a landmark may sit.
	LandmarkMargin = 10.0
)

// Idle returns the fixed face shown before the first tick.
func Idle() Face {
	return Face{
		X:          260,
		Y:          220,
		Width:      120,
		Height:     160,
		Confidence: 0.95,
		Landmarks: &Landmarks{
			LeftEye:  Point{X: 296, Y: 276},
			RightEye: Point{X: 344, Y: 276},
			Nose:     Point{X: 320, Y: 300},
			Mouth:    Point{X: 320, Y: 340},
		},
	}
}

// Synthetic produces plausible face samples without looking at any pixels.
// It is safe for concurrent use.
type Synthetic struct {
	mu       sync.Mutex
	rng      *rand.Rand
	missRate float64
}

// SyntheticOption configures a Synthetic generator.
type SyntheticOption func(*Synthetic)

// WithRand sets the random source. Use a seeded source for deterministic tests.
func WithRand(r *rand.Rand) SyntheticOption {
	return func(s *Synthetic) {
		s.rng = r
	}
}

// WithMissRate sets the probability of a miss. Values are clamped to [0,1].
func WithMissRate(rate float64) SyntheticOption {
	return func(s *Synthetic) {
		s.missRate = min(max(rate, 0), 1)
	}
}

// NewSynthetic creates a generator with a 20% miss rate.
func NewSynthetic(opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{missRate: DefaultMissRate}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return s
}

// Sample returns a synthetic face, or false on a simulated miss.
func (s *Synthetic) Sample() (Face, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() < s.missRate {
		return Face{}, false
	}

	w := MinFaceWidth + s.rng.Float64()*(MaxFaceWidth-MinFaceWidth)
	h := MinFaceHeight + s.rng.Float64()*(MaxFaceHeight-MinFaceHeight)
	x := ColumnMinX + s.rng.Float64()*(ColumnMaxX-ColumnMinX-w)
	y := BandMinY + s.rng.Float64()*(BandMaxY-BandMinY-h)

	f := Face{
		X:          x,
		Y:          y,
		Width:      w,
		Height:     h,
		Confidence: MinConfidence + s.rng.Float64()*(1-MinConfidence),
	}
	f.Landmarks = &Landmarks{
		LeftEye:  s.jitter(x+w*0.3, y+h*0.35),
		RightEye: s.jitter(x+w*0.7, y+h*0.35),
		Nose:     s.jitter(x+w*0.5, y+h*0.55),
		Mouth:    s.jitter(x+w*0.5, y+h*0.75),
	}
	return f, true
}

// jitter offsets an anchor by a small random amount. Caller holds s.mu.
func (s *Synthetic) jitter(x, y float64) Point {
	return Point{
		X: x + (s.rng.Float64()-0.5)*jitterX,
		Y: y + (s.rng.Float64()-0.5)*jitterY,
	}
}

// Detect implements Detector.
func (s *Synthetic) Detect(ctx context.Context) ([]Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, ok := s.Sample()
	if !ok {
		return nil, nil
	}
	return []Face{f}, nil
}

// Close implements Detector.
func (s *Synthetic) Close() error {
	return nil
}
