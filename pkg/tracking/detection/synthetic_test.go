package detection

import (
	"context"
	"math/rand/v2"
	"testing"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestSynthetic_SamplesStayInCenterColumn(t *testing.T) {
	gen := NewSynthetic(WithRand(seeded(42)), WithMissRate(0))

	for i := 0; i < 5000; i++ {
		f, ok := gen.Sample()
		if !ok {
			t.Fatalf("sample %d: unexpected miss with miss rate 0", i)
		}

		if f.X < ColumnMinX || f.X+f.Width > ColumnMaxX {
			t.Fatalf("sample %d: x range [%.1f, %.1f] outside column [%.1f, %.1f]",
				i, f.X, f.X+f.Width, ColumnMinX, ColumnMaxX)
		}
		if f.Y < BandMinY || f.Y+f.Height > BandMaxY {
			t.Fatalf("sample %d: y range [%.1f, %.1f] outside band [%.1f, %.1f]",
				i, f.Y, f.Y+f.Height, BandMinY, BandMaxY)
		}
		if f.Width < MinFaceWidth || f.Width > MaxFaceWidth {
			t.Fatalf("sample %d: width %.1f out of range", i, f.Width)
		}
		if f.Height < MinFaceHeight || f.Height > MaxFaceHeight {
			t.Fatalf("sample %d: height %.1f out of range", i, f.Height)
		}
		if f.Confidence < MinConfidence || f.Confidence > 1 {
			t.Fatalf("sample %d: confidence %.3f out of range", i, f.Confidence)
		}
		if !f.Valid() {
			t.Fatalf("sample %d: invalid face %+v", i, f)
		}
	}
}

func TestSynthetic_LandmarksNearBox(t *testing.T) {
	gen := NewSynthetic(WithRand(seeded(7)), WithMissRate(0))

	for i := 0; i < 1000; i++ {
		f, _ := gen.Sample()
		if f.Landmarks == nil {
			t.Fatalf("sample %d: missing landmarks", i)
		}
		lm := f.Landmarks
		for name, p := range map[string]Point{
			"left_eye":  lm.LeftEye,
			"right_eye": lm.RightEye,
			"nose":      lm.Nose,
			"mouth":     lm.Mouth,
		} {
			if !f.Contains(p, LandmarkMargin) {
				t.Fatalf("sample %d: %s %+v outside box %+v", i, name, p, f)
			}
		}
		if lm.LeftEye.X >= lm.RightEye.X {
			t.Fatalf("sample %d: left eye %.1f not left of right eye %.1f", i, lm.LeftEye.X, lm.RightEye.X)
		}
		if !(lm.LeftEye.Y < lm.Nose.Y && lm.Nose.Y < lm.Mouth.Y) {
			t.Fatalf("sample %d: landmarks out of vertical order: %+v", i, lm)
		}
	}
}

func TestSynthetic_MissRate(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		min, max int
	}{
		{"never", 0, 0, 0},
		{"always", 1, 2000, 2000},
		{"default", DefaultMissRate, 300, 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := NewSynthetic(WithRand(seeded(99)), WithMissRate(tc.rate))
			misses := 0
			for i := 0; i < 2000; i++ {
				if _, ok := gen.Sample(); !ok {
					misses++
				}
			}
			if misses < tc.min || misses > tc.max {
				t.Errorf("misses = %d, want within [%d, %d]", misses, tc.min, tc.max)
			}
		})
	}
}

func TestSynthetic_DetectReturnsAtMostOneFace(t *testing.T) {
	gen := NewSynthetic(WithRand(seeded(3)))
	ctx := context.Background()

	sawEmpty, sawFace := false, false
	for i := 0; i < 200; i++ {
		faces, err := gen.Detect(ctx)
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		switch len(faces) {
		case 0:
			sawEmpty = true
		case 1:
			sawFace = true
		default:
			t.Fatalf("Detect returned %d faces", len(faces))
		}
	}
	if !sawEmpty || !sawFace {
		t.Errorf("expected both misses and hits, got empty=%v face=%v", sawEmpty, sawFace)
	}
}

func TestSynthetic_DetectHonoursCancelledContext(t *testing.T) {
	gen := NewSynthetic()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gen.Detect(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestIdle(t *testing.T) {
	f := Idle()

	if f.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", f.Confidence)
	}
	if cx, cy := f.Center(); cx != 320 || cy != 300 {
		t.Errorf("Center = (%v, %v), want (320, 300)", cx, cy)
	}
	if f.Landmarks == nil {
		t.Fatal("idle face has no landmarks")
	}
	if f.Landmarks.LeftEye != (Point{X: 296, Y: 276}) || f.Landmarks.RightEye != (Point{X: 344, Y: 276}) {
		t.Errorf("eyes = %+v / %+v", f.Landmarks.LeftEye, f.Landmarks.RightEye)
	}

	// Each call returns an independent value.
	a, b := Idle(), Idle()
	a.Landmarks.Mouth.Y = 0
	if b.Landmarks.Mouth.Y != 340 {
		t.Error("Idle shares landmark storage between calls")
	}
}
