package overlay

import (
	"fmt"

	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
)

// Guide palette.
const (
	colorOrange = "#fb923c"
	colorPurple = "#c084fc"
	colorBlack  = "#000000"
	colorRed    = "#f87171"
	colorAmber  = "#fbbf24"
	colorCyan   = "#22d3ee"
	colorBlue   = "#60a5fa"
	colorTeal   = "#2dd4bf"
	colorYellow = "#facc15"
	colorGreen  = "#86efac"
	colorRose   = "#fca5a5"
)

type builder func(f detection.Face, m Mapper) []Region

var guideBuilders = map[mirror.Guide]builder{
	mirror.GuideFoundation: foundation,
	mirror.GuideEyeshadow:  eyeshadow,
	mirror.GuideEyeliner:   eyeliner,
	mirror.GuideLipstick:   lipstick,
	mirror.GuideContour:    contour,

	mirror.GuideBangs:      bangs,
	mirror.GuideLayers:     layers,
	mirror.GuideUpdo:       updo,
	mirror.GuideColorZones: colorZones,
	mirror.GuideFaceFrame:  faceFrame,

	mirror.GuideTZone:       tZone,
	mirror.GuidePores:       pores,
	mirror.GuideWrinkles:    wrinkles,
	mirror.GuideDarkCircles: darkCircles,
	mirror.GuideAcneZones:   acneZones,
}

// guideModes maps each guide to the mode that owns it.
var guideModes = func() map[mirror.Guide]mirror.Mode {
	out := make(map[mirror.Guide]mirror.Mode)
	for _, mode := range mirror.Modes {
		for _, g := range mirror.Guides(mode) {
			out[g] = mode
		}
	}
	return out
}()

func region(name string, shape Shape, r Rect, color string) Region {
	return Region{Name: name, Shape: shape, Rect: r, Color: color}
}

// hline is a horizontal stroke starting at (x,y) in pixels.
func hline(name string, m Mapper, x, y, w float64, stroke int, color string) Region {
	return Region{Name: name, Shape: ShapeLine, Rect: Rect{Left: m.X(x), Top: m.Y(y), Width: m.X(w)}, Color: color, Stroke: stroke}
}

// vline is a vertical stroke starting at (x,y) in pixels.
func vline(name string, m Mapper, x, y, h float64, stroke int, color string) Region {
	return Region{Name: name, Shape: ShapeLine, Rect: Rect{Left: m.X(x), Top: m.Y(y), Height: m.Y(h)}, Color: color, Stroke: stroke}
}

// Makeup.

func foundation(f detection.Face, m Mapper) []Region {
	return []Region{
		region("coverage", ShapeOval, m.Rect(f.X-f.Width*0.15, f.Y-f.Height*0.1, f.Width*1.3, f.Height*1.2), colorOrange),
		region("forehead", ShapeOval, m.Rect(f.X+f.Width*0.2, f.Y-f.Height*0.05, f.Width*0.6, f.Height*0.3), colorOrange),
		region("left-cheek", ShapeOval, m.Rect(f.X-f.Width*0.05, f.Y+f.Height*0.3, f.Width*0.4, f.Height*0.35), colorOrange),
		region("right-cheek", ShapeOval, m.Rect(f.X+f.Width*0.65, f.Y+f.Height*0.3, f.Width*0.4, f.Height*0.35), colorOrange),
	}
}

func eyeshadow(f detection.Face, m Mapper) []Region {
	lm := f.Landmarks
	if lm == nil {
		return nil
	}
	l, r := lm.LeftEye, lm.RightEye
	return []Region{
		region("left-lid", ShapeOval, m.Rect(l.X-25, l.Y-15, 50, 30), colorPurple),
		region("right-lid", ShapeOval, m.Rect(r.X-25, r.Y-15, 50, 30), colorPurple),
		hline("left-brow", m, l.X-30, l.Y-25, 60, 2, colorAmber),
		hline("right-brow", m, r.X-30, r.Y-25, 60, 2, colorAmber),
	}
}

func eyeliner(f detection.Face, m Mapper) []Region {
	lm := f.Landmarks
	if lm == nil {
		return nil
	}
	l, r := lm.LeftEye, lm.RightEye
	return []Region{
		hline("left-liner", m, l.X-30, l.Y, 60, 3, colorBlack),
		hline("right-liner", m, r.X-30, r.Y, 60, 3, colorBlack),
		region("left-wing", ShapeDot, m.Rect(l.X+25, l.Y-5, 8, 8), colorBlack),
		region("right-wing", ShapeDot, m.Rect(r.X+25, r.Y-5, 8, 8), colorBlack),
	}
}

func lipstick(f detection.Face, m Mapper) []Region {
	lm := f.Landmarks
	if lm == nil {
		return nil
	}
	mo := lm.Mouth
	return []Region{
		region("lips", ShapeOval, m.Rect(mo.X-25, mo.Y-10, 50, 20), colorRed),
		hline("upper-lip", m, mo.X-20, mo.Y-8, 40, 2, colorRose),
		hline("lower-lip", m, mo.X-20, mo.Y+8, 40, 2, colorRose),
	}
}

func contour(f detection.Face, m Mapper) []Region {
	return []Region{
		region("left-hollow", ShapeBox, m.Rect(f.X-f.Width*0.05, f.Y+f.Height*0.15, f.Width*0.2, f.Height*0.6), colorAmber),
		region("right-hollow", ShapeBox, m.Rect(f.X+f.Width*0.75, f.Y+f.Height*0.15, f.Width*0.2, f.Height*0.6), colorAmber),
		hline("jawline", m, f.X+f.Width*0.1, f.Y+f.Height*0.85, f.Width*0.8, 2, colorAmber),
	}
}

// Hair.

func bangs(f detection.Face, m Mapper) []Region {
	return []Region{
		region("bangs", ShapeBox, m.Rect(f.X+f.Width*0.15, f.Y-f.Height*0.2, f.Width*0.7, f.Height*0.4), colorYellow),
		region("left-side-bang", ShapeBox, m.Rect(f.X+f.Width*0.05, f.Y-f.Height*0.15, f.Width*0.3, f.Height*0.35), colorYellow),
		region("right-side-bang", ShapeBox, m.Rect(f.X+f.Width*0.65, f.Y-f.Height*0.15, f.Width*0.3, f.Height*0.35), colorYellow),
	}
}

func layers(f detection.Face, m Mapper) []Region {
	var out []Region
	for i, k := range []float64{0.6, 0.8, 1.0, 1.2} {
		r := region(fmt.Sprintf("layer-%d", i+1), ShapeOval,
			m.Rect(f.X-f.Width*(k-0.5), f.Y-f.Height*0.1, f.Width*k*2, f.Height*(1+k*0.5)), colorCyan)
		r.Label = fmt.Sprintf("Layer %d", i+1)
		out = append(out, r)
	}
	return out
}

func updo(f detection.Face, m Mapper) []Region {
	bun := f.Width * 0.3
	return []Region{
		region("high-bun", ShapeOval, Rect{Left: m.X(f.X + f.Width*0.35), Top: m.Y(f.Y - f.Height*0.4), Width: m.X(bun), Height: m.X(bun)}, colorAmber),
		region("low-bun", ShapeOval, Rect{Left: m.X(f.X + f.Width*0.35), Top: m.Y(f.Y + f.Height*1.1), Width: m.X(bun), Height: m.X(bun)}, colorAmber),
		vline("left-part", m, f.X+f.Width*0.3, f.Y-f.Height*0.2, f.Height*0.4, 2, colorBlue),
		vline("right-part", m, f.X+f.Width*0.7, f.Y-f.Height*0.2, f.Height*0.4, 2, colorBlue),
	}
}

func colorZones(f detection.Face, m Mapper) []Region {
	return []Region{
		region("highlight", ShapeBox, m.Rect(f.X+f.Width*0.1, f.Y-f.Height*0.25, f.Width*0.8, f.Height*0.3), colorYellow),
		region("left-lowlight", ShapeBox, m.Rect(f.X-f.Width*0.1, f.Y+f.Height*0.2, f.Width*0.4, f.Height*0.8), colorAmber),
		region("right-lowlight", ShapeBox, m.Rect(f.X+f.Width*0.7, f.Y+f.Height*0.2, f.Width*0.4, f.Height*0.8), colorAmber),
	}
}

func faceFrame(f detection.Face, m Mapper) []Region {
	out := []Region{
		region("left-frame", ShapeBox, m.Rect(f.X-f.Width*0.05, f.Y+f.Height*0.1, f.Width*0.25, f.Height*0.7), colorTeal),
		region("right-frame", ShapeBox, m.Rect(f.X+f.Width*0.8, f.Y+f.Height*0.1, f.Width*0.25, f.Height*0.7), colorTeal),
	}
	if lm := f.Landmarks; lm != nil {
		out = append(out,
			region("left-cheekbone", ShapeBox, m.Rect(lm.LeftEye.X-30, lm.LeftEye.Y+20, 40, 60), colorTeal),
			region("right-cheekbone", ShapeBox, m.Rect(lm.RightEye.X-10, lm.RightEye.Y+20, 40, 60), colorTeal),
		)
	}
	return out
}

// Skincare.

func tZone(f detection.Face, m Mapper) []Region {
	out := []Region{
		region("forehead", ShapeBox, m.Rect(f.X+f.Width*0.25, f.Y-f.Height*0.05, f.Width*0.5, f.Height*0.35), colorOrange),
	}
	if lm := f.Landmarks; lm != nil {
		out = append(out, region("nose", ShapeBox, m.Rect(lm.Nose.X-20, lm.Nose.Y-30, 40, 80), colorOrange))
	}
	return append(out,
		region("chin", ShapeBox, m.Rect(f.X+f.Width*0.35, f.Y+f.Height*0.75, f.Width*0.3, f.Height*0.2), colorGreen),
	)
}

func pores(f detection.Face, m Mapper) []Region {
	var out []Region
	if lm := f.Landmarks; lm != nil {
		out = append(out, region("nose", ShapeOval, m.Rect(lm.Nose.X-15, lm.Nose.Y-10, 30, 30), colorRed))
	}
	return append(out,
		region("left-cheek", ShapeOval, m.Rect(f.X+f.Width*0.1, f.Y+f.Height*0.45, f.Width*0.25, f.Height*0.25), colorOrange),
		region("right-cheek", ShapeOval, m.Rect(f.X+f.Width*0.65, f.Y+f.Height*0.45, f.Width*0.25, f.Height*0.25), colorOrange),
		region("forehead", ShapeBox, m.Rect(f.X+f.Width*0.3, f.Y+f.Height*0.05, f.Width*0.4, f.Height*0.25), colorOrange),
	)
}

func wrinkles(f detection.Face, m Mapper) []Region {
	var out []Region
	for i, pos := range []float64{0.15, 0.25, 0.35} {
		out = append(out, hline(fmt.Sprintf("forehead-%d", i+1), m, f.X+f.Width*0.2, f.Y+f.Height*pos, f.Width*0.6, 2, colorRose))
	}
	lm := f.Landmarks
	if lm == nil {
		return out
	}
	return append(out,
		region("left-crows-feet", ShapeOval, m.Rect(lm.LeftEye.X+25, lm.LeftEye.Y-10, 20, 20), colorRed),
		region("right-crows-feet", ShapeOval, m.Rect(lm.RightEye.X-45, lm.RightEye.Y-10, 20, 20), colorRed),
		region("left-fold", ShapeBox, m.Rect(lm.Nose.X-25, lm.Nose.Y+20, 20, 40), colorRose),
		region("right-fold", ShapeBox, m.Rect(lm.Nose.X+5, lm.Nose.Y+20, 20, 40), colorRose),
	)
}

func darkCircles(f detection.Face, m Mapper) []Region {
	lm := f.Landmarks
	if lm == nil {
		return nil
	}
	l, r := lm.LeftEye, lm.RightEye
	return []Region{
		region("left-under-eye", ShapeOval, m.Rect(l.X-30, l.Y+5, 60, 25), colorPurple),
		region("right-under-eye", ShapeOval, m.Rect(r.X-30, r.Y+5, 60, 25), colorPurple),
		region("left-puffiness", ShapeOval, m.Rect(l.X-25, l.Y-5, 50, 15), colorPurple),
		region("right-puffiness", ShapeOval, m.Rect(r.X-25, r.Y-5, 50, 15), colorPurple),
	}
}

func acneZones(f detection.Face, m Mapper) []Region {
	out := []Region{
		region("forehead", ShapeBox, m.Rect(f.X+f.Width*0.3, f.Y+f.Height*0.05, f.Width*0.4, f.Height*0.25), colorRed),
	}
	if lm := f.Landmarks; lm != nil {
		out = append(out, region("nose", ShapeBox, m.Rect(lm.Nose.X-20, lm.Nose.Y-20, 40, 60), colorRed))
	}
	return append(out,
		region("chin", ShapeBox, m.Rect(f.X+f.Width*0.4, f.Y+f.Height*0.8, f.Width*0.2, f.Height*0.15), colorRed),
		region("jawline", ShapeBox, m.Rect(f.X+f.Width*0.05, f.Y+f.Height*0.65, f.Width*0.9, f.Height*0.2), colorRed),
	)
}
