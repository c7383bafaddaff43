package overlay

import (
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
)

// Filter palette.
const (
	colorGlow     = "#ec4899"
	colorFur      = "#92400e"
	colorEarInner = "#f9a8d4"
	colorTongue   = "#f472b6"
	colorBlush    = "#f9a8d4"
	colorTint     = "#f87171"
	colorFacebook = "#3b82f6"
)

var filterBuilders = map[mirror.Filter]builder{
	mirror.FilterInstagramGlow: instagramGlow,
	mirror.FilterSnapchatDog:   snapchatDog,
	mirror.FilterTikTokBeauty:  tiktokBeauty,
	mirror.FilterFacebookFrame: facebookFrame,
}

func instagramGlow(f detection.Face, m Mapper) []Region {
	return []Region{
		region("glow", ShapeOval, m.Rect(f.X-20, f.Y-20, f.Width+40, f.Height+40), colorGlow),
	}
}

func snapchatDog(f detection.Face, m Mapper) []Region {
	out := []Region{
		region("left-ear", ShapeOval, m.Rect(f.X+16, f.Y-32, 32, 48), colorFur),
		region("right-ear", ShapeOval, m.Rect(f.X+f.Width-48, f.Y-32, 32, 48), colorFur),
		region("left-ear-inner", ShapeOval, m.Rect(f.X+20, f.Y-24, 20, 32), colorEarInner),
		region("right-ear-inner", ShapeOval, m.Rect(f.X+f.Width-40, f.Y-24, 20, 32), colorEarInner),
	}
	if lm := f.Landmarks; lm != nil {
		out = append(out,
			region("nose", ShapeOval, m.Rect(lm.Nose.X-12, lm.Nose.Y-8, 24, 16), colorBlack),
			region("tongue", ShapeOval, m.Rect(lm.Mouth.X-8, lm.Mouth.Y+4, 16, 32), colorTongue),
		)
	}
	return out
}

func tiktokBeauty(f detection.Face, m Mapper) []Region {
	out := []Region{
		region("smoothing", ShapeOval, m.Rect(f.X-10, f.Y-10, f.Width+20, f.Height+20), colorBlush),
	}
	if lm := f.Landmarks; lm != nil {
		out = append(out,
			region("left-blush", ShapeOval, m.Rect(lm.LeftEye.X-15, lm.LeftEye.Y+20, 32, 24), colorBlush),
			region("right-blush", ShapeOval, m.Rect(lm.RightEye.X+5, lm.RightEye.Y+20, 32, 24), colorBlush),
			region("lip-tint", ShapeOval, m.Rect(lm.Mouth.X-12, lm.Mouth.Y-2, 24, 12), colorTint),
		)
	}
	return out
}

func facebookFrame(f detection.Face, m Mapper) []Region {
	frame := region("frame", ShapeBox, m.Rect(f.X-30, f.Y-40, f.Width+60, f.Height+80), colorFacebook)
	frame.Label = "Facebook"
	return []Region{frame}
}
