package tracking

import "time"

// Bounds for runtime tick rates.
const (
	MinInterval = 50 * time.Millisecond  // 20 Hz
	MaxInterval = 1000 * time.Millisecond // 1 Hz
)

// TuningParams holds the real-time adjustable loop parameters.
// These can be modified via the tuning API without restarting.
type TuningParams struct {
	InteractiveHz float64 `json:"interactive_hz"` // Tick rate with a live camera
	DemoHz        float64 `json:"demo_hz"`        // Tick rate in demo mode
}

// Tuning returns the current rates of c.
func (c Config) Tuning() TuningParams {
	return TuningParams{
		InteractiveHz: 1.0 / c.InteractiveInterval.Seconds(),
		DemoHz:        1.0 / c.DemoInterval.Seconds(),
	}
}

// ApplyTuning updates the intervals from params.
// Only positive values are applied; rates are clamped to [1, 20] Hz.
func (c *Config) ApplyTuning(params TuningParams) {
	if params.InteractiveHz > 0 {
		c.InteractiveInterval = hzToInterval(params.InteractiveHz)
	}
	if params.DemoHz > 0 {
		c.DemoInterval = hzToInterval(params.DemoHz)
	}
}

func hzToInterval(hz float64) time.Duration {
	d := time.Duration(float64(time.Second) / hz)
	return clamp(d, MinInterval, MaxInterval)
}

func clamp[T ~int64 | ~float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
