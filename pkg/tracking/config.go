package tracking

import (
	"fmt"
	"time"
)

// Default tick periods.
const (
	InteractiveInterval = 100 * time.Millisecond // live camera
	DemoInterval        = 200 * time.Millisecond // synthetic-only mode
)

// Config holds the tunable parameters of the face tracking loop
type Config struct {
	// Enabled is whether tracking starts switched on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// InteractiveInterval is the tick period while a camera stream is live.
	InteractiveInterval time.Duration `yaml:"interactive_interval" json:"interactive_interval"`

	// DemoInterval is the tick period when running on synthetic data only.
	DemoInterval time.Duration `yaml:"demo_interval" json:"demo_interval"`

	// MissRate is the probability that a synthetic tick reports no face.
	MissRate float64 `yaml:"miss_rate" json:"miss_rate"`
}

// DefaultConfig returns the recommended configuration
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		InteractiveInterval: InteractiveInterval,
		DemoInterval:        DemoInterval,
		MissRate:            0.2,
	}
}

// LowPowerConfig halves the tick rate for passively cooled panels
func LowPowerConfig() Config {
	cfg := DefaultConfig()
	cfg.InteractiveInterval = 200 * time.Millisecond
	cfg.DemoInterval = 400 * time.Millisecond
	return cfg
}

// SteadyConfig disables simulated misses so overlays never flicker
func SteadyConfig() Config {
	cfg := DefaultConfig()
	cfg.MissRate = 0
	return cfg
}

// IntervalFor returns the tick period for the current stream state.
func (c Config) IntervalFor(streaming bool) time.Duration {
	if streaming {
		return c.InteractiveInterval
	}
	return c.DemoInterval
}

// Validate checks that intervals and rates are usable.
func (c Config) Validate() error {
	if c.InteractiveInterval < MinInterval || c.InteractiveInterval > MaxInterval {
		return fmt.Errorf("tracking: interactive_interval must be between %v and %v, got %v",
			MinInterval, MaxInterval, c.InteractiveInterval)
	}
	if c.DemoInterval < MinInterval || c.DemoInterval > MaxInterval {
		return fmt.Errorf("tracking: demo_interval must be between %v and %v, got %v",
			MinInterval, MaxInterval, c.DemoInterval)
	}
	if c.MissRate < 0 || c.MissRate > 1 {
		return fmt.Errorf("tracking: miss_rate must be between 0 and 1, got %v", c.MissRate)
	}
	return nil
}
