// Package debug provides global debug logging flags
package debug

import "github.com/teslashibe/go-mirror/internal/log"

// Enabled controls whether debug logging is active
var Enabled bool

// Tracking controls whether per-tick tracking logs are shown.
// Use --debug-tracking to enable these very verbose logs.
var Tracking bool

// Log emits a debug record only if debug mode is enabled
func Log(msg string, args ...any) {
	if Enabled {
		log.Debug(msg, args...)
	}
}

// TrackLog emits a record only if tracking debug mode is enabled.
// It logs at info so it shows up without lowering the global level.
func TrackLog(msg string, args ...any) {
	if Tracking {
		log.Info(msg, append([]any{"component", "tracking"}, args...)...)
	}
}
