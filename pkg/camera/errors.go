package camera

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the capture failure taxonomy.
var (
	// ErrCaptureUnsupported is returned when the host has no capture API.
	ErrCaptureUnsupported = errors.New("camera: capture unsupported")

	// ErrNoDevice is returned when no video input is present.
	ErrNoDevice = errors.New("camera: no video input device")

	// ErrPermissionDenied is returned when access to the device was refused.
	ErrPermissionDenied = errors.New("camera: permission denied")

	// ErrDeviceBusy is returned when another process holds the device.
	ErrDeviceBusy = errors.New("camera: device busy")

	// ErrConstraintsUnsupported is returned when the device cannot satisfy a tier.
	ErrConstraintsUnsupported = errors.New("camera: constraints unsupported")

	// ErrStaleAcquisition is returned when a stream resolved after the session was stopped.
	ErrStaleAcquisition = errors.New("camera: acquisition outlived its session")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("camera: session closed")
)

// User-facing status messages.
const (
	MsgUnsupported = "Camera API not supported in this environment"
	MsgNoDevices   = "No camera devices found"
	MsgNotFound    = "No camera found - using demo mode"
	MsgDenied      = "Camera access denied - please allow camera permissions"
	MsgBusy        = "Camera is being used by another application"
	MsgConstraints = "Camera constraints not supported - using demo mode"
)

// TierError records why a single ladder tier failed.
type TierError struct {
	Tier string
	Err  error
}

func (e *TierError) Error() string {
	return fmt.Sprintf("camera: tier %s: %v", e.Tier, e.Err)
}

func (e *TierError) Unwrap() error {
	return e.Err
}

// LadderError is returned when no tier could be acquired.
type LadderError struct {
	Attempts []*TierError
}

func (e *LadderError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("camera: all constraint tiers failed: [%s]", strings.Join(parts, "; "))
}

// Unwrap exposes every tier failure to errors.Is/As.
func (e *LadderError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

// Last returns the final tier failure, which decides the classification.
func (e *LadderError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// terminal reports whether later tiers cannot help after err.
func terminal(err error) bool {
	return errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrNoDevice) ||
		errors.Is(err, ErrDeviceBusy) ||
		errors.Is(err, ErrCaptureUnsupported)
}

// Classify maps an acquisition error to a status and a user-facing message.
func Classify(err error) (Status, string) {
	var ladder *LadderError
	if errors.As(err, &ladder) && ladder.Last() != nil {
		err = ladder.Last()
	}

	switch {
	case err == nil:
		return StatusAvailable, ""
	case errors.Is(err, ErrCaptureUnsupported):
		return StatusUnavailable, MsgUnsupported
	case errors.Is(err, ErrNoDevice):
		return StatusUnavailable, MsgNotFound
	case errors.Is(err, ErrPermissionDenied):
		return StatusDenied, MsgDenied
	case errors.Is(err, ErrDeviceBusy):
		return StatusUnavailable, MsgBusy
	case errors.Is(err, ErrConstraintsUnsupported):
		return StatusUnavailable, MsgConstraints
	default:
		return StatusUnavailable, fmt.Sprintf("Camera error: %s - using demo mode", rootMessage(err))
	}
}

// rootMessage strips wrapping so the banner shows the underlying cause.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
