package camera

import "context"

// NullCapturer is a host with no capture API. Sessions using it stay in demo mode.
type NullCapturer struct{}

func (NullCapturer) Supported() bool { return false }

func (NullCapturer) Devices(context.Context) ([]Device, error) {
	return nil, ErrCaptureUnsupported
}

func (NullCapturer) Open(context.Context, Constraints) (Stream, error) {
	return nil, ErrCaptureUnsupported
}
