package display

import "sync"

// FakeHost is a mutable Host for tests. It counts how often each signal is read.
type FakeHost struct {
	mu sync.Mutex

	ScreenValue Screen
	XRValue     XRSupport
	Touch       bool
	Fullscreen  bool
	Agent       string
	Camera      bool

	Reads int
}

func (f *FakeHost) read() {
	f.mu.Lock()
	f.Reads++
	f.mu.Unlock()
}

func (f *FakeHost) Screen() Screen          { f.read(); return f.ScreenValue }
func (f *FakeHost) XR() XRSupport           { f.read(); return f.XRValue }
func (f *FakeHost) HasTouch() bool          { f.read(); return f.Touch }
func (f *FakeHost) FullscreenCapable() bool { f.read(); return f.Fullscreen }
func (f *FakeHost) UserAgent() string       { f.read(); return f.Agent }
func (f *FakeHost) HasCamera() bool         { f.read(); return f.Camera }
