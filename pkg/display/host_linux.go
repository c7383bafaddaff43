//go:build linux

package display

// NewHost returns the native host for this platform.
func NewHost(o Overrides) Host {
	return NewSysfsHost(o)
}
