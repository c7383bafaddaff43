//go:build !linux

package display

// NewHost returns a static host; only Linux has a native implementation.
func NewHost(o Overrides) Host {
	return NewStaticHost(o)
}
