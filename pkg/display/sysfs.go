package display

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SysfsHost reads display capabilities from a Linux sysfs/procfs tree.
// Root is normally "/"; tests point it at a fixture directory.
type SysfsHost struct {
	Root      string
	Overrides Overrides
}

// NewSysfsHost creates a host rooted at "/".
func NewSysfsHost(o Overrides) *SysfsHost {
	return &SysfsHost{Root: "/", Overrides: o}
}

func (h *SysfsHost) path(parts ...string) string {
	return filepath.Join(append([]string{h.Root}, parts...)...)
}

// Screen returns the preferred mode of the first connected DRM connector.
func (h *SysfsHost) Screen() Screen {
	s := Screen{ColorDepth: defaultDepth, PixelRatio: defaultRatio}

	if w, ht, ok := h.connectedMode(); ok {
		s.Width, s.Height = w, ht
	}
	if bpp, err := readInt(h.path("sys", "class", "graphics", "fb0", "bits_per_pixel")); err == nil && bpp > 0 {
		// 32bpp framebuffers carry 24 bits of colour plus alpha.
		s.ColorDepth = min(bpp, 24)
		if bpp > 32 {
			s.ColorDepth = 30
		}
	}

	o := h.Overrides
	if o.Width > 0 && o.Height > 0 {
		s.Width, s.Height = o.Width, o.Height
	}
	if o.ColorDepth > 0 {
		s.ColorDepth = o.ColorDepth
	}
	if o.PixelRatio > 0 {
		s.PixelRatio = o.PixelRatio
	}
	return s
}

// connectedMode scans card*-* connectors in name order.
func (h *SysfsHost) connectedMode() (int, int, bool) {
	connectors, _ := filepath.Glob(h.path("sys", "class", "drm", "card*-*"))
	sort.Strings(connectors)

	for _, c := range connectors {
		status, err := os.ReadFile(filepath.Join(c, "status"))
		if err != nil || strings.TrimSpace(string(status)) != "connected" {
			continue
		}
		modes, err := os.ReadFile(filepath.Join(c, "modes"))
		if err != nil {
			continue
		}
		first, _, _ := strings.Cut(strings.TrimSpace(string(modes)), "\n")
		if w, ht, ok := parseMode(first); ok {
			return w, ht, true
		}
	}
	return 0, 0, false
}

// parseMode parses "1920x1080" (optionally suffixed, e.g. "1920x1080i").
func parseMode(mode string) (int, int, bool) {
	ws, hs, ok := strings.Cut(mode, "x")
	if !ok {
		return 0, 0, false
	}
	hs = strings.TrimRightFunc(hs, func(r rune) bool { return r < '0' || r > '9' })
	w, err1 := strconv.Atoi(ws)
	ht, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || ht <= 0 {
		return 0, 0, false
	}
	return w, ht, true
}

// XR is only reported when configured; Linux kiosks have no immersive runtime.
func (h *SysfsHost) XR() XRSupport {
	if h.Overrides.XR || h.Overrides.ImmersiveVR {
		return XRSupport{Queryable: true, ImmersiveVR: h.Overrides.ImmersiveVR}
	}
	return XRSupport{}
}

// HasTouch looks for a touchscreen in /proc/bus/input/devices.
func (h *SysfsHost) HasTouch() bool {
	if h.Overrides.Touch != nil {
		return *h.Overrides.Touch
	}

	f, err := os.Open(h.path("proc", "bus", "input", "devices"))
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if name, ok := strings.CutPrefix(line, "N: Name="); ok {
			if strings.Contains(strings.ToLower(name), "touch") {
				return true
			}
		}
	}
	return false
}

// FullscreenCapable is true when any connector is driving a display.
func (h *SysfsHost) FullscreenCapable() bool {
	_, _, ok := h.connectedMode()
	return ok
}

func (h *SysfsHost) UserAgent() string {
	if h.Overrides.UserAgent != "" {
		return h.Overrides.UserAgent
	}
	return DefaultUserAgent
}

// HasCamera reports whether any V4L2 node exists.
func (h *SysfsHost) HasCamera() bool {
	nodes, _ := filepath.Glob(h.path("dev", "video*"))
	return len(nodes) > 0
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}
