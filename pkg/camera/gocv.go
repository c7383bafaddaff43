package camera

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-mirror/internal/log"
)

// GocvCapturer opens V4L2 devices through OpenCV.
// Frames are only encoded for the preview feed, never analyzed.
type GocvCapturer struct {
	cfg    Config
	logger *slog.Logger
	// sysfs root used to read device names
	sysRoot string
}

// NewGocvCapturer creates a capturer for the devices matching cfg.DevicePattern.
func NewGocvCapturer(cfg Config, logger *slog.Logger) *GocvCapturer {
	if cfg.DevicePattern == "" {
		cfg.DevicePattern = DefaultConfig().DevicePattern
	}
	return &GocvCapturer{
		cfg:     cfg,
		logger:  log.Or(logger, "camera.gocv"),
		sysRoot: "/sys/class/video4linux",
	}
}

// Supported is always true: OpenCV is linked in.
func (g *GocvCapturer) Supported() bool {
	return true
}

// Devices lists V4L2 nodes. The configured device, or the first node, is
// treated as the front-facing camera.
func (g *GocvCapturer) Devices(ctx context.Context) ([]Device, error) {
	paths, err := filepath.Glob(g.cfg.DevicePattern)
	if err != nil {
		return nil, fmt.Errorf("camera: bad device pattern %q: %w", g.cfg.DevicePattern, err)
	}
	sort.Strings(paths)

	front := g.cfg.Device
	if front == "" && len(paths) > 0 {
		front = paths[0]
	}

	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		d := Device{ID: p, Label: g.deviceName(p)}
		if p == front {
			d.Facing = FacingUser
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (g *GocvCapturer) deviceName(path string) string {
	b, err := os.ReadFile(filepath.Join(g.sysRoot, filepath.Base(path), "name"))
	if err != nil {
		return filepath.Base(path)
	}
	return strings.TrimSpace(string(b))
}

// Open acquires the first candidate device that satisfies c.
func (g *GocvCapturer) Open(ctx context.Context, c Constraints) (Stream, error) {
	devices, err := g.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}

	var candidates []Device
	for _, d := range devices {
		if c.Facing == FacingAny || d.Facing == c.Facing {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no %s device", ErrConstraintsUnsupported, c.Facing)
	}

	var lastErr error
	for _, d := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := g.openDevice(d, c)
		if err == nil {
			return s, nil
		}
		g.logger.Debug("device rejected constraints", "device", d.ID, "constraints", c.String(), "error", err)
		lastErr = err
	}
	return nil, lastErr
}

func (g *GocvCapturer) openDevice(d Device, c Constraints) (Stream, error) {
	if err := checkAccess(d.ID); err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCapture(d.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceBusy, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s did not open", ErrDeviceBusy, d.ID)
	}

	if c.HasResolution() {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))

		w := int(vc.Get(gocv.VideoCaptureFrameWidth))
		h := int(vc.Get(gocv.VideoCaptureFrameHeight))
		if w != c.Width || h != c.Height {
			vc.Close()
			return nil, fmt.Errorf("%w: asked %dx%d, device gave %dx%d",
				ErrConstraintsUnsupported, c.Width, c.Height, w, h)
		}
	}

	quality := g.cfg.Quality
	if quality <= 0 {
		quality = DefaultConfig().Quality
	}

	s := &gocvStream{
		id:       uuid.NewString(),
		vc:       vc,
		frame:    gocv.NewMat(),
		quality:  quality,
		settings: c,
	}
	s.track = &gocvTrack{stream: s, label: d.Label}
	return s, nil
}

// checkAccess opens the node once to surface permission and busy errors
// before OpenCV swallows them.
func checkAccess(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err == nil {
		return f.Close()
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNoDevice, path)
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	case errors.Is(err, syscall.EBUSY):
		return fmt.Errorf("%w: %s", ErrDeviceBusy, path)
	default:
		return fmt.Errorf("camera: open %s: %w", path, err)
	}
}

type gocvStream struct {
	id       string
	settings Constraints
	quality  int
	track    *gocvTrack

	mu     sync.Mutex
	vc     *gocv.VideoCapture
	frame  gocv.Mat
	closed bool
}

func (s *gocvStream) ID() string            { return s.id }
func (s *gocvStream) Settings() Constraints { return s.settings }
func (s *gocvStream) Tracks() []Track       { return []Track{s.track} }

// CaptureJPEG grabs and encodes the current frame.
func (s *gocvStream) CaptureJPEG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("camera: stream closed")
	}
	if ok := s.vc.Read(&s.frame); !ok || s.frame.Empty() {
		return nil, errors.New("camera: empty frame")
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, s.frame, []int{int(gocv.IMWriteJpegQuality), s.quality})
	if err != nil {
		return nil, fmt.Errorf("camera: encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

func (s *gocvStream) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.frame.Close()
	return s.vc.Close()
}

type gocvTrack struct {
	stream *gocvStream
	label  string
}

func (t *gocvTrack) Label() string { return t.label }
func (t *gocvTrack) Stop() error   { return t.stream.close() }
