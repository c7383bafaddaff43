// Package web serves the mirror's control API, live websockets and the
// dashboard assets.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/display"
	"github.com/teslashibe/go-mirror/pkg/hub"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/overlay"
	"github.com/teslashibe/go-mirror/pkg/settings"
	"github.com/teslashibe/go-mirror/pkg/tracking"
	"github.com/teslashibe/go-mirror/pkg/widgets"
)

// Controller is the part of mirror.Controller the API drives.
type Controller interface {
	Snapshot() mirror.Snapshot
	Display() display.Profile
	Reprobe() display.Profile
	StartCamera(ctx context.Context) error
	StopCamera()
	RetryCamera(ctx context.Context) error
	RequestPermission(ctx context.Context) error
	ToggleTracking(enabled bool)
	AdjustPresentation(brightnessDelta, contrastDelta int) mirror.Presentation
	SetMode(mode string) error
	CycleMode() mirror.Mode
	SetFilter(filter string) error
	SetGuide(guide string) error
	SetTuning(params tracking.TuningParams) tracking.TuningParams
	Tuning() tracking.TuningParams
	CaptureJPEG() ([]byte, error)
}

// Board is the widget board behind /api/widgets.
type Board interface {
	Panels() []widgets.Panel
	SetEnabled(id string, enabled bool) error
	Refresh(id string) (widgets.Panel, error)
}

// SettingsStore persists dashboard settings.
type SettingsStore interface {
	Load() settings.Settings
	Update(fn func(*settings.Settings)) (settings.Settings, error)
	SetWidget(id string, enabled bool) (settings.Settings, error)
}

// CalendarAuth runs the calendar OAuth flow.
type CalendarAuth interface {
	AuthURL() string
	IsAuthenticated() bool
	HandleCallback(ctx context.Context, state, code string) error
}

// Deps are the collaborators the server exposes. Board, Settings, Calendar
// and Metrics are optional.
type Deps struct {
	Controller Controller
	Board      Board
	Settings   SettingsStore
	Calendar   CalendarAuth
	Metrics    http.Handler
	Logger     *slog.Logger

	// OnClients is told +1/-1 as websocket clients come and go.
	OnClients func(delta int)
}

// Config configures the HTTP listener.
type Config struct {
	Addr      string
	StaticDir string
}

// SnapshotMessage is what /ws/snapshot pushes: the state and its rendering.
type SnapshotMessage struct {
	Snapshot mirror.Snapshot `json:"snapshot"`
	Overlay  overlay.Scene   `json:"overlay"`
}

// Server is the mirror's HTTP server.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
	deps   Deps

	snapshotHub *hub.Hub
	widgetHub   *hub.Hub
	cameraHub   *hub.Hub
}

// NewServer builds the routes. Nothing listens until Start.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Component("web")
	}
	hubOpts := []hub.Option{hub.WithLogger(logger)}
	if deps.OnClients != nil {
		hubOpts = append(hubOpts, hub.WithClientObserver(deps.OnClients))
	}

	s := &Server{
		addr:        cfg.Addr,
		logger:      logger,
		deps:        deps,
		snapshotHub: hub.New("snapshot", append(hubOpts, hub.WithReplay())...),
		widgetHub:   hub.New("widgets", append(hubOpts, hub.WithReplay())...),
		cameraHub:   hub.New("camera", hubOpts...),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Mirror",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/snapshot", s.handleSnapshot)
	api.Get("/overlay", s.handleOverlay)
	api.Get("/display", s.handleDisplay)
	api.Post("/display/reprobe", s.handleReprobe)

	api.Post("/camera/start", s.handleCameraStart)
	api.Post("/camera/stop", s.handleCameraStop)
	api.Post("/camera/retry", s.handleCameraRetry)
	api.Post("/camera/permission", s.handleCameraPermission)
	api.Get("/camera/frame", s.handleCameraFrame)

	api.Post("/tracking", s.handleTracking)
	api.Get("/tuning", s.handleGetTuning)
	api.Post("/tuning", s.handleSetTuning)
	api.Post("/presentation", s.handlePresentation)
	api.Post("/mode", s.handleMode)
	api.Post("/mode/cycle", s.handleModeCycle)
	api.Post("/filter", s.handleFilter)
	api.Post("/guide", s.handleGuide)

	api.Get("/settings", s.handleGetSettings)
	api.Put("/settings", s.handlePutSettings)
	api.Get("/widgets", s.handleGetWidgets)
	api.Post("/widgets/:id", s.handleSetWidget)
	api.Get("/calendar/auth", s.handleCalendarAuth)
	api.Get("/calendar/callback", s.handleCalendarCallback)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/snapshot", websocket.New(s.serveHub(s.snapshotHub)))
	app.Get("/ws/widgets", websocket.New(s.serveHub(s.widgetHub)))
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Start runs the hubs and listens until Shutdown. The hubs stop when ctx
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.snapshotHub.Run(ctx)
	go s.widgetHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	s.logger.Info("web server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("web server stopped", "error", err)
		}
	}()
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

// PublishSnapshot pushes s and its overlay to /ws/snapshot clients.
func (s *Server) PublishSnapshot(snap mirror.Snapshot) {
	msg := SnapshotMessage{Snapshot: snap, Overlay: overlay.RenderSnapshot(snap)}
	if err := s.snapshotHub.BroadcastJSON(msg); err != nil {
		s.logger.Warn("could not encode snapshot", "error", err)
	}
}

// PublishPanels pushes the full widget list to /ws/widgets clients.
func (s *Server) PublishPanels(panels []widgets.Panel) {
	if err := s.widgetHub.BroadcastJSON(panels); err != nil {
		s.logger.Warn("could not encode widgets", "error", err)
	}
}

// PublishFrame pushes a JPEG preview frame to /ws/camera clients.
func (s *Server) PublishFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

// CameraClients reports how many clients want preview frames.
func (s *Server) CameraClients() int {
	return s.cameraHub.ClientCount()
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		hub.NewClient(h, c).Run()
	}
}
