// Package app wires the mirror's components together and owns their
// lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-mirror/internal/config"
	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/camera"
	"github.com/teslashibe/go-mirror/pkg/debug"
	"github.com/teslashibe/go-mirror/pkg/display"
	"github.com/teslashibe/go-mirror/pkg/metrics"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/settings"
	"github.com/teslashibe/go-mirror/pkg/tracking"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
	"github.com/teslashibe/go-mirror/pkg/web"
	"github.com/teslashibe/go-mirror/pkg/widgets"
)

// Version is set at build time.
var Version = "dev"

const shutdownTimeout = 5 * time.Second

// Options are the command-line switches layered over the config file.
type Options struct {
	Debug         bool
	DebugTracking bool
}

// App is the mirror application orchestrator.
type App struct {
	config config.Config
	opts   Options
	logger *slog.Logger

	metrics  *metrics.Metrics
	store    *settings.Store
	session  *camera.Session
	ctrl     *mirror.Controller
	board    *widgets.Board
	calendar *widgets.GoogleCalendar
	server   *web.Server

	unsubscribe func()
	cancel      context.CancelFunc
}

// New validates cfg and creates an App. Nothing is started.
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = opts.Debug
	debug.Tracking = opts.DebugTracking

	return &App{
		config: cfg,
		opts:   opts,
		logger: log.Component("app"),
	}, nil
}

// Init builds every component. Call it after New and before Run.
func (a *App) Init() error {
	fmt.Printf("🪞 Mirror %s\n", Version)
	fmt.Println("==============================================")
	if debug.Enabled {
		fmt.Println("🐛 Debug mode enabled")
	}

	a.metrics = metrics.New()

	if err := a.initSettings(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	a.initController()
	a.initWidgets()
	a.initWeb()

	a.unsubscribe = a.ctrl.Subscribe(a.server.PublishSnapshot)
	return nil
}

func (a *App) initSettings() error {
	path := a.config.SettingsPath
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return err
		}
	}
	store, err := settings.NewStore(path)
	if err != nil {
		return err
	}
	a.store = store
	fmt.Printf("📝 Settings loaded from %s\n", store.Path())
	return nil
}

func (a *App) initController() {
	var capturer camera.Capturer = camera.NullCapturer{}
	if !a.config.Demo {
		capturer = camera.NewCapturer(a.config.Camera, log.Component("camera"))
	}
	if capturer.Supported() {
		fmt.Printf("📷 Camera backend: %s\n", a.config.Camera.Backend)
	} else {
		fmt.Println("📷 No camera, running in demo mode")
	}

	a.session = camera.NewSession(capturer, a.config.Camera,
		camera.WithAttemptObserver(a.metrics.ObserveAttempt))

	gen := detection.NewSynthetic(detection.WithMissRate(a.config.Tracking.MissRate))
	loop := tracking.NewLoop(gen, tracking.NewTickerScheduler(),
		tracking.WithObserver(a.metrics.ObserveTick))

	host := display.NewHost(a.config.Display)
	a.ctrl = mirror.New(a.session, loop, host,
		mirror.WithTrackingConfig(a.config.Tracking),
		mirror.WithStore(a.store),
		mirror.WithObserver(a.metrics),
	)
}

func (a *App) initWidgets() {
	s := a.store.Load()

	tz := s.Timezone
	if a.config.Widgets.Timezone != "" {
		tz = a.config.Widgets.Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		a.logger.Warn("unknown timezone, using local time", "timezone", tz, "error", err)
		loc = time.Local
	}

	weather := widgets.NewWeather(a.config.Widgets.Weather.Latitude, a.config.Widgets.Weather.Longitude, s.Units)
	if a.config.Widgets.Weather.URL != "" {
		weather.BaseURL = a.config.Widgets.Weather.URL
	}

	var source widgets.EventSource
	if cc := a.config.Widgets.Calendar; cc.Enabled() {
		redirect := cc.RedirectURL
		if redirect == "" {
			redirect = fmt.Sprintf("http://localhost:%d/api/calendar/callback", a.config.Server.Port)
		}
		cal, err := widgets.NewGoogleCalendar(widgets.GoogleCalendarConfig{
			APIKey:       cc.APIKey,
			ClientID:     cc.ClientID,
			ClientSecret: cc.ClientSecret,
			RedirectURL:  redirect,
			TokenPath:    cc.TokenPath,
			CalendarID:   cc.CalendarID,
		})
		if err != nil {
			fmt.Printf("⚠️  Google Calendar: %v\n", err)
		} else {
			a.calendar, source = cal, cal
			if cal.IsAuthenticated() {
				fmt.Println("📅 Google Calendar connected")
			} else {
				fmt.Println("📅 Google Calendar configured (not connected)")
			}
		}
	}

	var articles []widgets.Article
	for _, h := range a.config.Widgets.Headlines {
		articles = append(articles, widgets.Article{Title: h.Title, Summary: h.Summary, Source: h.Source, URL: h.URL})
	}

	list := []widgets.Widget{
		widgets.NewClock(loc),
		weather,
		widgets.NewCalendar(source, loc),
		widgets.NewNews(articles),
		widgets.NewSystem(a.config.Widgets.ProcRoot, a.config.Widgets.SysRoot, nil),
	}
	a.board = widgets.NewBoard(tracking.NewTickerScheduler(), list,
		widgets.WithRefreshObserver(a.metrics.ObserveRefresh),
		widgets.WithPublisher(func(widgets.Panel) {
			if a.server != nil {
				a.server.PublishPanels(a.board.Panels())
			}
		}),
	)
}

func (a *App) initWeb() {
	deps := web.Deps{
		Controller: a.ctrl,
		Board:      a.board,
		Settings:   a.store,
		Metrics:    a.metrics.Handler(),
		OnClients:  a.metrics.ClientsChanged,
	}
	// A nil *GoogleCalendar must not become a non-nil interface.
	if a.calendar != nil {
		deps.Calendar = a.calendar
	}
	a.server = web.NewServer(web.Config{
		Addr:      a.config.Addr(),
		StaticDir: a.config.Server.StaticDir,
	}, deps)
}

// Run starts the camera, tracking, widgets and the web server, then blocks
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	a.server.StartAsync(ctx)
	fmt.Printf("🌐 Dashboard on http://localhost:%d\n", a.config.Server.Port)

	if err := a.ctrl.Initialize(ctx); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	snap := a.ctrl.Snapshot()
	fmt.Printf("👁️  %s (%s, display: %s)\n", snap.StatusText(), snap.Status, snap.Display.Kind)

	st := a.store.Load()
	a.board.Start(st.WidgetEnabled)

	go a.streamPreview(ctx)

	fmt.Println("\n🪞 Mirror is running! (Ctrl+C to exit)")
	<-ctx.Done()
	return nil
}

// streamPreview pushes JPEG frames to /ws/camera while someone is watching.
func (a *App) streamPreview(ctx context.Context) {
	fps := a.config.Camera.PreviewFPS
	if fps <= 0 {
		return
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	frames := 0
	var lastErr time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.server.CameraClients() == 0 || !a.session.State().Streaming {
				continue
			}
			frame, err := a.ctrl.CaptureJPEG()
			if err != nil {
				if time.Since(lastErr) > 5*time.Second {
					a.logger.Warn("preview frame failed", "error", err)
					lastErr = time.Now()
				}
				continue
			}
			a.server.PublishFrame(frame)
			frames++
			if frames == 1 {
				debug.Log("first preview frame sent", "bytes", len(frame))
			}
		}
	}
}

// Shutdown stops every component. Safe to call after a failed Init.
func (a *App) Shutdown() {
	fmt.Println("\n👋 Goodbye!")

	if a.cancel != nil {
		a.cancel()
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.board != nil {
		a.board.Stop()
	}
	if a.ctrl != nil {
		if err := a.ctrl.Close(); err != nil {
			a.logger.Warn("camera release failed", "error", err)
		}
	}
	if a.server != nil {
		if err := a.server.Shutdown(shutdownTimeout); err != nil {
			a.logger.Warn("web server shutdown", "error", err)
		}
	}
}
