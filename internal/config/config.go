// Package config loads the mirror's YAML configuration.
//
// Values come from defaults, then the YAML file, then environment variables.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-mirror/pkg/camera"
	"github.com/teslashibe/go-mirror/pkg/display"
	"github.com/teslashibe/go-mirror/pkg/tracking"
)

// DefaultPort is the dashboard and API port.
const DefaultPort = 8080

// Config is the complete mirror configuration.
type Config struct {
	Server       ServerConfig      `yaml:"server" json:"server"`
	Camera       camera.Config     `yaml:"camera" json:"camera"`
	Tracking     tracking.Config   `yaml:"tracking" json:"tracking"`
	Display      display.Overrides `yaml:"display" json:"display"`
	Widgets      WidgetsConfig     `yaml:"widgets" json:"widgets"`
	Log          LogConfig         `yaml:"log" json:"log"`
	SettingsPath string            `yaml:"settings_path" json:"settings_path"` // default ~/.mirror/settings.json

	// Demo forces synthetic faces only; no capture device is opened.
	Demo bool `yaml:"demo" json:"demo"`
}

// ServerConfig contains HTTP settings.
type ServerConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	StaticDir string `yaml:"static_dir" json:"static_dir"` // dashboard assets, served at /
}

// WidgetsConfig contains the data sources of the dashboard widgets.
type WidgetsConfig struct {
	Timezone  string         `yaml:"timezone" json:"timezone"` // overrides the saved setting when set
	Weather   WeatherConfig  `yaml:"weather" json:"weather"`
	Calendar  CalendarConfig `yaml:"calendar" json:"calendar"`
	Headlines []Headline     `yaml:"headlines" json:"headlines"`
	ProcRoot  string         `yaml:"proc_root" json:"proc_root"`
	SysRoot   string         `yaml:"sys_root" json:"sys_root"`
}

// WeatherConfig locates the forecast.
type WeatherConfig struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
	URL       string  `yaml:"url" json:"url"`
}

// CalendarConfig holds Google Calendar credentials.
type CalendarConfig struct {
	APIKey       string `yaml:"api_key" json:"-"`
	ClientID     string `yaml:"client_id" json:"-"`
	ClientSecret string `yaml:"client_secret" json:"-"`
	CalendarID   string `yaml:"calendar_id" json:"calendar_id"`
	TokenPath    string `yaml:"token_path" json:"token_path"`
	RedirectURL  string `yaml:"redirect_url" json:"redirect_url"`
}

// Enabled reports whether any credentials are configured.
func (c CalendarConfig) Enabled() bool {
	return c.APIKey != "" || (c.ClientID != "" && c.ClientSecret != "")
}

// Headline is one configured news item.
type Headline struct {
	Title   string `yaml:"title" json:"title"`
	Summary string `yaml:"summary" json:"summary"`
	Source  string `yaml:"source" json:"source"`
	URL     string `yaml:"url" json:"url"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: DefaultPort},
		Camera:   camera.DefaultConfig(),
		Tracking: tracking.DefaultConfig(),
		Widgets: WidgetsConfig{
			Weather:  WeatherConfig{Latitude: 40.7128, Longitude: -74.0060},
			ProcRoot: "/proc",
			SysRoot:  "/sys",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $MIRROR_CONFIG or ~/.mirror/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("MIRROR_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".mirror", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.LoadEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadEnv applies environment overrides.
func (c *Config) LoadEnv() error {
	var errs []error
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, &ConfigError{Field: key, Message: fmt.Sprintf("%s: not a number: %q", key, v)})
				return
			}
			*dst = f
		}
	}

	if v := os.Getenv("MIRROR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, &ConfigError{Field: "MIRROR_PORT", Message: fmt.Sprintf("MIRROR_PORT: not a port: %q", v)})
		} else {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MIRROR_CAMERA_DEVICE"); v != "" {
		c.Camera.Device = v
	}
	if v := os.Getenv("MIRROR_CAMERA_BACKEND"); v != "" {
		c.Camera.Backend = camera.Backend(strings.ToLower(v))
	}
	if v := os.Getenv("MIRROR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	setFloat("MIRROR_WEATHER_LAT", &c.Widgets.Weather.Latitude)
	setFloat("MIRROR_WEATHER_LON", &c.Widgets.Weather.Longitude)
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.Widgets.Calendar.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		c.Widgets.Calendar.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		c.Widgets.Calendar.ClientSecret = v
	}
	if v := os.Getenv("MIRROR_CALENDAR_ID"); v != "" {
		c.Widgets.Calendar.CalendarID = v
	}
	if v := os.Getenv("MIRROR_DEMO"); v != "" {
		demo, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, &ConfigError{Field: "MIRROR_DEMO", Message: fmt.Sprintf("MIRROR_DEMO: not a boolean: %q", v)})
		} else {
			c.Demo = demo
		}
	}
	return errors.Join(errs...)
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, &ConfigError{Field: "server.port", Message: fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port)})
	}
	for _, msg := range c.Camera.Validate() {
		errs = append(errs, &ConfigError{Field: "camera", Message: "camera." + msg})
	}
	if err := c.Tracking.Validate(); err != nil {
		errs = append(errs, &ConfigError{Field: "tracking", Message: err.Error()})
	}
	if lat := c.Widgets.Weather.Latitude; lat < -90 || lat > 90 {
		errs = append(errs, &ConfigError{Field: "widgets.weather.latitude", Message: fmt.Sprintf("widgets.weather.latitude must be between -90 and 90, got %v", lat)})
	}
	if lon := c.Widgets.Weather.Longitude; lon < -180 || lon > 180 {
		errs = append(errs, &ConfigError{Field: "widgets.weather.longitude", Message: fmt.Sprintf("widgets.weather.longitude must be between -180 and 180, got %v", lon)})
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, &ConfigError{Field: "log.format", Message: fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format)})
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
