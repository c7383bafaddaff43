// Package settings persists the mirror's user settings as a single JSON
// snapshot on disk.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/teslashibe/go-mirror/pkg/mirror"
)

// Widget ids.
const (
	WidgetClock    = "clock"
	WidgetWeather  = "weather"
	WidgetCalendar = "calendar"
	WidgetNews     = "news"
	WidgetSystem   = "system"
)

// WidgetSetting is the placement of one dashboard widget.
type WidgetSetting struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Position string `json:"position"`
}

// Settings is the full persisted snapshot.
type Settings struct {
	Mode       mirror.Mode   `json:"mode"`
	Filter     mirror.Filter `json:"filter"`
	Guide      mirror.Guide  `json:"guide"`
	Tracking   bool          `json:"tracking"`
	Brightness int           `json:"brightness"`
	Contrast   int           `json:"contrast"`

	Timezone         string `json:"timezone"`
	Units            string `json:"units"` // metric or imperial
	Language         string `json:"language"`
	Theme            string `json:"theme"`
	UpdateIntervalMS int    `json:"update_interval_ms"`
	AutoSleep        bool   `json:"auto_sleep"`
	MotionDetection  bool   `json:"motion_detection"`
	VoiceControl     bool   `json:"voice_control"`

	Widgets []WidgetSetting `json:"widgets"`
}

// Default returns the factory settings.
func Default() Settings {
	return Settings{
		Mode:             mirror.ModeNormal,
		Tracking:         true,
		Brightness:       mirror.DefaultLevel,
		Contrast:         mirror.DefaultLevel,
		Timezone:         "America/New_York",
		Units:            "metric",
		Language:         "en",
		Theme:            "dark",
		UpdateIntervalMS: 300000,
		AutoSleep:        true,
		MotionDetection:  true,
		Widgets:          DefaultWidgets(),
	}
}

// DefaultWidgets returns the stock widget layout.
func DefaultWidgets() []WidgetSetting {
	return []WidgetSetting{
		{ID: WidgetClock, Name: "Clock", Enabled: true, Position: "top-right"},
		{ID: WidgetWeather, Name: "Weather", Enabled: true, Position: "top-left"},
		{ID: WidgetCalendar, Name: "Calendar", Enabled: true, Position: "center-left"},
		{ID: WidgetNews, Name: "News", Enabled: true, Position: "bottom-center"},
		{ID: WidgetSystem, Name: "System Info", Enabled: true, Position: "bottom-right"},
	}
}

// Clone copies the widget slice.
func (s Settings) Clone() Settings {
	s.Widgets = append([]WidgetSetting(nil), s.Widgets...)
	return s
}

// WidgetEnabled reports whether widget id is switched on. Unknown ids are off.
func (s Settings) WidgetEnabled(id string) bool {
	for _, w := range s.Widgets {
		if w.ID == id {
			return w.Enabled
		}
	}
	return false
}

// Preferences extracts the controller's view of s.
func (s Settings) Preferences() mirror.Preferences {
	return mirror.Preferences{
		Mode:     s.Mode,
		Filter:   s.Filter,
		Guide:    s.Guide,
		Tracking: s.Tracking,
		Presentation: mirror.Presentation{
			Brightness: s.Brightness,
			Contrast:   s.Contrast,
		}.Normalize(),
	}
}

// Validate checks the fields a hand-edited file could get wrong.
func (s Settings) Validate() error {
	var errs []error
	if _, err := mirror.ParseMode(string(s.Mode)); err != nil {
		errs = append(errs, err)
	}
	if _, err := mirror.ParseFilter(string(s.Filter)); err != nil {
		errs = append(errs, err)
	}
	if s.Guide != "" {
		if _, err := mirror.ParseGuide(s.Mode, string(s.Guide)); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Units != "metric" && s.Units != "imperial" {
		errs = append(errs, fmt.Errorf("settings: unknown units %q", s.Units))
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("settings: timezone: %w", err))
		}
	}
	if s.UpdateIntervalMS < 0 {
		errs = append(errs, errors.New("settings: update interval must not be negative"))
	}
	return errors.Join(errs...)
}

// Store is a JSON-file backed Settings holder.
type Store struct {
	path     string
	settings Settings
	mu       sync.RWMutex
}

// storeData is the JSON structure for the settings file.
type storeData struct {
	Version   int      `json:"version"`
	UpdatedAt string   `json:"updated_at"`
	Settings  Settings `json:"settings"`
}

const currentVersion = 1

// NewStore opens the store at path. A missing file yields defaults; the
// file is created on first save.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, settings: Default()}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
	}
	return s, nil
}

// DefaultPath is ~/.mirror/settings.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mirror", "settings.json"), nil
}

// NewDefaultStore opens the store at DefaultPath.
func NewDefaultStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path)
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Fields absent from older files keep their defaults.
	stored := storeData{Settings: Default()}
	stored.Settings.Widgets = nil
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if stored.Version > currentVersion {
		return fmt.Errorf("settings version %d is newer than supported %d", stored.Version, currentVersion)
	}
	if len(stored.Settings.Widgets) == 0 {
		stored.Settings.Widgets = DefaultWidgets()
	}
	s.settings = stored.Settings
	return nil
}

// save writes the current settings to disk. Caller holds mu.
func (s *Store) save() error {
	stored := storeData{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Settings:  s.settings,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load returns a copy of the current settings.
func (s *Store) Load() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// Save validates and replaces the settings.
func (s *Store) Save(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = next.Clone()
	return s.save()
}

// Update applies fn to a copy of the settings and saves the result if it
// validates. The stored settings are unchanged on error.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.Clone()
	fn(&next)
	if err := next.Validate(); err != nil {
		return s.settings.Clone(), err
	}
	prev := s.settings
	s.settings = next
	if err := s.save(); err != nil {
		s.settings = prev
		return prev.Clone(), err
	}
	return next.Clone(), nil
}

// SetWidget toggles widget id. Unknown ids are an error.
func (s *Store) SetWidget(id string, enabled bool) (Settings, error) {
	found := false
	out, err := s.Update(func(st *Settings) {
		for i := range st.Widgets {
			if st.Widgets[i].ID == id {
				st.Widgets[i].Enabled = enabled
				found = true
			}
		}
	})
	if err != nil {
		return out, err
	}
	if !found {
		return out, fmt.Errorf("settings: unknown widget %q", id)
	}
	return out, nil
}

// LoadPreferences implements mirror.PreferenceStore.
func (s *Store) LoadPreferences() (mirror.Preferences, error) {
	return s.Load().Preferences(), nil
}

// SavePreferences implements mirror.PreferenceStore.
func (s *Store) SavePreferences(p mirror.Preferences) error {
	_, err := s.Update(func(st *Settings) {
		st.Mode = p.Mode
		st.Filter = p.Filter
		st.Guide = p.Guide
		st.Tracking = p.Tracking
		st.Brightness = p.Presentation.Brightness
		st.Contrast = p.Presentation.Contrast
	})
	return err
}
