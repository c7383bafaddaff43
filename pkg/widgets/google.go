package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ErrNotAuthenticated is returned by GoogleCalendar before it has credentials.
var ErrNotAuthenticated = errors.New("widgets: calendar not connected")

const oauthState = "mirror-calendar"

// GoogleCalendarConfig configures access to Google Calendar. Either an
// APIKey (public calendars) or an OAuth client is required.
type GoogleCalendarConfig struct {
	APIKey       string
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. http://localhost:8080/api/calendar/callback
	TokenPath    string // default ~/.mirror/google_token.json
	CalendarID   string // default "primary"
}

// GoogleCalendar reads upcoming events through the Calendar v3 API.
type GoogleCalendar struct {
	apiKey     string
	calendarID string
	config     *oauth2.Config
	tokenPath  string

	mu      sync.RWMutex
	token   *oauth2.Token
	service *calendar.Service
}

// NewGoogleCalendar creates a calendar client and loads a saved token if
// there is one.
func NewGoogleCalendar(cfg GoogleCalendarConfig) (*GoogleCalendar, error) {
	if cfg.APIKey == "" && (cfg.ClientID == "" || cfg.ClientSecret == "") {
		return nil, fmt.Errorf("GOOGLE_API_KEY or GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost:8080/api/calendar/callback"
	}
	if cfg.TokenPath == "" {
		homeDir, _ := os.UserHomeDir()
		cfg.TokenPath = filepath.Join(homeDir, ".mirror", "google_token.json")
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}

	g := &GoogleCalendar{
		apiKey:     cfg.APIKey,
		calendarID: cfg.CalendarID,
		tokenPath:  cfg.TokenPath,
	}
	if cfg.ClientID != "" {
		g.config = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		if err := g.loadToken(); err == nil {
			if err := g.initService(context.Background()); err != nil {
				g.token = nil
			}
		}
	}
	if g.service == nil && g.apiKey != "" {
		if err := g.initService(context.Background()); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// IsAuthenticated reports whether events can be fetched.
func (g *GoogleCalendar) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.service != nil
}

// AuthURL returns the consent URL, or "" when OAuth is not configured.
func (g *GoogleCalendar) AuthURL() string {
	if g.config == nil {
		return ""
	}
	return g.config.AuthCodeURL(oauthState, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// HandleCallback exchanges the authorization code and saves the token.
func (g *GoogleCalendar) HandleCallback(ctx context.Context, state, code string) error {
	if g.config == nil {
		return errors.New("oauth client not configured")
	}
	if state != oauthState {
		return errors.New("oauth state mismatch")
	}
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	g.mu.Lock()
	g.token = token
	g.mu.Unlock()

	if err := g.saveToken(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return g.initService(context.Background())
}

// Events returns up to limit events starting between from and to.
func (g *GoogleCalendar) Events(ctx context.Context, from, to time.Time, limit int) ([]Event, error) {
	g.mu.RLock()
	service := g.service
	g.mu.RUnlock()
	if service == nil {
		return nil, ErrNotAuthenticated
	}

	resp, err := service.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		if e, ok := convertEvent(item); ok {
			events = append(events, e)
		}
	}
	return events, nil
}

func convertEvent(item *calendar.Event) (Event, bool) {
	if item.Start == nil {
		return Event{}, false
	}
	e := Event{ID: item.Id, Title: item.Summary, Location: item.Location}
	start, allDay, err := parseEventTime(item.Start)
	if err != nil {
		return Event{}, false
	}
	e.Start, e.AllDay = start, allDay
	if item.End != nil {
		if end, _, err := parseEventTime(item.End); err == nil {
			e.End = end
		}
	}
	return e, true
}

func parseEventTime(t *calendar.EventDateTime) (time.Time, bool, error) {
	if t.DateTime != "" {
		v, err := time.Parse(time.RFC3339, t.DateTime)
		return v, false, err
	}
	v, err := time.Parse(time.DateOnly, t.Date)
	return v, true, err
}

func (g *GoogleCalendar) initService(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var opt option.ClientOption
	switch {
	case g.token != nil && g.config != nil:
		opt = option.WithHTTPClient(g.config.Client(ctx, g.token))
	case g.apiKey != "":
		opt = option.WithAPIKey(g.apiKey)
	default:
		return errors.New("no token available")
	}

	service, err := calendar.NewService(ctx, opt)
	if err != nil {
		return fmt.Errorf("failed to create calendar service: %w", err)
	}
	g.service = service
	return nil
}

func (g *GoogleCalendar) loadToken() error {
	data, err := os.ReadFile(g.tokenPath)
	if err != nil {
		return err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	g.mu.Lock()
	g.token = &token
	g.mu.Unlock()
	return nil
}

func (g *GoogleCalendar) saveToken() error {
	g.mu.RLock()
	token := g.token
	g.mu.RUnlock()
	if token == nil {
		return errors.New("no token to save")
	}

	if err := os.MkdirAll(filepath.Dir(g.tokenPath), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(g.tokenPath, data, 0600)
}
