package widgets

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Event is one calendar entry.
type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	Location string    `json:"location,omitempty"`
}

// EventSource lists events. GoogleCalendar is the production source.
type EventSource interface {
	Events(ctx context.Context, from, to time.Time, limit int) ([]Event, error)
}

// CalendarData is the calendar panel.
type CalendarData struct {
	Today    []Event `json:"today"`
	Upcoming []Event `json:"upcoming"`
	Offline  bool    `json:"offline,omitempty"`
}

// Calendar shows today's and upcoming events, refreshed every five minutes.
type Calendar struct {
	source EventSource
	loc    *time.Location
	now    func() time.Time
	days   int
	limit  int
}

// NewCalendar reads from source. A nil source always shows the offline
// sample events.
func NewCalendar(source EventSource, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{source: source, loc: loc, now: time.Now, days: 7, limit: 5}
}

func (c *Calendar) ID() string              { return "calendar" }
func (c *Calendar) Interval() time.Duration { return 5 * time.Minute }

func (c *Calendar) Refresh(ctx context.Context) (any, error) {
	now := c.now().In(c.loc)
	if c.source == nil {
		d := c.split(now, sampleEvents(now))
		d.Offline = true
		return d, nil
	}

	events, err := c.source.Events(ctx, now, now.AddDate(0, 0, c.days), 25)
	if err != nil {
		d := c.split(now, sampleEvents(now))
		d.Offline = true
		return d, fmt.Errorf("calendar: %w", err)
	}
	return c.split(now, events), nil
}

// split sorts events into today and the next few after now.
func (c *Calendar) split(now time.Time, events []Event) CalendarData {
	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	d := CalendarData{Today: []Event{}, Upcoming: []Event{}}
	y, m, day := now.Date()
	for _, e := range sorted {
		ey, em, eday := e.Start.In(c.loc).Date()
		if ey == y && em == m && eday == day {
			d.Today = append(d.Today, e)
		}
		if e.Start.After(now) && len(d.Upcoming) < c.limit {
			d.Upcoming = append(d.Upcoming, e)
		}
	}
	return d
}

// sampleEvents mirrors the stock agenda shown without a calendar account.
func sampleEvents(now time.Time) []Event {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	at := func(d, h, m int) time.Time {
		return day.AddDate(0, 0, d).Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}
	return []Event{
		{ID: "1", Title: "Team Meeting", Start: at(0, 10, 0), End: at(0, 11, 0), Location: "Conference Room A"},
		{ID: "2", Title: "Project Review", Start: at(0, 14, 30), End: at(0, 15, 30)},
		{ID: "3", Title: "Lunch with Client", Start: at(1, 12, 0), End: at(1, 13, 30), Location: "Downtown Restaurant"},
	}
}
