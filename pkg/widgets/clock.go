package widgets

import (
	"context"
	"time"
)

// ClockData is the clock panel.
type ClockData struct {
	Time     string `json:"time"`
	Date     string `json:"date"`
	Timezone string `json:"timezone"`
}

// Clock shows local time, refreshed every second.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a clock for loc. A nil loc uses time.Local.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

func (c *Clock) ID() string              { return "clock" }
func (c *Clock) Interval() time.Duration { return time.Second }

func (c *Clock) Refresh(_ context.Context) (any, error) {
	t := c.now().In(c.loc)
	return ClockData{
		Time:     t.Format("15:04:05"),
		Date:     t.Format("Monday, January 2, 2006"),
		Timezone: c.loc.String(),
	}, nil
}
