package sla

import (
	"fmt"
	"sort"
	"time"
)

// CalendarConfigError reports an invalid business calendar configuration.
// It is raised at construction/activation time, never mid-calculation.
type CalendarConfigError struct {
	Reason string
}

func (e *CalendarConfigError) Error() string {
	return fmt.Sprintf("invalid calendar configuration: %s", e.Reason)
}

func newCalendarError(format string, args ...any) *CalendarConfigError {
	return &CalendarConfigError{Reason: fmt.Sprintf(format, args...)}
}

// Window is an open interval within one day, in minutes from midnight.
// Close is exclusive and must be greater than Open.
type Window struct {
	OpenMinute  int `json:"open_minute"`
	CloseMinute int `json:"close_minute"`
}

// ParseWindow builds a Window from "HH:MM" open/close strings.
func ParseWindow(open, close string) (Window, error) {
	openMin, err := parseClock(open)
	if err != nil {
		return Window{}, err
	}
	closeMin, err := parseClock(close)
	if err != nil {
		return Window{}, err
	}
	return Window{OpenMinute: openMin, CloseMinute: closeMin}, nil
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, newCalendarError("invalid clock value %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, newCalendarError("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// Holiday is a dated closure in the calendar's timezone. An empty window
// list is a full-day closure; a non-empty list is a partial closure whose
// windows intersect the weekly ones for that date.
type Holiday struct {
	Date    string   `json:"date"` // YYYY-MM-DD
	Name    string   `json:"name,omitempty"`
	Windows []Window `json:"windows,omitempty"`
}

// Calendar is an organization's business-hours definition: a timezone,
// per-weekday open windows and dated holiday overrides. The zero-window
// "24/7" sentinel counts every wall-clock minute.
type Calendar struct {
	id             uint
	sid            string
	organizationID uint
	name           string
	timezone       string
	location       *time.Location
	weekly         map[time.Weekday][]Window
	holidays       map[string]Holiday
	continuous     bool
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewCalendar validates and builds a business calendar. Within a weekday,
// windows must be sorted and non-overlapping, with close strictly after open.
func NewCalendar(
	organizationID uint,
	name string,
	timezone string,
	weekly map[time.Weekday][]Window,
	holidays []Holiday,
) (*Calendar, error) {
	if organizationID == 0 {
		return nil, fmt.Errorf("organization ID is required")
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("name is required")
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, newCalendarError("unknown timezone %q", timezone)
	}

	total := 0
	normalized := make(map[time.Weekday][]Window, len(weekly))
	for day, windows := range weekly {
		if len(windows) == 0 {
			continue
		}
		sorted := make([]Window, len(windows))
		copy(sorted, windows)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].OpenMinute < sorted[j].OpenMinute })
		for i, w := range sorted {
			if err := validateWindow(w); err != nil {
				return nil, err
			}
			if i > 0 && w.OpenMinute < sorted[i-1].CloseMinute {
				return nil, newCalendarError("%s windows overlap: %02d:%02d before previous close",
					day, w.OpenMinute/60, w.OpenMinute%60)
			}
		}
		normalized[day] = sorted
		total += len(sorted)
	}
	if total == 0 {
		return nil, newCalendarError("calendar has no open windows")
	}

	holidayIndex := make(map[string]Holiday, len(holidays))
	for _, h := range holidays {
		if _, err := time.ParseInLocation("2006-01-02", h.Date, location); err != nil {
			return nil, newCalendarError("invalid holiday date %q", h.Date)
		}
		for _, w := range h.Windows {
			if err := validateWindow(w); err != nil {
				return nil, err
			}
		}
		holidayIndex[h.Date] = h
	}

	now := time.Now().UTC()
	return &Calendar{
		organizationID: organizationID,
		name:           name,
		timezone:       timezone,
		location:       location,
		weekly:         normalized,
		holidays:       holidayIndex,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// NewContinuousCalendar returns the 24/7 sentinel: every minute counts.
func NewContinuousCalendar(organizationID uint) *Calendar {
	now := time.Now().UTC()
	return &Calendar{
		organizationID: organizationID,
		name:           "24/7",
		timezone:       "UTC",
		location:       time.UTC,
		continuous:     true,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}
}

func validateWindow(w Window) error {
	if w.OpenMinute < 0 || w.CloseMinute > 24*60 {
		return newCalendarError("window %d-%d out of day range", w.OpenMinute, w.CloseMinute)
	}
	if w.CloseMinute <= w.OpenMinute {
		return newCalendarError("window close %d not after open %d", w.CloseMinute, w.OpenMinute)
	}
	return nil
}

func ReconstructCalendar(
	id uint,
	sid string,
	organizationID uint,
	name string,
	timezone string,
	weekly map[time.Weekday][]Window,
	holidays []Holiday,
	continuous bool,
	version int,
	createdAt, updatedAt time.Time,
) (*Calendar, error) {
	if id == 0 {
		return nil, fmt.Errorf("calendar ID cannot be zero")
	}
	var cal *Calendar
	if continuous {
		cal = NewContinuousCalendar(organizationID)
	} else {
		rebuilt, err := NewCalendar(organizationID, name, timezone, weekly, holidays)
		if err != nil {
			return nil, err
		}
		cal = rebuilt
	}
	cal.id = id
	cal.sid = sid
	cal.name = name
	cal.version = version
	cal.createdAt = createdAt
	cal.updatedAt = updatedAt
	return cal, nil
}

func (c *Calendar) ID() uint              { return c.id }
func (c *Calendar) SID() string           { return c.sid }
func (c *Calendar) OrganizationID() uint  { return c.organizationID }
func (c *Calendar) Name() string          { return c.name }
func (c *Calendar) Timezone() string      { return c.timezone }
func (c *Calendar) Location() *time.Location { return c.location }
func (c *Calendar) IsContinuous() bool    { return c.continuous }
func (c *Calendar) Version() int          { return c.version }
func (c *Calendar) CreatedAt() time.Time  { return c.createdAt }
func (c *Calendar) UpdatedAt() time.Time  { return c.updatedAt }

func (c *Calendar) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("calendar ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("calendar ID cannot be zero")
	}
	c.id = id
	return nil
}

func (c *Calendar) SetSID(sid string) error {
	if len(c.sid) > 0 {
		return fmt.Errorf("calendar SID is already set")
	}
	if len(sid) == 0 {
		return fmt.Errorf("calendar SID cannot be empty")
	}
	c.sid = sid
	return nil
}

// WeeklyWindows returns a copy of the configured windows for persistence.
func (c *Calendar) WeeklyWindows() map[time.Weekday][]Window {
	out := make(map[time.Weekday][]Window, len(c.weekly))
	for day, windows := range c.weekly {
		ws := make([]Window, len(windows))
		copy(ws, windows)
		out[day] = ws
	}
	return out
}

// Holidays returns a copy of the configured holidays for persistence.
func (c *Calendar) Holidays() []Holiday {
	out := make([]Holiday, 0, len(c.holidays))
	for _, h := range c.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// effectiveWindows resolves the open windows for one date: the weekday's
// windows minus any holiday override. A full-day holiday removes all
// windows; a partial holiday intersects them.
func (c *Calendar) effectiveWindows(date time.Time) []Window {
	weekday := date.Weekday()
	windows := c.weekly[weekday]
	holiday, isHoliday := c.holidays[date.Format("2006-01-02")]
	if !isHoliday {
		return windows
	}
	if len(holiday.Windows) == 0 {
		return nil
	}
	var out []Window
	for _, w := range windows {
		for _, hw := range holiday.Windows {
			open := max(w.OpenMinute, hw.OpenMinute)
			close := min(w.CloseMinute, hw.CloseMinute)
			if close > open {
				out = append(out, Window{OpenMinute: open, CloseMinute: close})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenMinute < out[j].OpenMinute })
	return out
}
