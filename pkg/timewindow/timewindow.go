// Package timewindow turns symbolic report ranges into concrete instants.
package timewindow

import (
	"strings"
	"time"

	"agency-report-service/internal/domain"
)

// Range is a symbolic range selector
type Range string

const (
	Today  Range = "today"
	Week   Range = "week"
	Month  Range = "month"
	Custom Range = "custom"
	All    Range = "all"
)

// DateLayout is the calendar date format accepted for custom bounds
const DateLayout = "2006-01-02"

// Window is an inclusive [Start, End] pair. A zero Start or End is unbounded.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Bounded reports whether the window restricts anything at all
func (w Window) Bounded() bool {
	return !w.Start.IsZero() || !w.End.IsZero()
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// ContainsPtr is Contains for optional timestamps; nil is never inside a
// bounded window.
func (w Window) ContainsPtr(t *time.Time) bool {
	if t == nil {
		return !w.Bounded()
	}
	return w.Contains(*t)
}

// Resolver resolves ranges in a fixed location relative to Now.
type Resolver struct {
	Location *time.Location
	Now      func() time.Time
}

// NewResolver creates a resolver for loc using the wall clock
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{Location: loc, Now: time.Now}
}

// Current returns the resolver's now in its location
func (r *Resolver) Current() time.Time {
	return r.now()
}

// Loc returns the location ranges are resolved in
func (r *Resolver) Loc() *time.Location {
	return r.location()
}

func (r *Resolver) now() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().In(r.location())
}

func (r *Resolver) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Resolve turns a selector plus optional custom dates into a Window.
// Malformed input fails with *domain.InvalidRangeError; nothing is guessed.
func (r *Resolver) Resolve(sel Range, startDate, endDate string) (Window, error) {
	now := r.now()
	switch Range(strings.ToLower(string(sel))) {
	case Today:
		return Window{Start: StartOfDay(now), End: EndOfDay(now)}, nil
	case Week:
		start := StartOfDay(now).AddDate(0, 0, -int(now.Weekday()))
		return Window{Start: start, End: EndOfDay(start.AddDate(0, 0, 6))}, nil
	case Month:
		return CalendarMonth(now, 0), nil
	case All, "":
		return Window{}, nil
	case Custom:
		return r.custom(now, startDate, endDate)
	default:
		return Window{}, domain.NewInvalidRangeError("range", string(sel), "unknown range selector")
	}
}

// Dates resolves an optional pair of calendar dates the way a custom range
// does, returning an unbounded window when both are empty.
func (r *Resolver) Dates(startDate, endDate string) (Window, error) {
	if strings.TrimSpace(startDate) == "" && strings.TrimSpace(endDate) == "" {
		return Window{}, nil
	}
	return r.custom(r.now(), startDate, endDate)
}

func (r *Resolver) custom(now time.Time, startDate, endDate string) (Window, error) {
	startDate = strings.TrimSpace(startDate)
	endDate = strings.TrimSpace(endDate)
	if startDate == "" && endDate == "" {
		return Window{}, domain.NewInvalidRangeError("range", string(Custom), "custom range requires startDate or endDate")
	}

	w := Window{
		Start: time.Unix(0, 0).In(r.location()),
		End:   EndOfDay(now),
	}
	if startDate != "" {
		d, err := time.ParseInLocation(DateLayout, startDate, r.location())
		if err != nil {
			return Window{}, domain.NewInvalidRangeError("startDate", startDate, "expected YYYY-MM-DD")
		}
		w.Start = StartOfDay(d)
	}
	if endDate != "" {
		d, err := time.ParseInLocation(DateLayout, endDate, r.location())
		if err != nil {
			return Window{}, domain.NewInvalidRangeError("endDate", endDate, "expected YYYY-MM-DD")
		}
		w.End = EndOfDay(d)
	}
	if w.Start.After(w.End) {
		return Window{}, domain.NewInvalidRangeError("startDate", startDate, "start is after end")
	}
	return w, nil
}

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// CalendarMonth returns the whole calendar month monthsAgo months before now's month.
func CalendarMonth(now time.Time, monthsAgo int) Window {
	y, m, _ := now.Date()
	first := time.Date(y, m-time.Month(monthsAgo), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return Window{Start: first, End: EndOfDay(last)}
}
