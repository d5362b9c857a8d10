package deathindex

import (
	"time"

	"github.com/rotisserie/eris"
)

// DateLayout is the registry's date format (mm/dd/yyyy).
const DateLayout = "01/02/2006"

// DefaultLookbackMonths is how far back the default scan window sits.
// Death records take roughly a quarter to appear in the index.
const DefaultLookbackMonths = 3

// FormatDate renders t as mm/dd/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a mm/dd/yyyy date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "deathindex: parse date %q", s)
	}
	return t, nil
}

// SubtractMonths moves t back by months calendar months. Day overflow
// normalizes forward, so May 31 minus three months is March 3.
func SubtractMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, -months, 0)
}

// Window is an inclusive date-of-death range.
type Window struct {
	From time.Time
	To   time.Time
}

// DefaultWindow returns the single day DefaultLookbackMonths before now.
func DefaultWindow(now time.Time) Window {
	day := SubtractMonths(now, DefaultLookbackMonths)
	return Window{From: day, To: day}
}

// ParseWindow builds a window from mm/dd/yyyy bounds. Empty bounds fall back
// to the default window's day.
func ParseWindow(from, to string, now time.Time) (Window, error) {
	w := DefaultWindow(now)
	if from != "" {
		t, err := ParseDate(from)
		if err != nil {
			return Window{}, err
		}
		w.From = t
	}
	if to != "" {
		t, err := ParseDate(to)
		if err != nil {
			return Window{}, err
		}
		w.To = t
	}
	if w.To.Before(w.From) {
		return Window{}, eris.Errorf("deathindex: window end %s before start %s", FormatDate(w.To), FormatDate(w.From))
	}
	return w, nil
}
