// Package calendar holds the date arithmetic used for daily rates.
//
// A calendar date is represented as a time.Time at midnight UTC so that values
// compare with == and round-trip through Postgres DATE columns unchanged.
package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata" // named zones on hosts without zoneinfo
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date returns the calendar date for year, month and day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf strips the clock from t, keeping the calendar day t has in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// IsWeekend reports whether d falls on Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// PreviousBusinessDay steps back one day from d, then keeps stepping back over weekends.
// Public holidays are not considered.
func PreviousBusinessDay(d time.Time) time.Time {
	prev := DateOf(d).AddDate(0, 0, -1)
	for IsWeekend(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}
