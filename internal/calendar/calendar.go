// Package calendar does day-granular date arithmetic for stored due dates.
//
// All values returned by this package are calendar days pinned to midnight UTC,
// so differences between them are whole multiples of 24h regardless of the
// caller's time zone or daylight-saving transitions.
package calendar

import (
	"strings"
	"time"
)

// Layout is the canonical format used when a date is written back to storage.
const Layout = "2006-01-02"

var parseLayouts = []string{
	Layout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02.01.2006",
}

// ParseDay parses s as a calendar date. Time-of-day, if present, is dropped.
// The boolean is false for empty or unparsable input.
func ParseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day returns the calendar date of t, as seen in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from -> to.
// Unix seconds are used because time.Duration overflows past ~292 years.
func DaysBetween(from, to time.Time) int {
	return int((Day(to).Unix() - Day(from).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// AddMonths moves day by the given number of months. When the source
// day-of-month does not exist in the target month it is clamped to the last
// day of that month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(day time.Time, months int) time.Time {
	y, m, d := day.Date()
	total := int(m) - 1 + months
	year := y + floorDiv(total, 12)
	month := time.Month(total-floorDiv(total, 12)*12 + 1)
	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// AddMonthsText is AddMonths over stored text. It reports false when start
// cannot be parsed.
func AddMonthsText(start string, months int) (string, bool) {
	day, ok := ParseDay(start)
	if !ok {
		return "", false
	}
	return Format(AddMonths(day, months)), true
}

// Format renders a day in Layout.
func Format(day time.Time) string {
	return day.Format(Layout)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
