package intent

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// isoLayouts are tried before free-form parsing; the classifier is asked for
// ISO 8601.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// minDueYear rejects the year-zero times produced by inputs without a year.
const minDueYear = 1970

// ParseDue interprets a model-extracted date string in loc. ok is false for
// empty, partial or unparseable input, in which case the caller uses "now".
func ParseDue(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, t.Year() >= minDueYear
		}
	}
	return parseLoose(s, loc)
}

// parseLoose accepts other complete dates ("March 4, 2026 5:00 pm"). The
// input must name a year, must not be ambiguous between month and day, and
// must read back unchanged through the detected layout so words the layout
// skipped cannot shift the result.
func parseLoose(s string, loc *time.Location) (time.Time, bool) {
	if _, err := dateparse.ParseStrict(s); err != nil {
		return time.Time{}, false
	}
	layout, err := dateparse.ParseFormat(s)
	if err != nil || !strings.Contains(layout, "2006") {
		return time.Time{}, false
	}
	if hasMeridiem(layout) && !strings.Contains(layout, "3") {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil || !strings.EqualFold(t.Format(layout), s) {
		return time.Time{}, false
	}
	if t.Second() != 0 && !strings.Contains(layout, "4:05") {
		return time.Time{}, false
	}
	return t, t.Year() >= minDueYear
}

func hasMeridiem(layout string) bool {
	return strings.Contains(layout, "PM") || strings.Contains(layout, "pm")
}

// DayBounds returns the first and last instant of the calendar day containing
// now, in now's location.
func DayBounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
