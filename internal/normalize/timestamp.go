package normalize

import (
	"fmt"
	"strings"
	"time"
)

// Patterns are tried in order and the first one that parses the whole cell
// wins. Day-month-year comes first: the exports this pipeline was built for
// are Brazilian broker logs, so "01/02/2024" is the 1st of February.
var dateTimePatterns = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 03:04:05 PM",
	"02/01/2006 03:04 PM",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

var datePatterns = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"2006/01/02",
	"01/02/2006",
}

var timePatterns = []string{
	"15:04:05",
	"15:04",
	"03:04:05 PM",
	"03:04 PM",
}

// ParseTimestamp converts one combined date-time cell (or a date-only cell,
// which defaults to midnight) into a canonical point in time.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp value")
	}

	for _, pattern := range dateTimePatterns {
		if t, err := time.Parse(pattern, s); err == nil {
			return t, nil
		}
	}
	for _, pattern := range datePatterns {
		if t, err := time.Parse(pattern, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparsable timestamp %q", raw)
}

// ParseSplitTimestamp combines separate date and time cells. An empty time
// cell leaves the timestamp at the start of day.
func ParseSplitTimestamp(dateRaw, timeRaw string) (time.Time, error) {
	d, err := ParseTimestamp(dateRaw)
	if err != nil {
		return time.Time{}, err
	}

	ts := strings.TrimSpace(timeRaw)
	if ts == "" {
		return d, nil
	}

	for _, pattern := range timePatterns {
		if t, err := time.Parse(pattern, ts); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, d.Location()), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparsable time of day %q", timeRaw)
}
