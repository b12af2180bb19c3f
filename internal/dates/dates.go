// Package dates converts free-text date fragments from event cards into
// absolute timestamps. The conversion is best-effort: ambiguous or
// non-English text falls back to the capture time rather than failing.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthDayPattern = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})\b`)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Layouts tried after the month-day heuristic, most specific first.
var layouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2 January 2006",
	"January 2, 2006",
	"02/01/2006",
}

// Normalize converts a free-text date string into an absolute timestamp.
// It tries a "Month Day" token first ("Sat, Jun 14" style), then a fixed
// set of layouts, and returns now when nothing matches.
func Normalize(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}

	if m := monthDayPattern.FindStringSubmatch(raw); m != nil {
		month := months[strings.ToLower(m[1])]
		day, err := strconv.Atoi(m[2])
		if err == nil && day >= 1 && day <= 31 {
			t := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
			// Cards list upcoming events; a date that already passed
			// this year rolls into the next.
			if t.Before(now.AddDate(0, 0, -1)) {
				t = t.AddDate(1, 0, 0)
			}
			// Reject overflow like "Feb 31" normalizing into March.
			if t.Month() == month {
				return t
			}
		}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	return now
}
