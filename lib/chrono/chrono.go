// Package chrono canonicalizes the date and time strings the schedule
// site renders, which are Russian-locale and carry no year.
package chrono

import (
	"fmt"
	"strings"
	"time"
)

var months = map[string]string{
	"января": "01", "февраля": "02", "марта": "03", "апреля": "04",
	"мая": "05", "июня": "06", "июля": "07", "августа": "08",
	"сентября": "09", "октября": "10", "ноября": "11", "декабря": "12",
}

// Default time range used when a lesson's time cannot be parsed.
const (
	DefaultStartTime = "09:00:00"
	DefaultEndTime   = "10:30:00"
)

// ParseDate converts a source date like "понедельник, 1 сентября" into
// "2006-09-01" using the year of `now`. The source format has no year.
// Dates already in ISO form pass through unchanged, so schedules read
// back from the database parse the same as freshly extracted ones. On
// any structural failure it falls back to today's date and reports
// ok=false; one malformed date must not abort an acquisition.
func ParseDate(raw string, now time.Time) (iso string, ok bool) {
	if _, err := time.Parse(time.DateOnly, raw); err == nil {
		return raw, true
	}

	parts := strings.Split(raw, ",")
	datePart := strings.TrimSpace(parts[len(parts)-1])

	fields := strings.Fields(datePart)
	var day, monthName string
	if len(fields) == 2 {
		day, monthName = fields[0], fields[1]
	} else {
		// alternative layout with the weekday at the end
		datePart = strings.TrimSpace(parts[0])
		fields = strings.Fields(datePart)
		if len(fields) < 2 {
			return now.Format(time.DateOnly), false
		}
		day, monthName = fields[len(fields)-2], fields[len(fields)-1]
	}

	month, found := months[strings.ToLower(monthName)]
	if !found {
		month = "01"
	}
	if len(day) == 1 {
		day = "0" + day
	}

	return fmt.Sprintf("%d-%s-%s", now.Year(), month, day), true
}

var dashReplacer = strings.NewReplacer(" ", "", "–", "-", "—", "-")

// ParseTimeRange converts a source range like "09:00 – 10:30" into
// ("09:00:00", "10:30:00"). The site uses several dash variants, all
// are normalized. On failure it returns the default pair and ok=false.
func ParseTimeRange(raw string) (start, end string, ok bool) {
	normalized := dashReplacer.Replace(raw)

	parts := strings.Split(normalized, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return DefaultStartTime, DefaultEndTime, false
	}

	return parts[0] + ":00", parts[1] + ":00", true
}

// CanonicalTimeRange renders a source time range as the natural-key
// form "HH:MM-HH:MM" stored on lesson occurrences. Unparsable input is
// kept verbatim rather than invented.
func CanonicalTimeRange(raw string) string {
	start, end, ok := ParseTimeRange(raw)
	if !ok {
		return raw
	}
	return strings.TrimSuffix(start, ":00") + "-" + strings.TrimSuffix(end, ":00")
}
