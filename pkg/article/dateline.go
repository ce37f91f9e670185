package article

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	// ErrNaiveDate marks a date without a resolvable timezone.
	ErrNaiveDate = errors.New("date has no resolvable timezone")
	// ErrEmptyDate marks a blank date string.
	ErrEmptyDate = errors.New("date is empty")
)

// EasternTime is the fixed offset used for a bare "ET" dateline suffix.
// Daylight saving is deliberately not modelled.
var EasternTime = time.FixedZone("ET", -4*60*60)

// zoneTokens are the trailing tokens resolved to a location. ET is the only
// abbreviation the wire uses; UTC, GMT and Z are unambiguous.
var zoneTokens = map[string]*time.Location{
	"ET":  EasternTime,
	"UTC": time.UTC,
	"GMT": time.UTC,
	"Z":   time.UTC,
}

// Layouts seen on press-wire datelines, tried before the generic parser.
var datelineLayouts = []string{
	"Jan 2, 2006, 15:04",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006, 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006, 15:04",
	"January 2, 2006 15:04",
	"January 2, 2006, 3:04 PM",
	"January 2, 2006 3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05Z07:00",
}

var numericOffset = regexp.MustCompile(`(?:^|[\dT\s])[+-]\d{2}:?\d{2}$`)

// ParseDateline resolves a human dateline such as "June 13, 2023 9:05 AM ET"
// to an absolute instant. Values without a resolvable zone fail with
// ErrNaiveDate; unknown zone abbreviations are treated as naive.
func ParseDateline(raw string) (time.Time, error) {
	s := cleanText(raw)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}

	if t, ok := parseISO(s); ok {
		return t, nil
	}

	fields := strings.Fields(s)
	if loc, ok := zoneTokens[fields[len(fields)-1]]; ok && len(fields) > 1 {
		body := strings.TrimRight(strings.Join(fields[:len(fields)-1], " "), ", ")
		return parseInZone(body, loc)
	}

	if numericOffset.MatchString(s) {
		return parseWithOffset(s)
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrNaiveDate, s)
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseInZone(body string, loc *time.Location) (time.Time, error) {
	for _, layout := range datelineLayouts {
		if t, err := time.ParseInLocation(layout, body, loc); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(body, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", body, err)
	}
	return t, nil
}

func parseWithOffset(s string) (time.Time, error) {
	for _, layout := range datelineLayouts {
		for _, suffix := range []string{" -0700", " -07:00"} {
			if t, err := time.Parse(layout+suffix, s); err == nil {
				return t, nil
			}
		}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
