package timeutils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Status int

const (
	StatusParsed Status = iota
	StatusMissing
	StatusInvalid
)

// maxEpochMillis bounds epoch timestamps to the range a JavaScript Date holds.
const maxEpochMillis = 8.64e15

// Accepted string layouts, tried in order
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a raw timestamp value into a time. Numbers and numeric
// strings are epoch milliseconds. When the value is missing or cannot be parsed
// now is returned along with the matching status.
func Normalize(v any, now time.Time) (time.Time, Status) {
	switch t := v.(type) {
	case nil:
		return now, StatusMissing
	case float64:
		return fromMillis(t, now)
	case int:
		return fromMillis(float64(t), now)
	case int64:
		return fromMillis(float64(t), now)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return now, StatusMissing
		}
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), StatusParsed
			}
		}
		if ms, err := strconv.ParseFloat(s, 64); err == nil {
			return fromMillis(ms, now)
		}
		return now, StatusInvalid
	case time.Time:
		return checkYear(t.UTC(), now)
	default:
		return now, StatusInvalid
	}
}

func fromMillis(ms float64, now time.Time) (time.Time, Status) {
	if math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
		return now, StatusInvalid
	}
	return checkYear(time.UnixMilli(int64(ms)).UTC(), now)
}

// checkYear rejects times that have no four-digit ISO-8601 year.
func checkYear(t, now time.Time) (time.Time, Status) {
	if y := t.Year(); y < 0 || y > 9999 {
		return now, StatusInvalid
	}
	return t, StatusParsed
}

// Format renders t as a UTC ISO-8601 string with millisecond precision.
func Format(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
