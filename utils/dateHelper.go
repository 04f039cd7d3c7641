package utils

import (
	"time"
)

// ISODateLayout is the wire format for every date parameter (YYYY-MM-DD).
const ISODateLayout = "2006-01-02"

// ParseISODate parses an inclusive calendar date. Dates are interpreted in UTC;
// the single tenant-wide reporting unit has no timezone of its own.
func ParseISODate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, NewValidationError("date is required")
	}
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return time.Time{}, NewValidationError("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func FormatISODate(t time.Time) string {
	return t.UTC().Format(ISODateLayout)
}

// DaysInclusive counts calendar days between start and end, both included.
func DaysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// EndOfDay returns the last instant of t's calendar day, for closed upper
// bounds on datetime columns.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
