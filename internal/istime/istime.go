// Package istime centralizes the fixed IST (UTC+05:30) time discipline:
// every comparison the allocator makes ("is this
// transaction after last sync", "what urgency is this deadline", "what
// calendar day is today for streaks") happens in IST, never in the server's
// local time or raw UTC.
package istime

import "time"

// Zone is the fixed India Standard Time offset. It is deliberately not
// configurable.
var Zone = time.FixedZone("IST", 5*60*60+30*60)

// Now returns the current instant rendered in IST.
func Now() time.Time {
	return time.Now().In(Zone)
}

// In converts a naive-UTC or any other zoned timestamp into IST. Storage
// timestamps are assumed UTC.
func In(t time.Time) time.Time {
	return t.In(Zone)
}

// Today returns the current IST calendar day at midnight.
func Today() time.Time {
	return StartOfDay(Now())
}

// StartOfDay truncates t (converted to IST) to 00:00:00 IST.
func StartOfDay(t time.Time) time.Time {
	ist := In(t)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, Zone)
}

// SameDay reports whether a and b fall on the same IST calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// IsYesterday reports whether t's IST calendar day is exactly one day
// before reference's IST calendar day.
func IsYesterday(t, reference time.Time) bool {
	return StartOfDay(reference).AddDate(0, 0, -1).Equal(StartOfDay(t))
}

// DaysBetween returns the number of whole IST calendar days from a to b
// (b - a), negative if b is before a.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}
