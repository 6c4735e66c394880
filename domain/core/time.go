package core

import (
	"time"
)

// UTCDay truncates a time to its UTC calendar day
func UTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameUTCDay reports whether two instants fall on the same UTC calendar day.
// Daily submission caps are defined against UTC days, not local ones.
func SameUTCDay(a, b time.Time) bool {
	return UTCDay(a).Equal(UTCDay(b))
}
