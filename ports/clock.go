package ports

import "time"

// Clock supplies wall-clock "now" so deadline and TTL logic stays testable
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the system clock
func RealClock() Clock { return realClock{} }
