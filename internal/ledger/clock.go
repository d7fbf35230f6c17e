package ledger

import "time"

// Clock supplies the timestamps written into entries.
type Clock interface {
	Now() time.Time
}

// DefaultClock implements the Clock interface using the system clock.
type DefaultClock struct{}

// Now returns the current time.
func (DefaultClock) Now() time.Time {
	return time.Now()
}
