package retry

import "time"

// Clock abstracts wall-clock reads so time-budgeted retries are testable
// without real delays.
type Clock interface {
	// Now reports the current time.
	Now() time.Time
}

// SystemClock reads time from the operating system.
type SystemClock struct{}

// Now implements Clock using time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}
