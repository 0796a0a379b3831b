package digest

import "time"

type systemClock struct{}

// Now returns current time.
func (c systemClock) Now() time.Time {
	return time.Now()
}
