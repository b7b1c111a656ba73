package common

import "time"

// Clock abstracts time.Now so lockout and rate-limit logic can be tested
// with a deterministic clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var SystemClock Clock = systemClock{}
