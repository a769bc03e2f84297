package application

import "time"

// Clock supplies the current time to the service.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock in the local time zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Useful for seeding and tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
