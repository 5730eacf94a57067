package clock

import "time"

// Clock supplies wall-clock time for auction expiry checks. Injected so the
// expiry rules are testable without sleeping.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock in UTC.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now().UTC()
}
