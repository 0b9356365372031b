package services

import "time"

// Clock supplies the current time to the contract and payment engines.
// Injecting it keeps date-driven logic deterministic under test.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// NewClock returns a clock backed by the system time
func NewClock() Clock {
	return realClock{}
}

// Today truncates the clock's time to midnight UTC. All status and
// due-date comparisons in the engines are date-only.
func Today(clock Clock) time.Time {
	return DateOf(clock.Now())
}

// DateOf truncates a time to its date at midnight UTC
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
