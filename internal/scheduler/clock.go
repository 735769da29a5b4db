package scheduler

import "time"

// Clock reads wall-clock time. Injected so tests can pin the minute.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real local-time clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// MinuteOf formats t as the zero-padded 24-hour "HH:MM" string reminders use.
func MinuteOf(t time.Time) string {
	return t.Format("15:04")
}
