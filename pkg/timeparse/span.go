package timeparse

import "time"

// span is a signed span of time with one-second precision and checked,
// non-wrapping arithmetic. The zero value is the empty span.
type span struct {
	secs int64
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerWeek   = 7 * secondsPerDay
)

// spanOf builds a span of n units of unitSecs seconds each, failing on
// overflow.
func spanOf(n, unitSecs int64) (span, bool) {
	secs, ok := mulInt64(n, unitSecs)
	return span{secs: secs}, ok
}

// IsZero reports whether the span is empty.
func (s span) IsZero() bool { return s.secs == 0 }

// Seconds returns the span as a number of seconds.
func (s span) Seconds() int64 { return s.secs }

// Add returns the checked sum of two spans; ok is false on overflow.
func (s span) Add(o span) (span, bool) {
	secs, ok := addInt64(s.secs, o.secs)
	return span{secs: secs}, ok
}

// Duration converts the span to a time.Duration; ok is false when the span
// exceeds the representable nanosecond range.
func (s span) Duration() (time.Duration, bool) {
	secs, ok := mulInt64(s.secs, int64(time.Second))
	return time.Duration(secs), ok
}

func addInt64(a, b int64) (int64, bool) {
	c := a + b
	if (a > 0 && b > 0 && c < 0) || (a < 0 && b < 0 && c >= 0) {
		return 0, false
	}
	return c, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}
