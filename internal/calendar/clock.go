package calendar

import "time"

// Clock supplies "today". Handlers and services take one so tests can pin it.
type Clock interface {
	Today() Date
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() Date

func (f ClockFunc) Today() Date { return f() }

// SystemClock reports the current UTC calendar day.
func SystemClock() Clock {
	return ClockFunc(func() Date { return FromTime(time.Now().UTC()) })
}

// Fixed always reports d.
func Fixed(d Date) Clock {
	return ClockFunc(func() Date { return d })
}
