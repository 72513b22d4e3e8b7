package effects

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

type TimeSpan = timespan.TimeSpan

func NewTimeSpan(from, to time.Time) TimeSpan {
	return timespan.BetweenTimes(from, to)
}

// timed calls f and returns the span of wall time it took according to now.
func timed(now func() time.Time, f func()) TimeSpan {
	from := now()
	f()
	return NewTimeSpan(from, now())
}
