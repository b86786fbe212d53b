// Package temporal provides wallclock-preserving wrappers for date, time,
// and timestamp values read from the warehouse. A value captured under one
// session timezone renders the same clock reading wherever it is later
// printed, instead of shifting into the process's local zone.
package temporal

import (
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	timestampLayout = "2006-01-02 15:04:05"
)

// Date is a calendar date captured together with the zone it was read
// under. With wallclock rendering on, String yields the date as observed in
// the captured zone; off, it falls back to the process-local zone.
type Date struct {
	instant   time.Time
	loc       *time.Location
	wallclock bool
}

// NewDate wraps instant with the zone it was captured under. A nil loc
// disables wallclock rendering.
func NewDate(instant time.Time, loc *time.Location, wallclock bool) Date {
	return Date{instant: instant, loc: loc, wallclock: wallclock && loc != nil}
}

// Time returns the underlying instant.
func (d Date) Time() time.Time { return d.instant }

// Wallclock reports whether the value renders in its captured zone.
func (d Date) Wallclock() bool { return d.wallclock }

func (d Date) String() string {
	return d.render().Format(dateLayout)
}

func (d Date) render() time.Time {
	if d.wallclock {
		return d.instant.In(d.loc)
	}
	return d.instant.In(time.Local)
}

// Time is a time-of-day value captured together with its sub-second
// precision and the zone it was read under.
type Time struct {
	instant   time.Time
	nanos     int
	loc       *time.Location
	wallclock bool
}

// NewTime wraps instant with nanos of sub-second precision and the zone it
// was captured under. A nil loc disables wallclock rendering.
func NewTime(instant time.Time, nanos int, loc *time.Location, wallclock bool) Time {
	return Time{instant: instant, nanos: nanos, loc: loc, wallclock: wallclock && loc != nil}
}

// Time returns the underlying instant.
func (t Time) Time() time.Time { return t.instant }

// Wallclock reports whether the value renders in its captured zone.
func (t Time) Wallclock() bool { return t.wallclock }

func (t Time) String() string {
	return t.render().Format(timeLayout) + formatFraction(t.nanos)
}

func (t Time) render() time.Time {
	if t.wallclock {
		return t.instant.In(t.loc)
	}
	return t.instant.In(time.Local)
}

// Timestamp is a zone-less timestamp captured together with its sub-second
// precision and the zone it was read under.
type Timestamp struct {
	instant   time.Time
	nanos     int
	loc       *time.Location
	wallclock bool
}

// NewTimestamp wraps instant with nanos of sub-second precision and the
// zone it was captured under. A nil loc disables wallclock rendering.
func NewTimestamp(instant time.Time, nanos int, loc *time.Location, wallclock bool) Timestamp {
	return Timestamp{instant: instant, nanos: nanos, loc: loc, wallclock: wallclock && loc != nil}
}

// Time returns the underlying instant.
func (ts Timestamp) Time() time.Time { return ts.instant }

// Wallclock reports whether the value renders in its captured zone.
func (ts Timestamp) Wallclock() bool { return ts.wallclock }

func (ts Timestamp) String() string {
	return ts.render().Format(timestampLayout) + formatFraction(ts.nanos)
}

func (ts Timestamp) render() time.Time {
	if ts.wallclock {
		return ts.instant.In(ts.loc)
	}
	return ts.instant.In(time.Local)
}

// formatFraction renders a sub-second fraction with trailing zeros
// suppressed. An all-zero fraction renders nothing at all, not ".0".
func formatFraction(nanos int) string {
	if nanos <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('.')
	scale := 100000000
	for scale > 0 && nanos > 0 {
		digit := nanos / scale
		b.WriteByte(byte('0' + digit))
		nanos -= digit * scale
		scale /= 10
	}
	return b.String()
}
