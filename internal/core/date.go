package core

import (
	"strings"
	"time"
)

// DateLayout is the yyyy-MM-dd layout used by imports, templates and storage.
const DateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day of t, keeping the calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a yyyy-MM-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Today returns the calendar date of now in the local time zone.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return DateOf(now())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// MinusMonths steps back n calendar months, clamping the day to the end of the
// target month (2024-03-31 minus one month is 2024-02-29).
func (d Date) MinusMonths(n int) Date {
	y, m, day := d.Date()
	total := y*12 + int(m) - 1 - n
	ty, tm := total/12, total%12+1
	if last := daysIn(ty, tm); day > last {
		day = last
	}
	return NewDate(ty, tm, day)
}

// AddDays moves the date by n days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
