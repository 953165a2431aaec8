package remind

import (
	"fmt"
	"strings"
	"time"
)

// Civil date/time values are zone-naive. They are only ever interpreted
// against the single fixed zone the bot is configured with, so none of these
// types carry a location.

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// Date is a calendar date (no time, no zone).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

// DateOf extracts the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) After(o Date) bool { return o.Before(d) }

// AddDays returns the date n days later, normalized by the stdlib calendar
// (so 2026-01-31 + 1 is 2026-02-01).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// TimeOfDay is a wall-clock time at minute granularity.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts 24h "HH:MM" (a single-digit hour is tolerated,
// matching the original input format). Seconds are not accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	bad := func() (TimeOfDay, error) {
		return TimeOfDay{}, fmt.Errorf("invalid time %q (use HH:MM, 24-hour)", s)
	}
	i := strings.IndexByte(s, ':')
	if i < 1 || i > 2 || len(s)-i-1 != 2 {
		return bad()
	}
	hh, mm := 0, 0
	for _, c := range []byte(s[:i]) {
		if c < '0' || c > '9' {
			return bad()
		}
		hh = hh*10 + int(c-'0')
	}
	for _, c := range []byte(s[i+1:]) {
		if c < '0' || c > '9' {
			return bad()
		}
		mm = mm*10 + int(c-'0')
	}
	if hh > 23 || mm > 59 {
		return bad()
	}
	return TimeOfDay{Hour: hh, Minute: mm}, nil
}

// TimeOfDayOf truncates t to the minute, in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DateTime is a civil date plus minute-granular time.
type DateTime struct {
	Date Date
	Time TimeOfDay
}

func ParseDateTime(s string) (DateTime, error) {
	t, err := time.Parse(dateTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return DateTime{}, fmt.Errorf("invalid date-time %q (use YYYY-MM-DD HH:MM)", s)
	}
	return DateTime{Date: DateOf(t), Time: TimeOfDayOf(t)}, nil
}

// DateTimeOf truncates t to the minute, in t's own location.
func DateTimeOf(t time.Time) DateTime {
	return DateTime{Date: DateOf(t), Time: TimeOfDayOf(t)}
}

func (dt DateTime) String() string {
	return dt.Date.String() + " " + dt.Time.String()
}

func (dt DateTime) After(o DateTime) bool {
	if dt.Date != o.Date {
		return dt.Date.After(o.Date)
	}
	if dt.Time.Hour != o.Time.Hour {
		return dt.Time.Hour > o.Time.Hour
	}
	return dt.Time.Minute > o.Time.Minute
}

func (dt DateTime) MarshalText() ([]byte, error) { return []byte(dt.String()), nil }

func (dt *DateTime) UnmarshalText(b []byte) error {
	v, err := ParseDateTime(string(b))
	if err != nil {
		return err
	}
	*dt = v
	return nil
}
