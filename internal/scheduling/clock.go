package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Location is the salon's wall clock: Ecuador, GMT-5, no DST.
var Location = time.FixedZone("ECT", -5*60*60)

const dateLayout = "2006-01-02"

var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Date is a calendar day on the salon's wall clock.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the business-local day an instant falls on.
func DateOf(t time.Time) Date {
	y, m, d := t.In(Location).Date()
	return Date{Year: y, Month: m, Day: d}
}

// CalendarDate reads the fields of a DATE value as they are, without
// converting zones. Postgres DATE columns come back as UTC midnight.
func CalendarDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return CalendarDate(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// At returns the instant at local midnight plus offset.
func (d Date) At(offset time.Duration) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Location).Add(offset)
}

// Start is local midnight of the day.
func (d Date) Start() time.Time {
	return d.At(0)
}

func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, Location))
}

func (d Date) Before(o Date) bool {
	return d.Start().Before(o.Start())
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

// Ordinal is the number of days since 1970-01-01. Stable across zones,
// used as a lock key.
func (d Date) Ordinal() int64 {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DatesBetween lists every day in [from, to]. Empty if to is before from.
func DatesBetween(from, to Date) []Date {
	var days []Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// ParseLocalDateTime parses a wall-clock value as salon time, or an
// RFC3339 value with its own offset. The result is normalized to UTC.
func ParseLocalDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", s)
}

// Local converts an instant to salon time for display.
func Local(t time.Time) time.Time {
	return t.In(Location)
}
