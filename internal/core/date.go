package core

import (
	"encoding/json"
	"time"
)

// DateFormat is the ISO-8601 day format used everywhere a date crosses a
// serialization boundary.
const DateFormat = "2006-01-02"

// Date is a calendar day with no time-of-day component. The zero value is
// invalid and reads as "no date" in optional filter fields.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date in UTC.
func Today() Date { return NewDate(time.Now().UTC().Date()) }

// ParseDate parses an ISO-8601 day string such as "2024-01-15".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return NewDate(t.Date()), nil
}

// MustParseDate is ParseDate panicking on error, for tests and literals.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

func (d Date) After(x Date) bool { return d.time().After(x.time()) }

func (d Date) Year() int { return d.y }

func (d Date) Month() time.Month { return d.m }

func (d Date) Day() int { return d.d }

func (d Date) String() string { return d.time().Format(DateFormat) }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
