package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-day layout used for keys and file names.
const DateLayout = "20060102"

// Date is a calendar day in canonical YYYYMMDD form.
// Lexical order of valid dates is chronological order.
type Date string

// ParseDate normalizes YYYYMMDD, YYYY-MM-DD and YYYY/MM/DD inputs, with or
// without a trailing time part, into a Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	var digits string
	switch {
	case len(s) >= 10 && (s[4] == '-' || s[4] == '/') && s[7] == s[4]:
		digits = s[0:4] + s[5:7] + s[8:10]
	case len(s) >= 8:
		digits = s[:8]
	default:
		return "", fmt.Errorf("invalid date %q", s)
	}

	t, err := time.Parse(DateLayout, digits)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns midnight UTC of the day. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// IsZero reports whether no date is set.
func (d Date) IsZero() bool {
	return d == ""
}

// Valid reports whether d is a well-formed calendar day.
func (d Date) Valid() bool {
	if len(d) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) String() string {
	return string(d)
}

