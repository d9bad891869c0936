package journal

import (
	"fmt"
	"time"

	"github.com/starford/bulletlog/internal/apperr"
)

// DateLayout is the on-disk form of a section date.
const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. Its string form sorts in date order.
type Date string

// ParseDate validates s as a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return "", fmt.Errorf("%w: %q", apperr.ErrInvalidDate, s)
	}
	return Date(s), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) String() string {
	return string(d)
}

// Before reports whether d is an earlier date than o.
func (d Date) Before(o Date) bool {
	return d < o
}
