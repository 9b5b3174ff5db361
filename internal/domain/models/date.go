package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date used to key ledger days.
const DateLayout = "2006-01-02"

// ParseDate validates a YYYY-MM-DD string and returns it in canonical form.
func ParseDate(value string) (string, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return "", fmt.Errorf("date %q must be formatted as YYYY-MM-DD", value)
	}
	return t.Format(DateLayout), nil
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}
