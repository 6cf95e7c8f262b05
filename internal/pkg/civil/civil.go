// Package civil supplies "today" as a civil date string in a fixed
// reference timezone. Daily-bonus idempotency is keyed by this string, so
// the whole system must agree on one timezone regardless of where it runs.
package civil

import (
	"fmt"
	"time"
)

// DateFormat is the civil date layout (YYYY-MM-DD).
const DateFormat = "2006-01-02"

// Clock yields civil dates in a fixed timezone.
type Clock struct {
	loc *time.Location
}

// NewClock loads the given IANA timezone, e.g. "America/New_York".
func NewClock(tz string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	return &Clock{loc: loc}, nil
}

// Today returns the current civil date string in the clock's timezone.
func (c *Clock) Today() string {
	return time.Now().In(c.loc).Format(DateFormat)
}

// ValidDate reports whether s is a well-formed civil date string.
func ValidDate(s string) bool {
	_, err := time.Parse(DateFormat, s)
	return err == nil
}
