// Package dates normalizes caller-supplied dates into the full
// timestamp format the backend expects.
//
// The backend's sprint endpoints require YYYY-MM-DDTHH:MM:SS, but a
// caller (human or agent) naturally supplies calendar dates. A range
// start defaults to the first second of the day and a range end to the
// last, so that "sprint ends on 2024-06-30" compares correctly against
// timestamp-typed fields.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date convenience format accepted
	// from callers.
	DateLayout = "2006-01-02"

	// TimestampLayout is the wire format for all date fields.
	TimestampLayout = "2006-01-02T15:04:05"

	startOfDay = "T00:00:00"
	endOfDay   = "T23:59:59"
)

// ErrEndNotAfterStart rejects ranges where the end boundary does not
// strictly follow the start. Equal timestamps are invalid, not just
// inverted ones.
var ErrEndNotAfterStart = errors.New("end date must be after start date")

// NormalizeStart converts a date-only string into a full timestamp at
// the start of that day. Already-complete timestamps pass through
// unchanged (idempotent).
func NormalizeStart(s string) (string, error) {
	return normalize(s, startOfDay)
}

// NormalizeEnd converts a date-only string into a full timestamp at
// the end of that day. Already-complete timestamps pass through
// unchanged (idempotent).
func NormalizeEnd(s string) (string, error) {
	return normalize(s, endOfDay)
}

func normalize(s, suffix string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(TimestampLayout, s); err == nil {
		return s, nil
	}
	if _, err := time.Parse(DateLayout, s); err == nil {
		return s + suffix, nil
	}
	return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS", s)
}

// NormalizeRange normalizes a start/end pair and validates it.
// Identical raw inputs are rejected outright because a range needs two
// distinct boundaries even before boundary-time defaults are applied,
// so "2024-01-15".."2024-01-15" fails rather than silently becoming a
// 24-hour sprint.
func NormalizeRange(start, end string) (string, string, error) {
	if strings.TrimSpace(start) == strings.TrimSpace(end) {
		return "", "", ErrEndNotAfterStart
	}
	normStart, err := NormalizeStart(start)
	if err != nil {
		return "", "", err
	}
	normEnd, err := NormalizeEnd(end)
	if err != nil {
		return "", "", err
	}
	if err := ValidateRange(normStart, normEnd); err != nil {
		return "", "", err
	}
	return normStart, normEnd, nil
}

// ValidateRange checks that end is strictly after start. Both inputs
// must already be normalized timestamps.
func ValidateRange(start, end string) error {
	startT, err := time.Parse(TimestampLayout, start)
	if err != nil {
		return fmt.Errorf("invalid start timestamp %q: %w", start, err)
	}
	endT, err := time.Parse(TimestampLayout, end)
	if err != nil {
		return fmt.Errorf("invalid end timestamp %q: %w", end, err)
	}
	if !endT.After(startT) {
		return ErrEndNotAfterStart
	}
	return nil
}
