package model

import (
	"fmt"
	"time"
)

// DateLayout is the layout of calendar date fields.
const DateLayout = "2006-01-02"

// TimestampLayout is the layout of modification stamps.
const TimestampLayout = time.RFC3339

// FormatDate renders t as a calendar date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTimestamp renders t as a UTC modification stamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// AddDays returns the calendar date days after date.
func AddDays(date string, days uint32) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, int(days)).Format(DateLayout), nil
}

// ParseDate parses a calendar date field.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
