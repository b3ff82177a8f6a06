// Package dateutils provides the date layouts and conversions used by the payout report.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts used throughout the application.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutUS       = "01/02/2006"
	DateTimeLayoutISO  = "2006-01-02T15:04:05"
	DateTimeLayoutFull = "2006-01-02 15:04:05"
	// TimestampLayout is used in generated report filenames (MM-dd-yyyy_HHmmss).
	TimestampLayout = "01-02-2006_150405"
)

// dateTimeFormats are tried in order by ParseDateTime.
var dateTimeFormats = []string{
	DateTimeLayoutISO,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
	DateTimeLayoutFull,
	DateLayoutISO,
}

// ParseDateTime parses an ISO date-time boundary such as "2024-01-01T00:00:00".
// A bare ISO date is accepted as midnight. Times without a zone are UTC.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date-time: %q", value)
}

// ParseISODate parses "2006-01-02", also accepting a date-time whose first ten
// characters are an ISO date.
func ParseISODate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(DateLayoutISO) {
		value = value[:len(DateLayoutISO)]
	}
	t, err := time.Parse(DateLayoutISO, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %q", value)
	}
	return t, nil
}

// ToUSDate converts an ISO source date to MM/DD/YYYY. Unparseable input yields "".
func ToUSDate(value string) string {
	t, err := ParseISODate(value)
	if err != nil {
		return ""
	}
	return t.Format(DateLayoutUS)
}

// FormatUS formats t as MM/DD/YYYY; the zero time yields "".
func FormatUS(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayoutUS)
}

// Year returns the year of an ISO source date as a string, "" when unparseable.
func Year(value string) string {
	t, err := ParseISODate(value)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d", t.Year())
}

// StartOfDay drops the clock part of t, keeping its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CompareDates compares the calendar days of two times and returns -1, 0 or 1.
func CompareDates(date1, date2 time.Time) int {
	d1 := time.Date(date1.Year(), date1.Month(), date1.Day(), 0, 0, 0, 0, time.UTC)
	d2 := time.Date(date2.Year(), date2.Month(), date2.Day(), 0, 0, 0, 0, time.UTC)

	switch {
	case d1.Before(d2):
		return -1
	case d1.After(d2):
		return 1
	default:
		return 0
	}
}

// Timestamp renders t for report filenames.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
