package timestamp

import (
	"fmt"
	"time"
)

const (
	// AccessLayout matches nginx stream access logs, e.g. 10/Oct/2023:13:55:36 +0000.
	AccessLayout = "02/Jan/2006:15:04:05 -0700"
	// ErrorLayout matches nginx error logs, e.g. 2023/10/10 13:55:36. No offset is logged.
	ErrorLayout = "2006/01/02 15:04:05"
	// Canonical is the fixed-width form every record carries.
	Canonical = "20060102150405"
)

// FormatError is returned when a timestamp does not parse under its layout.
type FormatError struct {
	Value  string
	Layout string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("timestamp %q does not match layout %q: %v", e.Value, e.Layout, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Normalize parses value strictly with layout and renders it in Canonical form.
// The instant keeps the offset it was logged with; nothing is converted to UTC or local time.
func Normalize(value, layout string) (string, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return "", &FormatError{Value: value, Layout: layout, Err: err}
	}
	return t.Format(Canonical), nil
}

// ParseCanonical parses a Canonical timestamp back into a time (UTC, wall clock preserved).
func ParseCanonical(s string) (time.Time, error) {
	t, err := time.Parse(Canonical, s)
	if err != nil {
		return time.Time{}, &FormatError{Value: s, Layout: Canonical, Err: err}
	}
	return t, nil
}
