// Package duration converts human-readable duration strings such as "15m",
// "24h" or "2 days" into time.Duration values and back.
package duration

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxInputLength bounds the accepted input to keep the regexp cheap.
const maxInputLength = 100

// Calendar units that time.Duration does not define.
const (
	day  = 24 * time.Hour
	week = 7 * day
	year = 365*day + 6*time.Hour
)

// ErrInvalidDuration is the sentinel wrapped by every ParseError.
var ErrInvalidDuration = errors.New("invalid duration")

// ParseError reports a duration string that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid duration %q: expected a number followed by a unit (e.g. 15m, 24h, 5s)", e.Input)
	}
	return fmt.Sprintf("invalid duration %q: %s", e.Input, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidDuration).
func (e *ParseError) Unwrap() error {
	return ErrInvalidDuration
}

//nolint:gochecknoglobals // Compiled once; read-only.
var pattern = regexp.MustCompile(
	`(?i)^(-?(?:\d+)?\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`,
)

// Parse converts s into a time.Duration.
//
// The accepted form is an optionally signed decimal number followed by an
// optional unit; a bare number is read as milliseconds. Compound Go
// durations such as "1h30m" are accepted as well.
func Parse(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &ParseError{Input: s, Reason: "empty value"}
	}
	if len(trimmed) > maxInputLength {
		return 0, &ParseError{Input: s, Reason: fmt.Sprintf("longer than %d characters", maxInputLength)}
	}

	match := pattern.FindStringSubmatch(trimmed)
	if match == nil {
		if d, err := time.ParseDuration(trimmed); err == nil {
			return d, nil
		}
		return 0, &ParseError{Input: s}
	}

	n, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, &ParseError{Input: s, Reason: err.Error()}
	}

	v := n * float64(unitOf(match[2]))
	if math.Abs(v) >= math.MaxInt64 {
		return 0, &ParseError{Input: s, Reason: "out of range"}
	}
	return time.Duration(v), nil
}

// Milliseconds parses s and returns the interval in whole milliseconds.
func Milliseconds(s string) (int64, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return d.Milliseconds(), nil
}

// ParsePositive parses s and rejects zero or negative intervals.
func ParsePositive(s string) (time.Duration, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, &ParseError{Input: s, Reason: "must be greater than zero"}
	}
	return d, nil
}

func unitOf(u string) time.Duration {
	switch strings.ToLower(u) {
	case "y", "yr", "yrs", "year", "years":
		return year
	case "w", "week", "weeks":
		return week
	case "d", "day", "days":
		return day
	case "h", "hr", "hrs", "hour", "hours":
		return time.Hour
	case "m", "min", "mins", "minute", "minutes":
		return time.Minute
	case "s", "sec", "secs", "second", "seconds":
		return time.Second
	default:
		return time.Millisecond
	}
}

// Format renders d so that Parse(Format(d)) == d. Whole days use the
// day unit; anything else is the Go form without zero trailing components.
// Examples: "750ms", "1m30s", "2h30m", "74h", "3d".
func Format(d time.Duration) string {
	if d < 0 {
		return "-" + Format(-d)
	}
	if d == 0 {
		return "0s"
	}
	if d%day == 0 {
		return fmt.Sprintf("%dd", d/day)
	}
	out := d.String()
	if strings.HasSuffix(out, "m0s") {
		out = strings.TrimSuffix(out, "0s")
	}
	if strings.HasSuffix(out, "h0m") {
		out = strings.TrimSuffix(out, "0m")
	}
	return out
}
