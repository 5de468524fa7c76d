package duration

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "minutes", input: "15m", want: 15 * time.Minute},
		{name: "hours", input: "24h", want: 24 * time.Hour},
		{name: "seconds", input: "5s", want: 5 * time.Second},
		{name: "days", input: "2d", want: 48 * time.Hour},
		{name: "weeks", input: "1w", want: 7 * 24 * time.Hour},
		{name: "long unit with space", input: "2 days", want: 48 * time.Hour},
		{name: "upper case", input: "10M", want: 10 * time.Minute},
		{name: "bare number is milliseconds", input: "100", want: 100 * time.Millisecond},
		{name: "fraction", input: "1.5h", want: 90 * time.Minute},
		{name: "leading dot", input: ".5s", want: 500 * time.Millisecond},
		{name: "milliseconds", input: "250ms", want: 250 * time.Millisecond},
		{name: "negative", input: "-1s", want: -time.Second},
		{name: "compound go duration", input: "1h30m", want: 90 * time.Minute},
		{name: "surrounding whitespace", input: "  3h ", want: 3 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"bad", "", "   ", "15 parsecs", "m15", strings.Repeat("1", 101)} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDuration)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, input, parseErr.Input)
		})
	}
}

func TestMilliseconds(t *testing.T) {
	ms, err := Milliseconds("15m")
	require.NoError(t, err)
	assert.Equal(t, int64(900000), ms)

	ms, err = Milliseconds("24h")
	require.NoError(t, err)
	assert.Equal(t, int64(86400000), ms)

	_, err = Milliseconds("bad")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParsePositive(t *testing.T) {
	d, err := ParsePositive("1s")
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	_, err = ParsePositive("0s")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ParsePositive("-5m")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParse_OutOfRange(t *testing.T) {
	for _, input := range []string{"300y", "1000000y", "99999999999999999999", "-300y"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "out of range", parseErr.Reason)

			_, err = Milliseconds(input)
			assert.ErrorIs(t, err, ErrInvalidDuration)
		})
	}

	_, err := Parse("290y")
	assert.NoError(t, err, "largest year count that fits")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0s"},
		{in: 750 * time.Millisecond, want: "750ms"},
		{in: 30 * time.Second, want: "30s"},
		{in: 90 * time.Second, want: "1m30s"},
		{in: 5 * time.Minute, want: "5m"},
		{in: 2 * time.Hour, want: "2h"},
		{in: 2*time.Hour + 30*time.Minute, want: "2h30m"},
		{in: time.Hour + 5*time.Second, want: "1h0m5s"},
		{in: 72 * time.Hour, want: "3d"},
		{in: 74 * time.Hour, want: "74h"},
		{in: -time.Second, want: "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Format(tt.in)
			assert.Equal(t, tt.want, got)

			parsed, err := Parse(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in, parsed)
		})
	}
}
