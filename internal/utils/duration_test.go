package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"30s": 30 * time.Second,
		"15m": 15 * time.Minute,
		"2h":  2 * time.Hour,
		"7d":  7 * 24 * time.Hour,
		"1w":  7 * 24 * time.Hour,
		"0s":  0,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseDurationRejects(t *testing.T) {
	for _, in := range []string{"", "5x", "m", "-5m", "1.5h", "5 m", "10mm", "x10m", "99999999999999999999d"} {
		_, err := ParseDuration(in)
		assert.ErrorIs(t, err, ErrInvalidDuration, in)
	}
}

func TestAddDurationRendersInFixedZone(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	at, rendered, err := AddDuration(now, "1h")
	require.NoError(t, err)
	assert.True(t, at.Equal(now.Add(time.Hour)))
	_, offset := at.Zone()
	assert.Equal(t, 7*60*60, offset)
	assert.Equal(t, "2024-01-01 08:00:00.000000", rendered)

	_, _, err = AddDuration(now, "soon")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParseAndAddDurationIsInTheFuture(t *testing.T) {
	before := time.Now()
	at, _, err := ParseAndAddDuration("7d")
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(7*24*time.Hour), at, 5*time.Second)
}
