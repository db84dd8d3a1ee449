package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDuration is returned for strings that are not <integer><unit>
// with unit one of s, m, h, d or w.
var ErrInvalidDuration = errors.New("invalid duration")

// ExpiryLayout renders timestamps with microsecond resolution.
const ExpiryLayout = "2006-01-02 15:04:05.000000"

// ExpiryZone is the fixed zone expiry timestamps are rendered in.  Cambodia
// observes UTC+7 all year, so a fixed offset matches the IANA zone.
var ExpiryZone = time.FixedZone("Asia/Phnom_Penh", 7*60*60)

var durationPattern = regexp.MustCompile(`^(\d+)([smhdw])$`)

var durationUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseDuration converts strings like "15m" or "7d" into a time.Duration.
func ParseDuration(s string) (time.Duration, error) {
	parts := durationPattern.FindStringSubmatch(s)
	if parts == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	unit, ok := durationUnits[parts[2]]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported unit %q", ErrInvalidDuration, parts[2])
	}
	n, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidDuration, s)
	}
	return time.Duration(n) * unit, nil
}

// ParseAndAddDuration returns now plus the parsed duration in ExpiryZone,
// together with its ExpiryLayout rendering.
func ParseAndAddDuration(s string) (time.Time, string, error) {
	return AddDuration(time.Now(), s)
}

// AddDuration is ParseAndAddDuration with an explicit reference time.
func AddDuration(now time.Time, s string) (time.Time, string, error) {
	d, err := ParseDuration(s)
	if err != nil {
		return time.Time{}, "", err
	}
	at := now.Add(d).In(ExpiryZone)
	return at, at.Format(ExpiryLayout), nil
}
