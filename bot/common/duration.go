package common

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// MaxMuteDuration caps /mute. Telegram treats restrictions over 366 days as permanent.
const MaxMuteDuration = 366 * 24 * time.Hour

// ErrInvalidDuration is returned for anything that is not <number><s|m|h|d>
var ErrInvalidDuration = errors.New("invalid mute duration")

var durationPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

var durationUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseMuteDuration parses specs like 30m, 5h or 7d
func ParseMuteDuration(raw string) (time.Duration, error) {
	match := durationPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0, ErrInvalidDuration
	}

	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidDuration
	}

	unit := durationUnits[match[2]]
	if n > int64(MaxMuteDuration/unit) {
		return 0, ErrInvalidDuration
	}
	return time.Duration(n) * unit, nil
}
