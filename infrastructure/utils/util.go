package utils

import (
	"strconv"
	"time"
)

// Clock returns the current time; swapped out in tests.
type Clock func() time.Time

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// ISOTimestamp formats t the way browsers print Date.toISOString().
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ParsePositiveInt parses s as a positive integer, returning fallback otherwise.
func ParsePositiveInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
