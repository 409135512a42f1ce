// Package timeutil provides utility functions for working with
// time-related operations.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secondsInAMinute = 60

// Now returns the current wall-clock time in Unix milliseconds. All
// deadlines in the timer are absolute values produced by this function.
func Now() int64 {
	return time.Now().UnixMilli()
}

// ParseInt parses s as a base-10 integer and returns def when s is empty or
// malformed.
func ParseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}

	return n
}

// FormatTime renders a millisecond duration as a zero-padded MM:SS string.
// Negative values render as 00:00. Minutes are not wrapped at 60, so an
// hour-long interval reads 60:00.
func FormatTime(ms int64) string {
	total := ms / 1000
	if total < 0 {
		total = 0
	}

	minutes := total / secondsInAMinute
	seconds := total % secondsInAMinute

	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
