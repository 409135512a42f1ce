package ui

import "strings"

const (
	filledSlot = "🍅"
	emptySlot  = "·"
)

// FilledSlots reports how many session slots are filled for the given
// completed-session count and long-break interval. A count that is a
// positive multiple of the interval fills every slot; otherwise the
// remainder does. Zero never fills a slot.
func FilledSlots(count, interval int) int {
	n := count
	if n < 0 {
		n = 0
	}

	m := interval
	if m < 1 {
		m = 1
	}

	if n%m == 0 && n != 0 {
		return m
	}

	return n % m
}

// Slots renders the session-count indicator: one symbol per slot up to the
// long-break interval, filled from the left.
func Slots(count, interval int) string {
	m := interval
	if m < 1 {
		m = 1
	}

	filled := FilledSlots(count, interval)

	var b strings.Builder

	for i := 0; i < m; i++ {
		if i < filled {
			b.WriteString(filledSlot)
		} else {
			b.WriteString(emptySlot)
		}
	}

	return b.String()
}
