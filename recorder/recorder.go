// Package recorder tracks completed focus sessions per course and user,
// applying a rolling time-window rule to decide whether a new completion
// extends the current streak or starts a fresh one. It contains both the
// HTTP client used by the widget and the service it talks to.
package recorder

// SessionWindow is the maximum gap, in seconds, between two focus starts
// for them to count towards the same streak. A start spaced exactly this
// far (or further) from the previous one resets the count to 1.
const SessionWindow = 18000 // 5 hours

// Status is the per-(course, user) session record. The widget never mutates
// it directly; it requests increments and renders the returned value.
type Status struct {
	SessionsCount int   `json:"sessionscount"`
	LastStartTime int64 `json:"last_start_time"`
}
