// Package scope derives the per-course key namespace used for persisted
// timer state and cross-instance signaling.
package scope

import "strconv"

// Keys holds the storage key for each persisted value plus the broadcast
// channel name for one course scope. Two different courses open at the same
// time never share a key.
type Keys struct {
	End       string
	Running   string
	Remaining string
	Phase     string
	BreakKind string
	Msg       string
	Channel   string
}

// For returns the scoped keys for the given course. A non-positive course id
// selects the global scope.
func For(courseID int) Keys {
	cid := "global"
	if courseID > 0 {
		cid = strconv.Itoa(courseID)
	}

	p := "pomodoro:" + cid

	return Keys{
		End:       p + ":endTimestamp",
		Running:   p + ":running",
		Remaining: p + ":remaining",
		Phase:     p + ":phase",
		BreakKind: p + ":breakKind",
		Msg:       p + ":msg",
		Channel:   p + ":channel",
	}
}
