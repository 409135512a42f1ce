package timer

import (
	"fmt"

	"github.com/adetunwase/pomodoro/internal/timeutil"
	"github.com/adetunwase/pomodoro/store"
)

// Status reports the persisted countdown for a scope as a printable line,
// e.g. "[Focus]: 17:42". The second return value is false when nothing is
// running or paused, or when the persisted deadline has already passed.
func Status(state *store.State) (string, bool) {
	phase, kind := state.GetPhase()

	if end, ok := state.ReadEnd(); ok {
		left := end - timeutil.Now()
		if left <= 0 {
			return "", false
		}

		return fmt.Sprintf(
			"%s: %s",
			phaseLabel(Phase(phase), BreakKind(kind)),
			timeutil.FormatTime(left),
		), true
	}

	if remaining, ok := state.ReadRemaining(); ok && remaining > 0 {
		return fmt.Sprintf(
			"[Paused]: %s",
			timeutil.FormatTime(remaining),
		), true
	}

	return "", false
}

func phaseLabel(phase Phase, kind BreakKind) string {
	switch phase {
	case PhaseWellness:
		return "[Wellness]"
	case PhaseFocus:
		return "[Focus]"
	case PhaseBreak:
		if kind == BreakLong {
			return "[Long break]"
		}

		return "[Short break]"
	default:
		return "[Timer]"
	}
}
