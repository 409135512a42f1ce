// Package sound plays the widget's fire-and-forget audio and notification
// cues. Failures are logged and never surfaced to the caller.
package sound

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

const clickDuration = 80 // ms

// Cue emits audio feedback for control presses and completed countdowns.
// The zero value is silent.
type Cue struct {
	Enabled bool
}

// Click plays a short press cue.
func (c Cue) Click() {
	if !c.Enabled {
		return
	}

	if err := beeep.Beep(beeep.DefaultFreq, clickDuration); err != nil {
		slog.Debug("click cue failed", slog.Any("error", err))
	}
}

// Alarm plays the completion cue and raises a desktop notification.
func (c Cue) Alarm(title, msg string) {
	if !c.Enabled {
		return
	}

	if err := beeep.Alert(title, msg, ""); err != nil {
		slog.Debug("alarm cue failed", slog.Any("error", err))
	}
}
