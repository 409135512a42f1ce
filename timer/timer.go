// Package timer operates the Pomodoro countdown and drives the
// wellness → focus → break cycle, keeping every open widget instance of the
// same user and course in agreement about a single logical countdown.
package timer

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/adetunwase/pomodoro/broadcast"
	"github.com/adetunwase/pomodoro/internal/config"
	"github.com/adetunwase/pomodoro/internal/sound"
	"github.com/adetunwase/pomodoro/internal/timeutil"
	"github.com/adetunwase/pomodoro/internal/ui"
	"github.com/adetunwase/pomodoro/recorder"
	"github.com/adetunwase/pomodoro/store"
)

// Phase is the current stage of the Pomodoro cycle.
type Phase string

const (
	PhaseIdle     Phase = ""
	PhaseWellness Phase = "wellness"
	PhaseFocus    Phase = "focus"
	PhaseBreak    Phase = "break"
)

// BreakKind distinguishes the rest interval after a focus period.
type BreakKind string

const (
	BreakShort BreakKind = "short"
	BreakLong  BreakKind = "long"
)

// resumeSlack is how far in the future a persisted deadline must lie to be
// worth resuming on load. Anything closer is treated as already completed.
const resumeSlack = 250 // ms

// requestTimeout bounds the recorder round-trip.
const requestTimeout = 10 * time.Second

// Recorder is the client side of the session-count service.
type Recorder interface {
	IncrementSession(
		ctx context.Context,
		courseID int,
		startts int64,
	) (recorder.Status, error)
	GetStatus(ctx context.Context, courseID int) (recorder.Status, error)
}

// Handles are the rendering surfaces supplied by the host. Any field may be
// nil: the affected step degrades gracefully or is skipped entirely.
type Handles struct {
	// Display shows the main focus countdown.
	Display ui.Display

	WellnessDialog    ui.Dialog
	WellnessCountdown ui.Display

	BreakDialog    ui.Dialog
	BreakCountdown ui.Display

	// Slots shows the session-count indicator.
	Slots ui.Display

	// IntervalLabel shows the configured long-break interval.
	IntervalLabel ui.Display
}

// Params configures a Session.
type Params struct {
	Config    *config.Timer
	State     *store.State
	Transport broadcast.Transport
	Recorder  Recorder
	Handles   Handles
	Cue       sound.Cue

	// OnError receives non-fatal errors such as failed recorder calls.
	// When nil they are reported through pterm.
	OnError func(error)
}

// Session is one widget instance's view of the shared timer. All mutable
// state lives here rather than at package level, so a host can run several
// independent scopes side by side.
type Session struct {
	mu sync.Mutex

	cfg       *config.Timer
	state     *store.State
	transport broadcast.Transport
	countdown *Countdown
	recorder  Recorder
	handles   Handles
	cue       sound.Cue

	onError func(error)
	now     func() int64
}

// New assembles a session. Call Init to restore persisted state and begin
// listening for sibling events.
func New(p Params) *Session {
	s := &Session{
		cfg:       p.Config,
		state:     p.State,
		transport: p.Transport,
		recorder:  p.Recorder,
		handles:   p.Handles,
		cue:       p.Cue,
		onError:   p.OnError,
		now:       timeutil.Now,
	}

	s.countdown = NewCountdown(p.State, p.Transport)

	if s.onError == nil {
		s.onError = func(err error) {
			pterm.Error.Printfln("pomodoro: %v", err)
		}
	}

	return s
}

// Init restores a persisted countdown, fetches the initial session count,
// and subscribes to sibling events. It never fails: a stale persisted
// deadline is cleared silently and a recorder error only skips the initial
// indicator update.
func (s *Session) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handles.IntervalLabel != nil {
		s.handles.IntervalLabel.SetText(strconv.Itoa(s.cfg.LongBreakInterval))
	}

	if s.transport != nil {
		s.transport.OnMessage(s.handleMessage)
	}

	if s.recorder != nil {
		go s.renderInitialSlots()
	}

	s.resume()
}

// resume re-attaches to a countdown persisted by a previous load or a
// sibling instance. The deadline is reused as-is: nothing is re-persisted
// and no start event is broadcast.
func (s *Session) resume() {
	end, ok := s.state.ReadEnd()
	if !ok {
		return
	}

	phase, _ := s.state.GetPhase()
	target := s.handles.Display

	switch Phase(phase) {
	case PhaseWellness:
		if s.handles.WellnessCountdown != nil {
			target = s.handles.WellnessCountdown
		}
	case PhaseBreak:
		if s.handles.BreakCountdown != nil {
			target = s.handles.BreakCountdown
		}
	}

	if end > s.now()+resumeSlack {
		switch Phase(phase) {
		case PhaseWellness:
			if s.handles.WellnessDialog != nil {
				s.handles.WellnessDialog.Open()
			}
		case PhaseBreak:
			if s.handles.BreakDialog != nil {
				s.handles.BreakDialog.Open()
			}
		}

		s.countdown.Start(end, target, nil)

		return
	}

	// The deadline passed while no instance was open; treat it as a
	// normal completion without alarms or notifications.
	_ = s.state.ClearEnd()
	_ = s.state.SetRunning(false)
}

func (s *Session) renderInitialSlots() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	st, err := s.recorder.GetStatus(ctx, s.cfg.CourseID)
	if err != nil {
		s.onError(err)
		return
	}

	s.mu.Lock()
	s.renderSlots(st.SessionsCount)
	s.mu.Unlock()
}

func (s *Session) renderSlots(count int) {
	if s.handles.Slots != nil {
		s.handles.Slots.SetText(ui.Slots(count, s.cfg.LongBreakInterval))
	}
}

// StartPause is the combined start/pause control. Depending on the current
// state it resumes a paused focus period, begins a new cycle with the
// wellness step, or pauses the running countdown.
func (s *Session) StartPause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cue.Click()

	// Resume a paused focus period with the saved remainder.
	if remaining, ok := s.state.ReadRemaining(); ok {
		if remaining > 0 {
			_ = s.state.ClearRemaining()
			s.startFocus(time.Duration(remaining) * time.Millisecond)
		}

		return
	}

	if !s.state.ReadRunning() {
		s.startWellness()
		return
	}

	s.pause()
}

// pause snapshots the remaining time, stops the countdown, and tells
// sibling instances to do the same. Only a focus period can be paused;
// wellness and break countdowns run to completion.
func (s *Session) pause() {
	if phase, _ := s.state.GetPhase(); Phase(phase) != PhaseFocus {
		return
	}

	if end, ok := s.state.ReadEnd(); ok {
		left := end - s.now()
		if left > 0 {
			_ = s.state.SetRemaining(left)
			_ = s.state.ClearEnd()

			s.send(broadcast.Message{
				Type:      broadcast.TypePause,
				Remaining: left,
			})

			if s.handles.Display != nil {
				s.handles.Display.SetText(timeutil.FormatTime(left))
			}
		}
	}

	s.countdown.Cancel()
	_ = s.state.SetRunning(false)
}

// startWellness opens the wellness prompt and counts it down before the
// focus period begins. When the prompt surfaces are absent the step is
// skipped entirely.
func (s *Session) startWellness() {
	_ = s.state.SetPhase(string(PhaseWellness), "")

	if s.handles.WellnessDialog == nil || s.handles.WellnessCountdown == nil {
		s.startFocus(s.cfg.Focus)
		return
	}

	end := s.now() + s.cfg.Wellness.Milliseconds()

	_ = s.state.SetEnd(end)
	_ = s.state.SetRunning(true)

	s.handles.WellnessDialog.Open()

	s.countdown.Start(end, s.handles.WellnessCountdown, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.handles.WellnessDialog.Close()
		s.startFocus(s.cfg.Focus)
	})
}

// SkipWellness short-circuits the wellness prompt straight to focus. It
// does nothing unless a wellness step is in progress.
func (s *Session) SkipWellness() {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase, _ := s.state.GetPhase()
	if Phase(phase) != PhaseWellness {
		return
	}

	s.cue.Click()

	if s.handles.WellnessDialog != nil {
		s.handles.WellnessDialog.Close()
	}

	s.startFocus(s.cfg.Focus)
}

// startFocus begins a focus period of duration d, persisting the deadline
// and announcing it to sibling instances.
func (s *Session) startFocus(d time.Duration) {
	if d <= 0 {
		d = config.DefaultFocus
	}

	_ = s.state.SetPhase(string(PhaseFocus), "")

	startts := s.now() / 1000
	end := s.now() + d.Milliseconds()

	_ = s.state.SetEnd(end)
	_ = s.state.SetRunning(true)

	s.send(broadcast.Message{Type: broadcast.TypeStart, End: end})

	s.countdown.Start(end, s.handles.Display, func() {
		s.focusComplete(startts)
	})
}

// focusComplete records the finished focus period with the remote service
// and moves on to the break. The countdown has already cleared the
// persisted deadline, so a recorder failure can only cost the updated
// indicator, never wedge the cycle.
func (s *Session) focusComplete(startts int64) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	count := 1

	st, err := s.recorderIncrement(ctx, startts)
	if err != nil {
		s.onError(err)
	} else {
		count = st.SessionsCount
	}

	s.cue.Alarm("Focus period complete", "Time for a break")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.renderSlots(count)

	kind := BreakShort
	if isLongBreak(count, s.cfg.LongBreakInterval) {
		kind = BreakLong
	}

	s.startBreak(kind)
}

func (s *Session) recorderIncrement(
	ctx context.Context,
	startts int64,
) (recorder.Status, error) {
	if s.recorder == nil {
		return recorder.Status{SessionsCount: 1}, nil
	}

	return s.recorder.IncrementSession(ctx, s.cfg.CourseID, startts)
}

// isLongBreak reports whether the just-reported session count lands on a
// long break.
func isLongBreak(count, interval int) bool {
	return interval > 0 && count > 0 && count%interval == 0
}

// startBreak opens the break prompt and counts down the rest interval.
func (s *Session) startBreak(kind BreakKind) {
	d := s.cfg.ShortBreak
	if kind == BreakLong {
		d = s.cfg.LongBreak
	}

	_ = s.state.SetPhase(string(PhaseBreak), string(kind))

	target := s.handles.Display
	if s.handles.BreakCountdown != nil {
		target = s.handles.BreakCountdown
		target.SetText(timeutil.FormatTime(d.Milliseconds()))
	}

	if s.handles.BreakDialog != nil {
		s.handles.BreakDialog.Open()
	}

	end := s.now() + d.Milliseconds()

	_ = s.state.SetEnd(end)
	_ = s.state.SetRunning(true)

	s.countdown.Start(end, target, func() {
		s.cue.Alarm("Break is over", "Ready for the next focus period")

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.handles.BreakDialog != nil {
			s.handles.BreakDialog.Close()
		}

		s.stopReset(false)
	})
}

// DismissBreak closes the break prompt. The underlying countdown keeps
// running; dismissing is purely cosmetic.
func (s *Session) DismissBreak() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cue.Click()

	if s.handles.BreakDialog != nil {
		s.handles.BreakDialog.Close()
	}
}

// StopReset cancels whatever is running and returns the widget to idle.
// Calling it on an already idle session leaves the same end state.
func (s *Session) StopReset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cue.Click()
	s.stopReset(false)
}

func (s *Session) stopReset(alarm bool) {
	s.countdown.Cancel()

	_ = s.state.ClearEnd()
	_ = s.state.ClearRemaining()
	_ = s.state.SetRunning(false)
	_ = s.state.SetPhase(string(PhaseIdle), "")

	s.send(broadcast.Message{Type: broadcast.TypeStop})

	if s.handles.Display != nil {
		s.handles.Display.SetText(
			timeutil.FormatTime(s.cfg.Focus.Milliseconds()),
		)
	}

	if alarm {
		s.cue.Alarm("Timer stopped", "")
	}
}

// handleMessage mirrors a sibling instance's lifecycle event locally.
// Mirroring never re-broadcasts, otherwise two instances would ping-pong
// events forever.
func (s *Session) handleMessage(msg broadcast.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case broadcast.TypeStart:
		if msg.End == 0 {
			return
		}

		s.countdown.Start(msg.End, s.handles.Display, nil)
		_ = s.state.SetEnd(msg.End)
		_ = s.state.SetRunning(true)

	case broadcast.TypePause:
		s.countdown.Cancel()
		_ = s.state.SetRemaining(msg.Remaining)
		_ = s.state.SetRunning(false)

		if s.handles.Display != nil {
			s.handles.Display.SetText(timeutil.FormatTime(msg.Remaining))
		}

	case broadcast.TypeStop:
		// Only react when a countdown is actually persisted; otherwise a
		// stop echoing our own completion would reset an idle widget.
		if _, ok := s.state.ReadEnd(); ok {
			s.stopReset(false)
		}

	default:
		slog.Debug(
			"dropping message with unknown type",
			slog.String("type", string(msg.Type)),
		)
	}
}

func (s *Session) send(msg broadcast.Message) {
	if s.transport == nil {
		return
	}

	if err := s.transport.Send(msg); err != nil {
		slog.Debug("broadcast failed", slog.Any("error", err))
	}
}

// Close cancels the local countdown and releases the messaging channel.
// The persisted state is left intact so another instance, or the next
// load, can pick the countdown back up.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.countdown.Cancel()

	if s.transport != nil {
		_ = s.transport.Close()
	}
}
