package timer

import (
	"sync"
	"time"

	"github.com/adetunwase/pomodoro/broadcast"
	"github.com/adetunwase/pomodoro/internal/timeutil"
	"github.com/adetunwase/pomodoro/internal/ui"
	"github.com/adetunwase/pomodoro/store"
)

const terminalDisplay = "00:00"

// Countdown renders the time remaining until an absolute deadline, once per
// second, until the deadline passes. At most one countdown is active per
// instance: starting a new one cancels the previous one.
//
// Each tick recomputes the remaining time from the deadline rather than
// decrementing a counter, so delays in the tick loop never accumulate.
type Countdown struct {
	state     *store.State
	transport broadcast.Transport

	mu   sync.Mutex
	stop chan struct{}

	interval time.Duration
	now      func() int64
}

// NewCountdown returns a countdown that clears the persisted deadline and
// broadcasts a stop event when it completes naturally.
func NewCountdown(state *store.State, transport broadcast.Transport) *Countdown {
	return &Countdown{
		state:     state,
		transport: transport,
		interval:  time.Second,
		now:       timeutil.Now,
	}
}

// Start begins ticking towards end (Unix ms), rendering into d. onComplete,
// if non-nil, is invoked exactly once when the deadline passes naturally.
//
// A nil display or a deadline that is not in the future is a no-op; a
// deadline already in the past additionally clears any stale persisted
// deadline and running flag.
func (c *Countdown) Start(end int64, d ui.Display, onComplete func()) {
	if d == nil {
		return
	}

	if end <= c.now() {
		_ = c.state.ClearEnd()
		_ = c.state.SetRunning(false)

		return
	}

	c.Cancel()

	stop := make(chan struct{})

	c.mu.Lock()
	c.stop = stop
	c.mu.Unlock()

	d.SetText(timeutil.FormatTime(end - c.now()))

	go c.run(end, d, onComplete, stop)
}

func (c *Countdown) run(end int64, d ui.Display, onComplete func(), stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			left := end - c.now()
			if left <= 0 {
				c.finish(d, onComplete, stop)
				return
			}

			d.SetText(timeutil.FormatTime(left))
		}
	}
}

// finish runs the completion effects unless this countdown was superseded
// or cancelled in the meantime.
func (c *Countdown) finish(d ui.Display, onComplete func(), stop chan struct{}) {
	c.mu.Lock()
	if c.stop != stop {
		c.mu.Unlock()
		return
	}

	c.stop = nil
	c.mu.Unlock()

	d.SetText(terminalDisplay)

	_ = c.state.ClearEnd()
	_ = c.state.SetRunning(false)

	if c.transport != nil {
		_ = c.transport.Send(broadcast.Message{Type: broadcast.TypeStop})
	}

	if onComplete != nil {
		onComplete()
	}
}

// Cancel stops the active tick loop, if any. It is idempotent.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// Active reports whether a tick loop is currently running.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stop != nil
}
