package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/adetunwase/pomodoro/internal/scope"
	"github.com/adetunwase/pomodoro/internal/timeutil"
	"github.com/adetunwase/pomodoro/store"
)

type fakeDisplay struct {
	mu    sync.Mutex
	texts []string
}

func (d *fakeDisplay) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.texts = append(d.texts, text)
}

func (d *fakeDisplay) last() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.texts) == 0 {
		return ""
	}

	return d.texts[len(d.texts)-1]
}

func newTestState(t *testing.T) *store.State {
	t.Helper()

	kv, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("opening state store: %v", err)
	}

	return store.NewState(kv, scope.For(11))
}

func TestCountdownRunsToCompletion(t *testing.T) {
	state := newTestState(t)

	c := NewCountdown(state, nil)
	c.interval = 5 * time.Millisecond

	end := timeutil.Now() + 40

	_ = state.SetEnd(end)
	_ = state.SetRunning(true)

	done := make(chan struct{})
	d := &fakeDisplay{}

	c.Start(end, d, func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not complete")
	}

	if got := d.last(); got != "00:00" {
		t.Errorf("final display = %q, want %q", got, "00:00")
	}

	if _, ok := state.ReadEnd(); ok {
		t.Error("deadline still persisted after completion")
	}

	if state.ReadRunning() {
		t.Error("running flag still set after completion")
	}
}

func TestCountdownPastDeadlineClearsStaleState(t *testing.T) {
	state := newTestState(t)

	_ = state.SetEnd(timeutil.Now() - 1000)
	_ = state.SetRunning(true)

	c := NewCountdown(state, nil)

	c.Start(timeutil.Now()-1000, &fakeDisplay{}, func() {
		t.Error("onComplete fired for a past deadline")
	})

	if c.Active() {
		t.Error("countdown active after past deadline")
	}

	if _, ok := state.ReadEnd(); ok {
		t.Error("stale deadline not cleared")
	}

	if state.ReadRunning() {
		t.Error("stale running flag not cleared")
	}
}

func TestCountdownNilDisplayIsNoop(t *testing.T) {
	state := newTestState(t)

	c := NewCountdown(state, nil)
	c.Start(timeutil.Now()+60_000, nil, nil)

	if c.Active() {
		t.Error("countdown started without a display")
	}
}

func TestCountdownCancelStopsTicking(t *testing.T) {
	state := newTestState(t)

	c := NewCountdown(state, nil)
	c.interval = 5 * time.Millisecond

	c.Start(timeutil.Now()+30, &fakeDisplay{}, func() {
		t.Error("onComplete fired after cancel")
	})

	c.Cancel()

	if c.Active() {
		t.Error("countdown still active after cancel")
	}

	// Long enough for the cancelled deadline to pass.
	time.Sleep(100 * time.Millisecond)
}

func TestCountdownStartSupersedesPrevious(t *testing.T) {
	state := newTestState(t)

	c := NewCountdown(state, nil)
	c.interval = 5 * time.Millisecond

	c.Start(timeutil.Now()+30, &fakeDisplay{}, func() {
		t.Error("superseded countdown completed")
	})

	done := make(chan struct{})

	c.Start(timeutil.Now()+50, &fakeDisplay{}, func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement countdown did not complete")
	}
}

func TestCountdownRendersRemainingTime(t *testing.T) {
	state := newTestState(t)

	c := NewCountdown(state, nil)
	c.interval = 50 * time.Millisecond

	d := &fakeDisplay{}

	c.Start(timeutil.Now()+90_000, d, nil)

	defer c.Cancel()

	if got := d.last(); got != "01:30" && got != "01:29" {
		t.Errorf("initial render = %q, want about 01:30", got)
	}
}
