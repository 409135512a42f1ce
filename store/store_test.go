package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/adetunwase/pomodoro/internal/scope"
	"github.com/adetunwase/pomodoro/store"
)

func newTestState(t *testing.T) (*store.KV, *store.State) {
	t.Helper()

	kv, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	return kv, store.NewState(kv, scope.For(7))
}

func TestEndRoundTrip(t *testing.T) {
	_, st := newTestState(t)

	if _, ok := st.ReadEnd(); ok {
		t.Fatal("ReadEnd on a fresh store should report absent")
	}

	end := time.Now().UnixMilli() + 600_000

	if err := st.SetEnd(end); err != nil {
		t.Fatalf("SetEnd: %v", err)
	}

	got, ok := st.ReadEnd()
	if !ok || got != end {
		t.Fatalf("ReadEnd = (%d, %v), want (%d, true)", got, ok, end)
	}

	if err := st.ClearEnd(); err != nil {
		t.Fatalf("ClearEnd: %v", err)
	}

	if _, ok := st.ReadEnd(); ok {
		t.Fatal("ReadEnd after ClearEnd should report absent")
	}

	// Clearing again must be a no-op.
	if err := st.ClearEnd(); err != nil {
		t.Fatalf("second ClearEnd: %v", err)
	}
}

func TestRunningFlag(t *testing.T) {
	_, st := newTestState(t)

	if st.ReadRunning() {
		t.Fatal("fresh store should not be running")
	}

	if err := st.SetRunning(true); err != nil {
		t.Fatalf("SetRunning: %v", err)
	}

	if !st.ReadRunning() {
		t.Fatal("ReadRunning should be true after SetRunning(true)")
	}

	if err := st.SetRunning(false); err != nil {
		t.Fatalf("SetRunning(false): %v", err)
	}

	if st.ReadRunning() {
		t.Fatal("ReadRunning should be false after SetRunning(false)")
	}
}

func TestPhaseAndBreakKind(t *testing.T) {
	_, st := newTestState(t)

	if err := st.SetPhase("break", "long"); err != nil {
		t.Fatalf("SetPhase: %v", err)
	}

	phase, kind := st.GetPhase()
	if phase != "break" || kind != "long" {
		t.Fatalf("GetPhase = (%q, %q), want (break, long)", phase, kind)
	}

	// Setting a phase without a kind clears the stored kind.
	if err := st.SetPhase("focus", ""); err != nil {
		t.Fatalf("SetPhase(focus): %v", err)
	}

	phase, kind = st.GetPhase()
	if phase != "focus" || kind != "" {
		t.Fatalf("GetPhase = (%q, %q), want (focus, \"\")", phase, kind)
	}
}

func TestScopesAreIsolated(t *testing.T) {
	kv, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	a := store.NewState(kv, scope.For(1))
	b := store.NewState(kv, scope.For(2))

	if err := a.SetEnd(12345); err != nil {
		t.Fatalf("SetEnd: %v", err)
	}

	if _, ok := b.ReadEnd(); ok {
		t.Fatal("course 2 must not observe course 1's deadline")
	}
}

func TestWatchSeesSiblingWrites(t *testing.T) {
	dir := t.TempDir()

	kv, err := store.New(dir)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := kv.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// A second handle on the same directory stands in for another widget
	// instance.
	sibling, err := store.New(dir)
	if err != nil {
		t.Fatalf("store.New (sibling): %v", err)
	}

	keys := scope.For(3)

	if err := sibling.Write(keys.End, []byte("98765")); err != nil {
		t.Fatalf("sibling Write: %v", err)
	}

	deadline := time.After(5 * time.Second)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("watch channel closed before event arrived")
			}

			if ev.Key == keys.End && !ev.Removed {
				if string(ev.Value) != "98765" {
					t.Fatalf("event value = %q, want 98765", ev.Value)
				}

				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for watch event")
		}
	}
}
