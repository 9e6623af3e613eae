package pomodoro

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	tm := New(DefaultConfig())
	if tm.Mode() != Work || tm.Remaining() != 25*60 || tm.Running() {
		t.Fatalf("new timer = mode %v, remaining %d, running %v", tm.Mode(), tm.Remaining(), tm.Running())
	}
	if tm.Progress() != 0 {
		t.Fatalf("progress = %v", tm.Progress())
	}
}

func TestTickCountsDownOnlyWhileRunning(t *testing.T) {
	tm := New(DefaultConfig())
	if applied, _ := tm.Tick(tm.Generation()); applied {
		t.Fatal("tick applied on a stopped timer")
	}

	gen, ok := tm.Start()
	if !ok {
		t.Fatal("start refused")
	}
	for i := 0; i < 3; i++ {
		if applied, _ := tm.Tick(gen); !applied {
			t.Fatalf("tick %d not applied", i)
		}
	}
	if tm.Remaining() != 25*60-3 {
		t.Fatalf("remaining = %d", tm.Remaining())
	}
}

func TestStaleTicksAreIgnored(t *testing.T) {
	tm := New(DefaultConfig())
	first, _ := tm.Start()
	tm.Pause()
	second, _ := tm.Start()

	if applied, _ := tm.Tick(first); applied {
		t.Fatal("tick from the paused ticker was applied")
	}
	if applied, _ := tm.Tick(second); !applied {
		t.Fatal("current tick not applied")
	}
	if tm.Remaining() != 25*60-1 {
		t.Fatalf("remaining = %d, want one second consumed", tm.Remaining())
	}
}

func TestResetAndSwitchModeStop(t *testing.T) {
	tm := New(DefaultConfig())
	gen, _ := tm.Start()
	tm.Tick(gen)

	tm.Reset()
	if tm.Running() || tm.Remaining() != 25*60 {
		t.Fatalf("after reset: running %v remaining %d", tm.Running(), tm.Remaining())
	}
	if applied, _ := tm.Tick(gen); applied {
		t.Fatal("tick applied after reset")
	}

	gen, _ = tm.Start()
	tm.SwitchMode(Break)
	if tm.Mode() != Break || tm.Running() || tm.Remaining() != 5*60 {
		t.Fatalf("after switch: mode %v running %v remaining %d", tm.Mode(), tm.Running(), tm.Remaining())
	}
	if applied, _ := tm.Tick(gen); applied {
		t.Fatal("tick applied after mode switch")
	}
}

func TestReachingZeroStops(t *testing.T) {
	tm := New(Config{Work: 2 * time.Second, Break: time.Second})
	gen, _ := tm.Start()

	if _, finished := tm.Tick(gen); finished {
		t.Fatal("finished too early")
	}
	applied, finished := tm.Tick(gen)
	if !applied || !finished {
		t.Fatalf("last tick: applied %v finished %v", applied, finished)
	}
	if tm.Running() || tm.Remaining() != 0 {
		t.Fatalf("running %v remaining %d", tm.Running(), tm.Remaining())
	}
	if tm.Progress() != 100 {
		t.Fatalf("progress = %v", tm.Progress())
	}
	if _, ok := tm.Start(); ok {
		t.Fatal("finished timer should not restart without reset")
	}
}

func TestToggle(t *testing.T) {
	tm := New(DefaultConfig())
	if _, started := tm.Toggle(); !started || !tm.Running() {
		t.Fatal("toggle should start")
	}
	if _, started := tm.Toggle(); started || tm.Running() {
		t.Fatal("toggle should pause")
	}
}

func TestProgressBreak(t *testing.T) {
	tm := New(DefaultConfig())
	tm.SwitchMode(Break)
	gen, _ := tm.Start()
	for i := 0; i < 60; i++ {
		tm.Tick(gen)
	}
	if got := tm.Progress(); got != 20 {
		t.Fatalf("progress = %v, want 20", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{1500, "25:00"}, {59, "00:59"}, {0, "00:00"}, {-3, "00:00"}, {305, "05:05"},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
