// Package pomodoro implements the work/break focus timer.
//
// The timer does not own a clock. The caller schedules one Tick per second
// and passes back the generation returned by Start; ticks from an older
// generation are ignored, so a paused or reset timer never resumes from a
// stray tick.
package pomodoro

import (
	"fmt"
	"time"
)

// Mode selects the session length.
type Mode int

const (
	Work Mode = iota
	Break
)

func (m Mode) String() string {
	if m == Break {
		return "pause"
	}
	return "travail"
}

// Config holds the session lengths.
type Config struct {
	Work  time.Duration
	Break time.Duration
}

// DefaultConfig returns the classic 25/5 split.
func DefaultConfig() Config {
	return Config{Work: 25 * time.Minute, Break: 5 * time.Minute}
}

// Timer is a countdown with a running flag. Not safe for concurrent use;
// it lives inside the TUI model.
type Timer struct {
	cfg       Config
	mode      Mode
	remaining int // seconds
	running   bool
	gen       int
}

// New returns a stopped timer in work mode.
func New(cfg Config) *Timer {
	if cfg.Work <= 0 {
		cfg.Work = DefaultConfig().Work
	}
	if cfg.Break <= 0 {
		cfg.Break = DefaultConfig().Break
	}
	t := &Timer{cfg: cfg, mode: Work}
	t.remaining = t.length(Work)
	return t
}

func (t *Timer) length(m Mode) int {
	if m == Break {
		return int(t.cfg.Break / time.Second)
	}
	return int(t.cfg.Work / time.Second)
}

// Start runs the timer and returns the tick generation the caller must
// echo back. Starting a finished timer is a no-op that returns the current
// generation with ok=false.
func (t *Timer) Start() (gen int, ok bool) {
	if t.remaining == 0 {
		return t.gen, false
	}
	t.gen++
	t.running = true
	return t.gen, true
}

// Pause stops the countdown, keeping the remaining time.
func (t *Timer) Pause() {
	t.stop()
}

// Toggle starts a stopped timer or pauses a running one.
func (t *Timer) Toggle() (gen int, started bool) {
	if t.running {
		t.Pause()
		return t.gen, false
	}
	return t.Start()
}

// Reset stops the timer and refills the current mode.
func (t *Timer) Reset() {
	t.stop()
	t.remaining = t.length(t.mode)
}

// SwitchMode stops the timer and loads the full length of m.
func (t *Timer) SwitchMode(m Mode) {
	t.mode = m
	t.Reset()
}

func (t *Timer) stop() {
	if t.running {
		t.gen++
	}
	t.running = false
}

// Tick consumes one second if gen is current and the timer runs. It
// reports whether the tick was applied and whether the session just ended.
func (t *Timer) Tick(gen int) (applied, finished bool) {
	if !t.running || gen != t.gen {
		return false, false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.stop()
		return true, true
	}
	return true, false
}

func (t *Timer) Mode() Mode      { return t.mode }
func (t *Timer) Running() bool   { return t.running }
func (t *Timer) Remaining() int  { return t.remaining }
func (t *Timer) Generation() int { return t.gen }

// Progress returns the elapsed share of the current session in [0, 100].
func (t *Timer) Progress() float64 {
	total := t.length(t.mode)
	if total == 0 {
		return 100
	}
	return float64(total-t.remaining) / float64(total) * 100
}

// Format renders seconds as MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
