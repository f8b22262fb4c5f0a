package input

import (
	"path/filepath"
	"testing"
	"time"
)

// memSource is an in-memory LevelSource for tests.
type memSource struct {
	level float64
	sets  []float64
}

func (m *memSource) Level() (float64, error) { return m.level, nil }
func (m *memSource) SetLevel(v float64) error {
	m.level = v
	m.sets = append(m.sets, v)
	return nil
}

// fakeClock drives the bridge's re-entrancy lock deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBridge(t *testing.T, src LevelSource, sensitivity int) (*Bridge, *fakeClock) {
	t.Helper()
	b, err := NewBridge(src, sensitivity)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	clock := &fakeClock{t: time.Unix(1000, 0)}
	b.now = clock.now
	return b, clock
}

func TestVolumeDownFiresOneScrollAndResets(t *testing.T) {
	src := &memSource{level: 0.50}
	b, _ := newTestBridge(t, src, 50)

	src.level = 0.45
	cmd, step, fired := b.Poll()
	if !fired {
		t.Fatal("level drop should fire a command")
	}
	if cmd != ScrollDown {
		t.Fatalf("command = %v, want scroll-down", cmd)
	}
	if step != StepPixels(50) {
		t.Fatalf("step = %d, want %d", step, StepPixels(50))
	}
	// Volume is reset to the pre-change value within the same tick.
	if src.level != 0.50 || len(src.sets) != 1 {
		t.Fatalf("level = %v after %d sets, want 0.50 after 1 set", src.level, len(src.sets))
	}
}

func TestVolumeUpScrollsUp(t *testing.T) {
	src := &memSource{level: 0.50}
	b, _ := newTestBridge(t, src, 50)
	src.level = 0.55
	cmd, _, fired := b.Poll()
	if !fired || cmd != ScrollUp {
		t.Fatalf("got (%v, %v), want (scroll-up, true)", cmd, fired)
	}
}

func TestNoiseBelowThresholdIgnored(t *testing.T) {
	src := &memSource{level: 0.5000}
	b, _ := newTestBridge(t, src, 50)
	src.level = 0.5005
	if _, _, fired := b.Poll(); fired {
		t.Fatal("sub-threshold jitter must not fire")
	}
	if len(src.sets) != 0 {
		t.Fatal("jitter must not trigger a reset")
	}
}

func TestReentrancyLockSwallowsResetEcho(t *testing.T) {
	src := &memSource{level: 0.50}
	b, clock := newTestBridge(t, src, 50)

	src.level = 0.45
	if _, _, fired := b.Poll(); !fired {
		t.Fatal("first press should fire")
	}

	// The reset itself re-delivers a change within the lock window.
	clock.advance(20 * time.Millisecond)
	src.level = 0.50
	if _, _, fired := b.Poll(); fired {
		t.Fatal("reset echo inside the lock window must be swallowed")
	}

	// After the lock expires a genuine press fires again.
	clock.advance(200 * time.Millisecond)
	src.level = 0.45
	if cmd, _, fired := b.Poll(); !fired || cmd != ScrollDown {
		t.Fatalf("press after lock expiry: (%v, %v)", cmd, fired)
	}
}

func TestStepPixelsMapping(t *testing.T) {
	cases := []struct {
		sensitivity int
		want        int
	}{
		{10, 100},
		{100, 400},
		{55, 250},
		{0, 100},   // clamped low
		{999, 400}, // clamped high
	}
	for _, tc := range cases {
		if got := StepPixels(tc.sensitivity); got != tc.want {
			t.Fatalf("StepPixels(%d) = %d, want %d", tc.sensitivity, got, tc.want)
		}
	}
}

func TestFileLevelSourceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level")
	src := &FileLevelSource{Path: path}
	if err := src.SetLevel(0.37); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	got, err := src.Level()
	if err != nil {
		t.Fatalf("Level: %v", err)
	}
	if got != 0.37 {
		t.Fatalf("level = %v, want 0.37", got)
	}
	if _, err := (&FileLevelSource{Path: filepath.Join(t.TempDir(), "missing")}).Level(); err == nil {
		t.Fatal("missing file should error")
	}
}
