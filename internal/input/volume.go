// Package input turns a continuous hardware level (a volume control) into
// discrete scroll commands. The level is consumed as a stateless button:
// after every classified change the source is reset to its pre-change value,
// and a short re-entrancy lock swallows the echo of the reset itself.
package input

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Command is a discrete scroll direction.
type Command int

const (
	ScrollUp Command = iota
	ScrollDown
)

func (c Command) String() string {
	if c == ScrollUp {
		return "scroll-up"
	}
	return "scroll-down"
}

// LevelSource exposes the underlying analog level in [0.0, 1.0].
type LevelSource interface {
	Level() (float64, error)
	SetLevel(v float64) error
}

const (
	// noiseThreshold is the minimum level delta that counts as a press.
	noiseThreshold = 0.001
	// relockWindow suppresses the change event caused by our own reset.
	relockWindow = 100 * time.Millisecond

	minSensitivity = 10
	maxSensitivity = 100
	minStepPx      = 100
	maxStepPx      = 400
)

// Bridge classifies level changes into scroll commands.
type Bridge struct {
	src       LevelSource
	last      float64
	lockUntil time.Time
	stepPx    int
	now       func() time.Time
}

// NewBridge creates a bridge over src. sensitivity (10-100) maps linearly to
// a scroll step of 100-400 device pixels.
func NewBridge(src LevelSource, sensitivity int) (*Bridge, error) {
	level, err := src.Level()
	if err != nil {
		return nil, fmt.Errorf("read initial level: %w", err)
	}
	return &Bridge{
		src:    src,
		last:   level,
		stepPx: StepPixels(sensitivity),
		now:    time.Now,
	}, nil
}

// StepPixels maps a sensitivity percentage to a scroll magnitude in pixels.
func StepPixels(sensitivity int) int {
	if sensitivity < minSensitivity {
		sensitivity = minSensitivity
	}
	if sensitivity > maxSensitivity {
		sensitivity = maxSensitivity
	}
	span := maxStepPx - minStepPx
	return minStepPx + (sensitivity-minSensitivity)*span/(maxSensitivity-minSensitivity)
}

// Poll samples the level and fires at most one command per call. On a change
// beyond the noise threshold it classifies the direction by sign, resets the
// source to the pre-change level within the same tick, and arms the
// re-entrancy lock. Returns (command, step in px, fired).
func (b *Bridge) Poll() (Command, int, bool) {
	level, err := b.src.Level()
	if err != nil {
		return 0, 0, false
	}

	if b.now().Before(b.lockUntil) {
		// Inside the lock window: track the level without firing so the
		// reset echo is not classified as a new press.
		b.last = level
		return 0, 0, false
	}

	delta := level - b.last
	if delta > -noiseThreshold && delta < noiseThreshold {
		return 0, 0, false
	}

	cmd := ScrollDown
	if delta > 0 {
		cmd = ScrollUp
	}

	// Consume the press: restore the pre-change level.
	_ = b.src.SetLevel(b.last)
	b.lockUntil = b.now().Add(relockWindow)
	return cmd, b.stepPx, true
}

// FileLevelSource reads and writes a level from a plain-text file holding a
// single float in [0.0, 1.0] (the shape exposed by mixer shims and test
// fixtures).
type FileLevelSource struct {
	Path string
}

func (f *FileLevelSource) Level() (float64, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return 0, fmt.Errorf("read level file: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse level file %s: %w", f.Path, err)
	}
	return v, nil
}

func (f *FileLevelSource) SetLevel(v float64) error {
	return os.WriteFile(f.Path, []byte(strconv.FormatFloat(v, 'f', 4, 64)+"\n"), 0o644)
}
