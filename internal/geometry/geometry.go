// Package geometry computes on-screen display sizes for source images.
// Everything here is a pure function of its inputs: callers must re-invoke
// on every fit-mode change instead of trusting previously computed heights,
// because Contain depends on the intrinsic size while Cover and Native do not.
package geometry

import (
	"fmt"
	"math"
	"strings"
)

// FitMode selects how an intrinsic image size maps to display pixels.
type FitMode int

const (
	// FitContain scales the image so its width fills the device width,
	// preserving aspect ratio. The full image stays visible.
	FitContain FitMode = iota
	// FitCover renders into a fixed viewport-relative box (90% of the
	// device height); the image is cropped to fill it.
	FitCover
	// FitNative renders at intrinsic size, no scaling.
	FitNative
)

// coverHeightFactor is the fraction of the device height a Cover page occupies.
const coverHeightFactor = 0.9

func (m FitMode) String() string {
	switch m {
	case FitContain:
		return "contain"
	case FitCover:
		return "cover"
	case FitNative:
		return "native"
	default:
		return fmt.Sprintf("FitMode(%d)", int(m))
	}
}

// ParseFitMode parses a config string into a FitMode.
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contain", "":
		return FitContain, nil
	case "cover":
		return FitCover, nil
	case "native":
		return FitNative, nil
	default:
		return FitContain, fmt.Errorf("unknown fit mode %q", s)
	}
}

// Next cycles to the following fit mode (used by the runtime toggle).
func (m FitMode) Next() FitMode {
	switch m {
	case FitContain:
		return FitCover
	case FitCover:
		return FitNative
	default:
		return FitContain
	}
}

// Size is an image size in source pixels.
type Size struct {
	W int
	H int
}

// Ratio returns height/width, or 0 for a degenerate width.
func (s Size) Ratio() float64 {
	if s.W <= 0 {
		return 0
	}
	return float64(s.H) / float64(s.W)
}

// DisplayHeight returns the on-screen height in device pixels for an image of
// intrinsic size src rendered at the given fit mode. deviceW and deviceH are
// the device viewport dimensions in the same pixel space.
func DisplayHeight(src Size, mode FitMode, deviceW, deviceH int) int {
	switch mode {
	case FitCover:
		return int(math.Round(coverHeightFactor * float64(deviceH)))
	case FitNative:
		if src.H < 0 {
			return 0
		}
		return src.H
	default: // FitContain
		if src.W <= 0 || src.H <= 0 || deviceW <= 0 {
			return 0
		}
		return int(math.Round(float64(deviceW) / float64(src.W) * float64(src.H)))
	}
}

// DisplayWidth returns the on-screen width for the fit mode. Contain and
// Cover fill the device width; Native keeps the intrinsic width.
func DisplayWidth(src Size, mode FitMode, deviceW int) int {
	if mode == FitNative {
		if src.W < 0 {
			return 0
		}
		return src.W
	}
	return deviceW
}

// EstimatedHeight is the placeholder display height used for pages whose
// intrinsic size is not yet known: device width divided by a default
// width/height aspect ratio.
func EstimatedHeight(deviceW int, aspect float64) int {
	if deviceW <= 0 || aspect <= 0 {
		return 0
	}
	return int(math.Round(float64(deviceW) / aspect))
}
