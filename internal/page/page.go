// Package page holds the per-position load state machine of a sequence.
// Entries are passive: transitions are triggered by the scheduler's
// eligibility decisions and by decode completion callbacks, never by the
// entry itself. A failed entry stays failed until a manual retry; there is
// no automatic re-fetch, so a struggling source is never hammered.
package page

import (
	"fmt"

	"github.com/karasuda/yomu/internal/chunk"
	"github.com/karasuda/yomu/internal/geometry"
)

// LoadState is the lifecycle of a page (and of each chunk of a tall page).
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Ready
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// Entry is the render/load state for one position in the sequence.
type Entry struct {
	Index int
	Ref   string // opaque source locator: URL or local path

	state LoadState
	err   error

	// Intrinsic size is recorded once on the first successful decode and
	// never overwritten: re-decodes after a mode switch must not be able to
	// change the apparent size of an immutable source.
	size  geometry.Size
	sized bool

	displayHeight int

	tall        bool
	chunks      []chunk.Chunk
	chunkStates []LoadState
	chunkErrs   []error
}

// NewEntry creates an unloaded entry for the given sequence position.
func NewEntry(index int, ref string) *Entry {
	return &Entry{Index: index, Ref: ref}
}

func (e *Entry) State() LoadState { return e.state }
func (e *Entry) Err() error       { return e.err }

// Sized reports whether the intrinsic size is known yet.
func (e *Entry) Sized() bool { return e.sized }

// Size returns the intrinsic size; zero until the first Ready transition.
func (e *Entry) Size() geometry.Size { return e.size }

// DisplayHeight is the current on-screen height in device pixels.
func (e *Entry) DisplayHeight() int { return e.displayHeight }

// IsTall reports whether this entry renders as chunked slices.
func (e *Entry) IsTall() bool { return e.tall }

// Chunks returns the planned slices; nil unless the entry is tall.
func (e *Entry) Chunks() []chunk.Chunk { return e.chunks }

// BeginLoad moves Unloaded → Loading. From Failed it acts as the manual
// retry. Returns false when the entry is already loading or ready.
func (e *Entry) BeginLoad() bool {
	if e.state == Loading || e.state == Ready {
		return false
	}
	e.state = Loading
	e.err = nil
	return true
}

// Layout carries the measurements an entry reports upward once ready.
type Layout struct {
	Index         int
	DisplayHeight int
	IsTall        bool
	Chunks        []chunk.Chunk
}

// Geometry bundles the display parameters a Ready transition needs.
type Geometry struct {
	Mode          geometry.FitMode
	DeviceW       int
	DeviceH       int
	TallThreshold float64
	ChunkHeight   int
}

// CompleteLoad moves Loading → Ready with the decoded intrinsic size and
// returns the layout report for the container. If the entry was measured in
// an earlier session of loads, the recorded size wins over the new decode.
func (e *Entry) CompleteLoad(size geometry.Size, g Geometry) (Layout, bool) {
	if e.state != Loading {
		return Layout{}, false
	}
	if !e.sized {
		e.size = size
		e.sized = true
		e.tall = chunk.IsTall(size.W, size.H, g.TallThreshold)
		if e.tall {
			e.chunks = chunk.Plan(size.W, size.H, g.TallThreshold, g.ChunkHeight)
			e.chunkStates = make([]LoadState, len(e.chunks))
			e.chunkErrs = make([]error, len(e.chunks))
		}
	}
	e.state = Ready
	e.err = nil
	e.displayHeight = geometry.DisplayHeight(e.size, g.Mode, g.DeviceW, g.DeviceH)
	return Layout{Index: e.Index, DisplayHeight: e.displayHeight, IsTall: e.tall, Chunks: e.chunks}, true
}

// FailLoad moves Loading → Failed. The failure is local to this entry;
// siblings are unaffected.
func (e *Entry) FailLoad(err error) bool {
	if e.state != Loading {
		return false
	}
	e.state = Failed
	e.err = err
	return true
}

// Relayout recomputes the display height for a new fit mode or device size.
// Unmeasured entries keep the provided estimate. Intrinsic size and chunk
// plan are untouched.
func (e *Entry) Relayout(g Geometry, estimate int) int {
	if e.sized {
		e.displayHeight = geometry.DisplayHeight(e.size, g.Mode, g.DeviceW, g.DeviceH)
	} else {
		e.displayHeight = estimate
	}
	return e.displayHeight
}

// ── Chunk micro-states ──────────────────────────────────────────────────────
//
// Each chunk of a tall entry runs the same Unloaded → Loading → Ready/Failed
// shape, scoped to that chunk's own visibility.

// ChunkState returns the state of chunk i, or Unloaded out of range.
func (e *Entry) ChunkState(i int) LoadState {
	if i < 0 || i >= len(e.chunkStates) {
		return Unloaded
	}
	return e.chunkStates[i]
}

// ChunkErr returns the recorded error for chunk i, if any.
func (e *Entry) ChunkErr(i int) error {
	if i < 0 || i >= len(e.chunkErrs) {
		return nil
	}
	return e.chunkErrs[i]
}

// BeginChunkLoad moves chunk i Unloaded/Failed → Loading.
func (e *Entry) BeginChunkLoad(i int) bool {
	if i < 0 || i >= len(e.chunkStates) {
		return false
	}
	if s := e.chunkStates[i]; s == Loading || s == Ready {
		return false
	}
	e.chunkStates[i] = Loading
	e.chunkErrs[i] = nil
	return true
}

// CompleteChunkLoad moves chunk i Loading → Ready.
func (e *Entry) CompleteChunkLoad(i int) bool {
	if i < 0 || i >= len(e.chunkStates) || e.chunkStates[i] != Loading {
		return false
	}
	e.chunkStates[i] = Ready
	return true
}

// FailChunkLoad moves chunk i Loading → Failed.
func (e *Entry) FailChunkLoad(i int, err error) bool {
	if i < 0 || i >= len(e.chunkStates) || e.chunkStates[i] != Loading {
		return false
	}
	e.chunkStates[i] = Failed
	e.chunkErrs[i] = err
	return true
}
