// Package sched decides which sequence positions may fetch and decode right
// now, which should merely warm the byte cache, and which render as
// placeholders. All state is mutated from the single event-processing loop;
// there are no concurrent writers and therefore no locks.
package sched

// Config holds the tunable window constants. The chunk margin and page
// look-ahead intentionally differ (chunks are cheap to speculate on, full
// decodes are not); both are configuration, not behavioral contracts.
type Config struct {
	// LookAhead is how many positions past the last visible one stay
	// eligible for a full load.
	LookAhead int
	// BehindMargin is how many positions before the first visible one stay
	// eligible.
	BehindMargin int
	// PrefetchAhead is how many positions past the last visible one get a
	// best-effort byte prefetch (no decode).
	PrefetchAhead int
	// InitialBatch is the loaded-batch boundary of a fresh session with no
	// saved position: that many leading pages always load so the first
	// screens scroll smoothly.
	InitialBatch int
}

// DefaultConfig mirrors the defaults used by the reader.
func DefaultConfig() Config {
	return Config{LookAhead: 3, BehindMargin: 2, PrefetchAhead: 5, InitialBatch: 5}
}

// Scheduler tracks the visibility window and the loaded-batch boundary for
// one reading session.
type Scheduler struct {
	cfg   Config
	total int

	// boundary is the highest index (exclusive) always eligible to load.
	// It only ever grows within a session.
	boundary int

	minVisible int
	maxVisible int
	hasWindow  bool

	currentPage  int
	settledPage  int
	settledOnce  bool
	prefetchSeen map[int]bool
}

// New creates a scheduler for a sequence of the given length. The visible
// window starts seeded to the first three positions and the boundary to the
// initial batch.
func New(total int, cfg Config) *Scheduler {
	s := &Scheduler{
		cfg:          cfg,
		total:        total,
		boundary:     clamp(cfg.InitialBatch, 0, total),
		prefetchSeen: make(map[int]bool),
	}
	if total > 0 {
		s.minVisible = 0
		s.maxVisible = clamp(2, 0, total-1)
		s.hasWindow = true
	}
	return s
}

// SeedSaved re-seeds the scheduler around a restored reading position. The
// boundary floor becomes at least savedIndex+LookAhead+1 so a resumed session
// does not show placeholders at the fold.
func (s *Scheduler) SeedSaved(index int) {
	if s.total == 0 {
		return
	}
	index = clamp(index, 0, s.total-1)
	s.minVisible = clamp(index-1, 0, s.total-1)
	s.maxVisible = clamp(index+1, 0, s.total-1)
	s.hasWindow = true
	s.currentPage = index
	s.grow(index + s.cfg.LookAhead + 1)
}

// Observe ingests a "viewable items changed" event: the set of indices
// currently intersecting the viewport. It updates the window, the current
// page (closest to the window midpoint), and grows the boundary. Returns
// true when the window actually changed.
func (s *Scheduler) Observe(visible []int) bool {
	if len(visible) == 0 {
		return false
	}
	lo, hi := visible[0], visible[0]
	for _, i := range visible[1:] {
		if i < lo {
			lo = i
		}
		if i > hi {
			hi = i
		}
	}
	lo = clamp(lo, 0, s.total-1)
	hi = clamp(hi, 0, s.total-1)

	changed := !s.hasWindow || lo != s.minVisible || hi != s.maxVisible
	s.minVisible, s.maxVisible, s.hasWindow = lo, hi, true

	mid := (lo + hi) / 2
	best := visible[0]
	for _, i := range visible[1:] {
		if abs(i-mid) < abs(best-mid) {
			best = i
		}
	}
	s.currentPage = clamp(best, 0, s.total-1)

	s.grow(hi + s.cfg.LookAhead + 1)
	// Near the end of the list everything remaining is promoted into the
	// batch, infinite-scroll style.
	if hi >= s.total-1-s.cfg.LookAhead {
		s.grow(s.total)
	}
	return changed
}

// grow raises the boundary monotonically; it never shrinks.
func (s *Scheduler) grow(to int) {
	to = clamp(to, 0, s.total)
	if to > s.boundary {
		s.boundary = to
	}
}

// Eligible reports whether position i may fetch and decode now. Everything
// below the boundary is always eligible; otherwise the index must sit in the
// visibility-relative window.
func (s *Scheduler) Eligible(i int) bool {
	if i < 0 || i >= s.total {
		return false
	}
	if i < s.boundary {
		return true
	}
	if !s.hasWindow {
		return false
	}
	return i >= s.minVisible-s.cfg.BehindMargin && i <= s.maxVisible+s.cfg.LookAhead
}

// PrefetchTargets returns the positions in (maxVisible, maxVisible+ahead]
// not yet prefetched this session, and marks them as seen. Prefetch warms
// the byte cache only; it never widens the render window.
func (s *Scheduler) PrefetchTargets() []int {
	if !s.hasWindow {
		return nil
	}
	var out []int
	for i := s.maxVisible + 1; i <= s.maxVisible+s.cfg.PrefetchAhead && i < s.total; i++ {
		if s.prefetchSeen[i] {
			continue
		}
		s.prefetchSeen[i] = true
		out = append(out, i)
	}
	return out
}

// CurrentPage is the index whose item is closest to the midpoint of the
// visible window.
func (s *Scheduler) CurrentPage() int { return s.currentPage }

// Boundary exposes the loaded-batch boundary (monotonically non-decreasing).
func (s *Scheduler) Boundary() int { return s.boundary }

// Window returns the visible range, if one has been observed.
func (s *Scheduler) Window() (lo, hi int, ok bool) {
	return s.minVisible, s.maxVisible, s.hasWindow
}

// Settle reports the page to persist when scrolling comes to rest. It fires
// at most once per distinct settled page, so repeated settle events at the
// same position do not hit storage again.
func (s *Scheduler) Settle() (int, bool) {
	if !s.hasWindow {
		return 0, false
	}
	if s.settledOnce && s.settledPage == s.currentPage {
		return s.currentPage, false
	}
	s.settledPage = s.currentPage
	s.settledOnce = true
	return s.currentPage, true
}

// ChunkVisible reports whether a chunk spanning [top, bottom) display pixels
// should load, given the viewport [viewTop, viewBottom) widened by margin on
// both sides. Chunk visibility uses a wider margin than page visibility
// because chunk loads are cheap.
func ChunkVisible(top, bottom, viewTop, viewBottom, margin int) bool {
	return bottom > viewTop-margin && top < viewBottom+margin
}

// ScrollThrottle drops scroll-offset samples that move less than a minimum
// delta, bounding visibility-recompute churn during momentum scrolling.
type ScrollThrottle struct {
	threshold int
	last      int
	primed    bool
}

// NewScrollThrottle creates a throttle acting on moves of at least delta px.
func NewScrollThrottle(delta int) *ScrollThrottle {
	return &ScrollThrottle{threshold: delta}
}

// Sample returns true when the offset moved far enough since the last acted
// sample. The first sample always acts.
func (t *ScrollThrottle) Sample(offset int) bool {
	if !t.primed {
		t.primed = true
		t.last = offset
		return true
	}
	if abs(offset-t.last) < t.threshold {
		return false
	}
	t.last = offset
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
