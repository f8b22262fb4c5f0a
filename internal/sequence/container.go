// Package sequence owns the ordered page entries of one reading session and
// their layout offsets. Heights arrive out of order as decodes complete, so
// the prefix sums are maintained lazily: a height report only records how far
// back the sums are stale, and the suffix is rebuilt on the next offset read.
package sequence

import (
	"github.com/karasuda/yomu/internal/page"
)

// Container is the authoritative list of entries for a session. The length
// is fixed at creation; a chapter refresh replaces the container wholesale.
type Container struct {
	entries []*page.Entry

	heights []int // current display heights, estimate until measured
	prefix  []int // prefix[i] = sum(heights[0:i]); valid for i <= cleanTo
	cleanTo int   // prefix entries [0, cleanTo] are trustworthy

	estimate int

	restoreTarget   int
	restorePending  bool
	restoreAttempts int
}

// maxRestoreAttempts bounds the scroll-to-saved-index retries: one automatic
// retry after the initial failure, then the restore is abandoned.
const maxRestoreAttempts = 2

// New builds a container over the ordered source refs. estimate is the
// placeholder display height used until a page reports its real height.
func New(refs []string, estimate int) *Container {
	c := &Container{
		entries:  make([]*page.Entry, len(refs)),
		heights:  make([]int, len(refs)),
		prefix:   make([]int, len(refs)+1),
		estimate: estimate,
	}
	for i, ref := range refs {
		c.entries[i] = page.NewEntry(i, ref)
		c.heights[i] = estimate
	}
	c.cleanTo = 0
	return c
}

// Len returns the sequence length.
func (c *Container) Len() int { return len(c.entries) }

// Entry returns the entry at position i.
func (c *Container) Entry(i int) *page.Entry { return c.entries[i] }

// SetHeight records a concrete display height for position i, dirtying the
// offsets of every subsequent index. Amortized O(1): nothing is recomputed
// until the next offset read.
func (c *Container) SetHeight(i, h int) {
	if i < 0 || i >= len(c.heights) || c.heights[i] == h {
		return
	}
	c.heights[i] = h
	if i < c.cleanTo {
		c.cleanTo = i
	}
}

// Height returns the current display height of position i (estimate or real).
func (c *Container) Height(i int) int {
	if i < 0 || i >= len(c.heights) {
		return 0
	}
	return c.heights[i]
}

// Offset returns the top edge of position i in device pixels:
// sum of the heights of every preceding entry.
func (c *Container) Offset(i int) int {
	if i < 0 {
		return 0
	}
	if i > len(c.heights) {
		i = len(c.heights)
	}
	c.ensureClean(i)
	return c.prefix[i]
}

// TotalHeight is the full scroll extent of the sequence.
func (c *Container) TotalHeight() int {
	return c.Offset(len(c.heights))
}

// ensureClean rebuilds prefix sums up through index i.
func (c *Container) ensureClean(i int) {
	for c.cleanTo < i {
		c.prefix[c.cleanTo+1] = c.prefix[c.cleanTo] + c.heights[c.cleanTo]
		c.cleanTo++
	}
}

// IndexAt returns the position whose extent contains the given scroll
// offset, clamped to the sequence bounds.
func (c *Container) IndexAt(offsetPx int) int {
	n := len(c.heights)
	if n == 0 || offsetPx <= 0 {
		return 0
	}
	if offsetPx >= c.TotalHeight() {
		return n - 1
	}
	// Binary search over the (now clean) prefix sums.
	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.prefix[mid] <= offsetPx {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// VisibleIndices returns the positions whose visible fraction within the
// viewport [top, bottom) meets the threshold. Short viewports always report
// at least the index under the viewport top so the window is never empty.
func (c *Container) VisibleIndices(top, bottom int, fraction float64) []int {
	n := len(c.heights)
	if n == 0 || bottom <= top {
		return nil
	}
	var out []int
	for i := c.IndexAt(top); i < n; i++ {
		iTop := c.Offset(i)
		if iTop >= bottom {
			break
		}
		iBottom := iTop + c.heights[i]
		overlap := min(iBottom, bottom) - max(iTop, top)
		if overlap <= 0 {
			continue
		}
		if float64(overlap) >= fraction*float64(c.heights[i]) {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		out = append(out, c.IndexAt(top))
	}
	return out
}

// Relayout recomputes every display height for a new geometry (fit-mode or
// device-size change). All cached heights are invalidated unconditionally;
// Cover and Native heights are not functions of the intrinsic size, so stale
// values can never be assumed valid across a mode switch.
func (c *Container) Relayout(g page.Geometry, estimate int) {
	c.estimate = estimate
	for i, e := range c.entries {
		c.heights[i] = e.Relayout(g, estimate)
	}
	c.cleanTo = 0
}

// ── Initial-position restore ────────────────────────────────────────────────

// RequestRestore arms a one-shot scroll to a saved index. Only meaningful
// once per session, before the first layout pass completes.
func (c *Container) RequestRestore(index int) {
	if index <= 0 || index >= len(c.entries) {
		return
	}
	c.restoreTarget = index
	c.restorePending = true
	c.restoreAttempts = 0
}

// PendingRestore reports the armed restore target, if any.
func (c *Container) PendingRestore() (int, bool) {
	return c.restoreTarget, c.restorePending
}

// RestoreSucceeded disarms the restore after a successful scroll.
func (c *Container) RestoreSucceeded() {
	c.restorePending = false
}

// RestoreFailed records a failed attempt (target not yet measurable is an
// expected, transient failure). Returns true while a retry is still allowed;
// after the final attempt the restore silently falls back to index 0.
func (c *Container) RestoreFailed() bool {
	c.restoreAttempts++
	if c.restoreAttempts >= maxRestoreAttempts {
		c.restorePending = false
		return false
	}
	return true
}
