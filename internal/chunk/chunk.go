// Package chunk splits oversized vertical-strip images into independently
// loadable sub-regions. A single multi-thousand-pixel bitmap risks decoder
// and texture memory limits; rendering a strip as a stack of fixed-height
// slices bounds peak memory to one slice while keeping the strip visually
// seamless (zero gap, every slice scaled by the same width factor).
package chunk

import "math"

const (
	// DefaultTallThreshold is the height/width ratio above which a page is
	// treated as a tall strip. The comparison is strictly greater-than:
	// a ratio of exactly 4.0 is NOT tall.
	DefaultTallThreshold = 4.0

	// DefaultHeight is the slice height in source pixels at nominal density.
	// Tunable via config; not a behavioral contract.
	DefaultHeight = 190
)

// Chunk is one vertical slice of a tall page. Slices are contiguous and
// non-overlapping: [StartY, StartY+Height) ranges tile the intrinsic height
// exactly. Immutable once planned.
type Chunk struct {
	Index  int // 0-based position within the page
	Total  int
	StartY int // top edge in source pixels
	Height int // <= plan height; the final chunk may be shorter
}

// IsTall reports whether an image of intrinsic size w x h should be chunked.
func IsTall(w, h int, threshold float64) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	return float64(h)/float64(w) > threshold
}

// Plan returns the chunk list for an image of intrinsic size w x h.
// Non-tall images plan to zero chunks and render as a single image.
func Plan(w, h int, threshold float64, chunkHeight int) []Chunk {
	if !IsTall(w, h, threshold) || chunkHeight <= 0 {
		return nil
	}

	count := int(math.Ceil(float64(h) / float64(chunkHeight)))
	chunks := make([]Chunk, count)
	for i := range chunks {
		start := i * chunkHeight
		height := chunkHeight
		if start+height > h {
			height = h - start
		}
		chunks[i] = Chunk{Index: i, Total: count, StartY: start, Height: height}
	}
	return chunks
}
