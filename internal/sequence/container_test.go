package sequence

import (
	"fmt"
	"testing"

	"github.com/karasuda/yomu/internal/geometry"
	"github.com/karasuda/yomu/internal/page"
)

func refs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("page-%02d.png", i)
	}
	return out
}

func testGeometry(mode geometry.FitMode) page.Geometry {
	return page.Geometry{Mode: mode, DeviceW: 800, DeviceH: 1000, TallThreshold: 4.0, ChunkHeight: 190}
}

func TestOffsetsUseEstimateBeforeMeasurement(t *testing.T) {
	c := New(refs(10), 1100)
	for i := 0; i < 10; i++ {
		if got := c.Offset(i); got != i*1100 {
			t.Fatalf("Offset(%d) = %d, want %d", i, got, i*1100)
		}
	}
	if got := c.TotalHeight(); got != 11000 {
		t.Fatalf("TotalHeight = %d, want 11000", got)
	}
}

func TestOffsetConsistency(t *testing.T) {
	c := New(refs(8), 1100)
	// Heights arrive out of order, as decodes complete.
	c.SetHeight(5, 900)
	c.SetHeight(1, 1350)
	c.SetHeight(6, 2000)
	c.SetHeight(0, 800)

	for i := 0; i < c.Len()-1; i++ {
		if diff := c.Offset(i+1) - c.Offset(i); diff != c.Height(i) {
			t.Fatalf("offset(%d+1)-offset(%d) = %d, want height %d", i, i, diff, c.Height(i))
		}
	}
}

func TestSetHeightDirtiesOnlySuffix(t *testing.T) {
	c := New(refs(6), 1000)
	before := c.Offset(2)
	c.SetHeight(3, 500)
	if got := c.Offset(2); got != before {
		t.Fatalf("offset before the changed index moved: %d -> %d", before, got)
	}
	if got := c.Offset(4); got != 3*1000+500 {
		t.Fatalf("offset after the changed index = %d, want %d", got, 3*1000+500)
	}
}

func TestIndexAt(t *testing.T) {
	c := New(refs(5), 1000)
	cases := []struct {
		offset int
		want   int
	}{
		{-10, 0},
		{0, 0},
		{999, 0},
		{1000, 1},
		{2500, 2},
		{4999, 4},
		{5000, 4}, // past the end clamps to the last index
		{99999, 4},
	}
	for _, tc := range cases {
		if got := c.IndexAt(tc.offset); got != tc.want {
			t.Fatalf("IndexAt(%d) = %d, want %d", tc.offset, got, tc.want)
		}
	}
}

func TestVisibleIndicesFractionThreshold(t *testing.T) {
	c := New(refs(5), 1000)
	// Viewport [500, 2500): page 0 shows 500/1000 (50%), page 1 fully,
	// page 2 shows 500/1000 (50%).
	got := c.VisibleIndices(500, 2500, 0.2)
	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("VisibleIndices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("VisibleIndices = %v, want %v", got, want)
		}
	}

	// A sliver below the 20% fraction is not "visible".
	got = c.VisibleIndices(950, 1950, 0.2)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("VisibleIndices = %v, want [1] (page 0 is a 5%% sliver)", got)
	}
}

func TestVisibleIndicesNeverEmpty(t *testing.T) {
	c := New(refs(3), 1000)
	// A viewport shorter than the fraction demands still reports the page
	// under its top edge.
	got := c.VisibleIndices(1400, 1450, 0.2)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("VisibleIndices = %v, want [1]", got)
	}
}

func TestRelayoutInvalidatesAllHeights(t *testing.T) {
	c := New(refs(4), 1143)
	g := testGeometry(geometry.FitContain)

	e := c.Entry(1)
	e.BeginLoad()
	layout, _ := e.CompleteLoad(geometry.Size{W: 800, H: 1200}, g)
	c.SetHeight(1, layout.DisplayHeight)
	if got := c.Height(1); got != 1200 {
		t.Fatalf("contain height = %d, want 1200", got)
	}

	c.Relayout(testGeometry(geometry.FitCover), 1143)
	if got := c.Height(1); got != 900 { // 0.9 * deviceH
		t.Fatalf("cover height = %d, want 900", got)
	}
	if got := c.Height(0); got != 1143 { // unmeasured keeps the estimate
		t.Fatalf("unmeasured height = %d, want estimate 1143", got)
	}
	for i := 0; i < c.Len()-1; i++ {
		if diff := c.Offset(i+1) - c.Offset(i); diff != c.Height(i) {
			t.Fatalf("offsets inconsistent after relayout at %d", i)
		}
	}
}

func TestRestoreLifecycle(t *testing.T) {
	c := New(refs(20), 1000)
	c.RequestRestore(12)
	idx, pending := c.PendingRestore()
	if !pending || idx != 12 {
		t.Fatalf("PendingRestore = (%d, %v), want (12, true)", idx, pending)
	}

	// First failure: retry allowed, restore still armed.
	if !c.RestoreFailed() {
		t.Fatal("first failure should allow a retry")
	}
	if _, pending := c.PendingRestore(); !pending {
		t.Fatal("restore should still be pending after the first failure")
	}

	// Second failure: abandoned silently.
	if c.RestoreFailed() {
		t.Fatal("second failure should abandon the restore")
	}
	if _, pending := c.PendingRestore(); pending {
		t.Fatal("restore should be disarmed after the final failure")
	}
}

func TestRestoreSucceededDisarms(t *testing.T) {
	c := New(refs(20), 1000)
	c.RequestRestore(7)
	c.RestoreSucceeded()
	if _, pending := c.PendingRestore(); pending {
		t.Fatal("restore should be disarmed after success")
	}
}

func TestRestoreIgnoresInvalidTargets(t *testing.T) {
	c := New(refs(5), 1000)
	c.RequestRestore(0) // index 0 needs no restore
	if _, pending := c.PendingRestore(); pending {
		t.Fatal("restore to index 0 should not arm")
	}
	c.RequestRestore(99) // out of range after a truncating reload
	if _, pending := c.PendingRestore(); pending {
		t.Fatal("out-of-range restore should not arm")
	}
}
