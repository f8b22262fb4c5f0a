package sched

import "testing"

func TestFreshSessionSeeding(t *testing.T) {
	s := New(20, DefaultConfig())
	if got := s.Boundary(); got != 5 {
		t.Fatalf("initial boundary = %d, want 5", got)
	}
	lo, hi, ok := s.Window()
	if !ok || lo != 0 || hi != 2 {
		t.Fatalf("initial window = [%d, %d] ok=%v, want [0, 2]", lo, hi, ok)
	}
}

func TestSavedSessionSeeding(t *testing.T) {
	s := New(20, DefaultConfig())
	s.SeedSaved(12)
	if got := s.Boundary(); got < 16 {
		t.Fatalf("boundary after restore = %d, want >= 16", got)
	}
	lo, hi, _ := s.Window()
	if lo != 11 || hi != 13 {
		t.Fatalf("restored window = [%d, %d], want [11, 13]", lo, hi)
	}
	if s.CurrentPage() != 12 {
		t.Fatalf("current page = %d, want 12", s.CurrentPage())
	}
}

func TestBoundaryMonotonic(t *testing.T) {
	s := New(50, DefaultConfig())
	events := [][]int{
		{0, 1, 2},
		{5, 6, 7},
		{10, 11},
		{3, 4}, // scrolling back must not shrink the boundary
		{0},
		{20, 21, 22},
	}
	prev := s.Boundary()
	for _, ev := range events {
		s.Observe(ev)
		if b := s.Boundary(); b < prev {
			t.Fatalf("boundary shrank: %d -> %d after %v", prev, b, ev)
		} else {
			prev = b
		}
	}
}

func TestBoundaryGrowthRule(t *testing.T) {
	s := New(50, DefaultConfig())
	s.Observe([]int{7, 8, 9})
	if got := s.Boundary(); got != 13 { // maxVisible + lookAhead + 1
		t.Fatalf("boundary = %d, want 13", got)
	}
}

func TestNearEndPromotesEverything(t *testing.T) {
	s := New(20, DefaultConfig())
	s.Observe([]int{16, 17})
	if got := s.Boundary(); got != 20 {
		t.Fatalf("boundary near end = %d, want 20", got)
	}
}

func TestEligibility(t *testing.T) {
	s := New(50, DefaultConfig())
	s.Observe([]int{10, 11, 12})

	// Everything below the boundary is eligible regardless of visibility.
	for i := 0; i < s.Boundary(); i++ {
		if !s.Eligible(i) {
			t.Fatalf("index %d below boundary %d must be eligible", i, s.Boundary())
		}
	}

	cases := []struct {
		i    int
		want bool
	}{
		{8, true},   // minVisible - 2
		{7, true},   // inside the boundary (16)
		{15, true},  // maxVisible + lookAhead
		{16, false}, // first index past both the boundary and the window
		{17, false},
		{49, false},
		{-1, false},
		{50, false},
	}
	for _, tc := range cases {
		if got := s.Eligible(tc.i); got != tc.want {
			t.Fatalf("Eligible(%d) = %v, want %v (boundary=%d)", tc.i, got, tc.want, s.Boundary())
		}
	}
}

func TestEligibilityWindowBeyondBoundary(t *testing.T) {
	// Before any scroll event the boundary is the initial batch (5) and the
	// seeded window is [0, 2]: index 5 is outside the batch but inside
	// maxVisible + lookAhead, so the window branch must admit it.
	s := New(100, DefaultConfig())
	if !s.Eligible(5) {
		t.Fatal("index 5 should be eligible via the visibility window")
	}
	if s.Eligible(6) { // past both the batch and the window
		t.Fatal("index 6 should be a placeholder")
	}
}

func TestPrefetchTargetsDeduplicated(t *testing.T) {
	s := New(50, DefaultConfig())
	s.Observe([]int{10, 11, 12})

	first := s.PrefetchTargets()
	want := []int{13, 14, 15, 16, 17} // (maxVisible, maxVisible+5]
	if len(first) != len(want) {
		t.Fatalf("prefetch targets = %v, want %v", first, want)
	}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("prefetch targets = %v, want %v", first, want)
		}
	}

	// Same window again: everything already seen.
	if again := s.PrefetchTargets(); len(again) != 0 {
		t.Fatalf("re-prefetched already-seen indices: %v", again)
	}

	// Window advances by one: exactly one new target.
	s.Observe([]int{11, 12, 13})
	if next := s.PrefetchTargets(); len(next) != 1 || next[0] != 18 {
		t.Fatalf("incremental prefetch = %v, want [18]", next)
	}
}

func TestPrefetchClampedToSequenceEnd(t *testing.T) {
	s := New(15, DefaultConfig())
	s.Observe([]int{12, 13})
	got := s.PrefetchTargets()
	if len(got) != 1 || got[0] != 14 {
		t.Fatalf("prefetch at end = %v, want [14]", got)
	}
}

func TestCurrentPageIsMidpoint(t *testing.T) {
	s := New(50, DefaultConfig())
	s.Observe([]int{10, 11, 12, 13, 14})
	if got := s.CurrentPage(); got != 12 {
		t.Fatalf("current page = %d, want 12", got)
	}
	s.Observe([]int{20, 21})
	if got := s.CurrentPage(); got != 20 {
		t.Fatalf("current page = %d, want 20", got)
	}
}

func TestSettleFiresOncePerPosition(t *testing.T) {
	s := New(50, DefaultConfig())
	s.Observe([]int{10, 11, 12})

	idx, changed := s.Settle()
	if !changed || idx != 11 {
		t.Fatalf("first settle = (%d, %v), want (11, true)", idx, changed)
	}
	if _, changed := s.Settle(); changed {
		t.Fatal("settling at the same position must not fire again")
	}
	s.Observe([]int{12, 13, 14})
	if idx, changed := s.Settle(); !changed || idx != 13 {
		t.Fatalf("settle after move = (%d, %v), want (13, true)", idx, changed)
	}
}

func TestChunkVisible(t *testing.T) {
	// Viewport [1000, 2000), margin of one viewport height.
	cases := []struct {
		name        string
		top, bottom int
		want        bool
	}{
		{name: "inside", top: 1200, bottom: 1400, want: true},
		{name: "above-within-margin", top: 100, bottom: 300, want: true},
		{name: "above-outside-margin", top: -500, bottom: -100, want: false},
		{name: "below-within-margin", top: 2500, bottom: 2700, want: true},
		{name: "below-outside-margin", top: 3000, bottom: 3200, want: false},
		{name: "straddles-top", top: 900, bottom: 1100, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChunkVisible(tc.top, tc.bottom, 1000, 2000, 1000); got != tc.want {
				t.Fatalf("ChunkVisible(%d, %d) = %v, want %v", tc.top, tc.bottom, got, tc.want)
			}
		})
	}
}

func TestScrollThrottle(t *testing.T) {
	th := NewScrollThrottle(100)
	if !th.Sample(0) {
		t.Fatal("first sample must act")
	}
	if th.Sample(50) {
		t.Fatal("50px move below the 100px threshold must be dropped")
	}
	if !th.Sample(120) {
		t.Fatal("120px move must act")
	}
	if th.Sample(150) {
		t.Fatal("30px since last acted sample must be dropped")
	}
	if !th.Sample(20) { // 130px back up
		t.Fatal("large negative move must act")
	}
}
