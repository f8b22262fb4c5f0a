package geometry

import "testing"

func TestDisplayHeightContain(t *testing.T) {
	cases := []struct {
		name    string
		src     Size
		deviceW int
		want    int
	}{
		{name: "same-width", src: Size{W: 800, H: 1200}, deviceW: 800, want: 1200},
		{name: "downscale", src: Size{W: 1600, H: 2400}, deviceW: 800, want: 1200},
		{name: "upscale", src: Size{W: 400, H: 500}, deviceW: 800, want: 1000},
		{name: "rounding", src: Size{W: 3, H: 2}, deviceW: 800, want: 533},
		{name: "zero-width", src: Size{W: 0, H: 100}, deviceW: 800, want: 0},
		{name: "zero-height", src: Size{W: 100, H: 0}, deviceW: 800, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayHeight(tc.src, FitContain, tc.deviceW, 1000); got != tc.want {
				t.Fatalf("DisplayHeight(%v, contain, %d) = %d, want %d", tc.src, tc.deviceW, got, tc.want)
			}
		})
	}
}

func TestDisplayHeightCoverIgnoresIntrinsicSize(t *testing.T) {
	a := DisplayHeight(Size{W: 100, H: 100}, FitCover, 800, 1000)
	b := DisplayHeight(Size{W: 9999, H: 1}, FitCover, 800, 1000)
	if a != b {
		t.Fatalf("cover heights differ across sources: %d vs %d", a, b)
	}
	if a != 900 {
		t.Fatalf("cover height = %d, want 900 (0.9 * 1000)", a)
	}
}

func TestDisplayHeightNative(t *testing.T) {
	if got := DisplayHeight(Size{W: 123, H: 456}, FitNative, 800, 1000); got != 456 {
		t.Fatalf("native height = %d, want 456", got)
	}
	if got := DisplayWidth(Size{W: 123, H: 456}, FitNative, 800); got != 123 {
		t.Fatalf("native width = %d, want 123", got)
	}
}

func TestDisplayHeightIdempotent(t *testing.T) {
	src := Size{W: 734, H: 1051}
	for _, mode := range []FitMode{FitContain, FitCover, FitNative} {
		first := DisplayHeight(src, mode, 800, 1000)
		second := DisplayHeight(src, mode, 800, 1000)
		if first != second {
			t.Fatalf("mode %v not idempotent: %d then %d", mode, first, second)
		}
	}
}

func TestParseFitMode(t *testing.T) {
	cases := []struct {
		in      string
		want    FitMode
		wantErr bool
	}{
		{in: "contain", want: FitContain},
		{in: "Cover", want: FitCover},
		{in: " native ", want: FitNative},
		{in: "", want: FitContain},
		{in: "stretch", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseFitMode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseFitMode(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseFitMode(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestFitModeCycle(t *testing.T) {
	m := FitContain
	seen := map[FitMode]bool{}
	for i := 0; i < 3; i++ {
		seen[m] = true
		m = m.Next()
	}
	if m != FitContain || len(seen) != 3 {
		t.Fatalf("Next should cycle all three modes back to contain, got %v after %d distinct", m, len(seen))
	}
}

func TestEstimatedHeight(t *testing.T) {
	if got := EstimatedHeight(700, 0.7); got != 1000 {
		t.Fatalf("EstimatedHeight(700, 0.7) = %d, want 1000", got)
	}
	if got := EstimatedHeight(0, 0.7); got != 0 {
		t.Fatalf("EstimatedHeight with zero width = %d, want 0", got)
	}
}
