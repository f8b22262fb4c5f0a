package source

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestNaturalLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"p2.png", "p10.png", true},
		{"p10.png", "p2.png", false},
		{"p1.png", "p1.png", false},
		{"a.png", "b.png", true},
		{"page-002.png", "page-010.png", true},
		{"10.png", "9.png", false},
		{"ch1p2.png", "ch1p10.png", true},
	}
	for _, tc := range cases {
		if got := naturalLess(tc.a, tc.b); got != tc.want {
			t.Fatalf("naturalLess(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDirProviderSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"p10.png", "p2.jpg", "p1.png", "notes.txt", ".hidden.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	refs, err := (&DirProvider{Dir: dir}).PageSources(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("PageSources: %v", err)
	}
	want := []string{"p1.png", "p2.jpg", "p10.png"}
	if len(refs) != len(want) {
		t.Fatalf("refs = %v, want %d image files", refs, len(want))
	}
	for i, w := range want {
		if filepath.Base(string(refs[i])) != w {
			t.Fatalf("refs[%d] = %s, want %s", i, refs[i], w)
		}
	}
}

func TestDirProviderMissingDirIsFetchError(t *testing.T) {
	_, err := (&DirProvider{Dir: filepath.Join(t.TempDir(), "nope")}).PageSources(context.Background(), "ch-1")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
}

func TestListProviderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.txt")
	content := "# chapter 1\nhttps://img.example/1.png\n\nhttps://img.example/2.png\n/local/3.png\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	refs, err := (&ListProvider{Location: path}).PageSources(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("PageSources: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("refs = %v, want 3 entries", refs)
	}
	if refs[0].IsRemote() != true || refs[2].IsRemote() != false {
		t.Fatalf("remote detection wrong: %v", refs)
	}
}

// writePNG writes a w x h gradient image and returns its path.
func writePNG(t *testing.T, dir string, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 80, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeReportsIntrinsicSize(t *testing.T) {
	path := writePNG(t, t.TempDir(), "p.png", 40, 60)
	d := NewCachingDecoder(0, 2)
	res, err := d.Decode(context.Background(), Ref(path), DecodeOptions{Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Width != 40 || res.Height != 60 {
		t.Fatalf("intrinsic size = %dx%d, want 40x60", res.Width, res.Height)
	}
}

func TestDecodeCrop(t *testing.T) {
	path := writePNG(t, t.TempDir(), "strip.png", 30, 200)
	d := NewCachingDecoder(0, 2)
	res, err := d.Decode(context.Background(), Ref(path), DecodeOptions{
		Priority: PriorityNormal,
		Crop:     &Rect{X: 0, Y: 50, W: 30, H: 40},
	})
	if err != nil {
		t.Fatalf("Decode with crop: %v", err)
	}
	// Intrinsic size stays the full source; the handle is the slice.
	if res.Width != 30 || res.Height != 200 {
		t.Fatalf("intrinsic size = %dx%d, want 30x200", res.Width, res.Height)
	}
	b := res.Image.Bounds()
	if b.Dx() != 30 || b.Dy() != 40 {
		t.Fatalf("cropped handle = %dx%d, want 30x40", b.Dx(), b.Dy())
	}
}

func TestDecodeUsesByteCache(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "p.png", 10, 10)
	d := NewCachingDecoder(0, 2)
	if _, err := d.Decode(context.Background(), Ref(path), DecodeOptions{}); err != nil {
		t.Fatalf("first decode: %v", err)
	}
	// Remove the file: a second decode must still succeed from cache.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Decode(context.Background(), Ref(path), DecodeOptions{}); err != nil {
		t.Fatalf("cached decode: %v", err)
	}
}

func TestPrefetchWarmsCache(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "p.png", 10, 10)
	d := NewCachingDecoder(0, 2)
	if err := d.Prefetch(context.Background(), Ref(path)); err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Decode(context.Background(), Ref(path), DecodeOptions{}); err != nil {
		t.Fatalf("decode after prefetch: %v", err)
	}
}

func TestDecodeFailureIsDecodeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	d := NewCachingDecoder(0, 2)
	_, err := d.Decode(context.Background(), Ref(path), DecodeOptions{})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
}
