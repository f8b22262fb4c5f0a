package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	// Codecs registered for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Priority hints how urgently a decode is needed. High is for on-screen
// content, Normal for the eligibility window, Low for background fills
// (e.g. an in-flight fetch whose entry scrolled out of the window).
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// Rect is a crop region in source pixels for chunk rendering.
type Rect struct {
	X, Y, W, H int
}

// DecodeOptions tune a single decode request.
type DecodeOptions struct {
	Priority Priority
	// Crop, when non-zero, decodes only that sub-rectangle of the source.
	// Used by tall-page chunks: the same bytes are sampled, not re-fetched.
	Crop *Rect
}

// Result is a completed decode: the intrinsic size of the full source plus a
// renderable handle (the decoded, possibly cropped, image).
type Result struct {
	Width  int
	Height int
	Image  image.Image
}

// DecodeError is a per-page (or per-chunk) failure. It never affects sibling
// entries; the reader shows a local retry affordance.
type DecodeError struct {
	Ref Ref
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Ref, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoder is the image decode capability the core depends on.
type Decoder interface {
	// Decode fetches (or reuses cached bytes for) ref and decodes it,
	// honoring the crop and priority hints.
	Decode(ctx context.Context, ref Ref, opts DecodeOptions) (*Result, error)
	// Prefetch warms the byte cache for ref without decoding. Best effort.
	Prefetch(ctx context.Context, ref Ref) error
}

// CachingDecoder implements Decoder with a bounded in-memory byte cache
// keyed by Ref, so a prefetched or previously rendered source is never
// fetched twice in a session. When the cache exceeds its byte budget it is
// flushed entirely; the budget is generous relative to a chapter, so a flush
// only happens when something is wrong.
type CachingDecoder struct {
	client *http.Client

	mu    sync.Mutex
	bytes map[Ref][]byte
	total int
	limit int

	// slots bounds concurrent non-high decodes so a burst of speculative
	// loads cannot starve the on-screen one.
	slots chan struct{}
}

// defaultByteBudget bounds the byte cache (64 MiB).
const defaultByteBudget = 64 << 20

// NewCachingDecoder creates a decoder with the given byte budget (0 uses the
// default) and decode concurrency for non-high-priority work.
func NewCachingDecoder(budget, workers int) *CachingDecoder {
	if budget <= 0 {
		budget = defaultByteBudget
	}
	if workers <= 0 {
		workers = 2
	}
	return &CachingDecoder{
		client: &http.Client{Timeout: 60 * time.Second},
		bytes:  make(map[Ref][]byte),
		limit:  budget,
		slots:  make(chan struct{}, workers),
	}
}

// Decode implements Decoder.
func (d *CachingDecoder) Decode(ctx context.Context, ref Ref, opts DecodeOptions) (*Result, error) {
	if opts.Priority != PriorityHigh {
		select {
		case d.slots <- struct{}{}:
			defer func() { <-d.slots }()
		case <-ctx.Done():
			return nil, &DecodeError{Ref: ref, Err: ctx.Err()}
		}
	}

	data, err := d.fetch(ctx, ref)
	if err != nil {
		return nil, &DecodeError{Ref: ref, Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Ref: ref, Err: err}
	}

	bounds := img.Bounds()
	res := &Result{Width: bounds.Dx(), Height: bounds.Dy(), Image: img}

	if c := opts.Crop; c != nil {
		sub, err := cropImage(img, *c)
		if err != nil {
			return nil, &DecodeError{Ref: ref, Err: err}
		}
		res.Image = sub
	}
	return res, nil
}

// Prefetch implements Decoder.
func (d *CachingDecoder) Prefetch(ctx context.Context, ref Ref) error {
	if _, err := d.fetch(ctx, ref); err != nil {
		return &FetchError{SequenceID: string(ref), Err: err}
	}
	return nil
}

// fetch returns the raw bytes for ref, from cache when possible.
func (d *CachingDecoder) fetch(ctx context.Context, ref Ref) ([]byte, error) {
	d.mu.Lock()
	if data, ok := d.bytes[ref]; ok {
		d.mu.Unlock()
		return data, nil
	}
	d.mu.Unlock()

	var data []byte
	var err error
	if ref.IsRemote() {
		data, err = d.fetchRemote(ctx, ref)
	} else {
		data, err = os.ReadFile(string(ref))
	}
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.total+len(data) > d.limit {
		d.bytes = make(map[Ref][]byte)
		d.total = 0
	}
	d.bytes[ref] = data
	d.total += len(data)
	d.mu.Unlock()

	return data, nil
}

func (d *CachingDecoder) fetchRemote(ctx context.Context, ref Ref) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(ref), nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %s", resp.Status)
	}
	// Cap single-page reads well above any plausible page size so a broken
	// endpoint cannot exhaust memory.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPageBytes {
		return nil, fmt.Errorf("source larger than %d bytes", maxPageBytes)
	}
	return data, nil
}

const maxPageBytes = 128 << 20

// subImager is implemented by every stdlib image type we decode.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func cropImage(img image.Image, c Rect) (image.Image, error) {
	if c.W <= 0 || c.H <= 0 {
		return nil, fmt.Errorf("invalid crop %+v", c)
	}
	b := img.Bounds()
	r := image.Rect(b.Min.X+c.X, b.Min.Y+c.Y, b.Min.X+c.X+c.W, b.Min.Y+c.Y+c.H).Intersect(b)
	if r.Empty() {
		return nil, fmt.Errorf("crop %+v outside image bounds %v", c, b)
	}
	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("image type %T does not support cropping", img)
	}
	return si.SubImage(r), nil
}
