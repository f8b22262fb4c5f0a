// Package source supplies the reader's external collaborators: ordered page
// sources for a sequence, and an asynchronous decode capability with a
// memory cache and priority hinting. The core never cares whether a ref is a
// remote URL or a local path produced by a downloader.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Ref is an opaque page locator: an http(s) URL or a local file path.
type Ref string

// IsRemote reports whether the ref is fetched over HTTP.
func (r Ref) IsRemote() bool {
	return strings.HasPrefix(string(r), "http://") || strings.HasPrefix(string(r), "https://")
}

// FetchError wraps failures to obtain the page list or page bytes. It is
// surfaced as an empty-sequence end state with a retry action, never as a
// crash.
type FetchError struct {
	SequenceID string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch sources for %s: %v", e.SequenceID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Provider yields the ordered page sources of a sequence.
type Provider interface {
	PageSources(ctx context.Context, sequenceID string) ([]Ref, error)
}

// ── Local directory provider ────────────────────────────────────────────────

// imageExts are the file types the stdlib decoder handles.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// DirProvider reads a chapter from a local directory (the shape a
// download-to-disk manager produces). Files sort in natural order so
// "page-2" precedes "page-10".
type DirProvider struct {
	Dir string
}

func (p *DirProvider) PageSources(_ context.Context, sequenceID string) ([]Ref, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, &FetchError{SequenceID: sequenceID, Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })

	refs := make([]Ref, len(names))
	for i, name := range names {
		refs[i] = Ref(filepath.Join(p.Dir, name))
	}
	return refs, nil
}

// naturalLess compares strings digit-run aware: "p2" < "p10".
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			aNum, aRest := splitLeadingNumber(a)
			bNum, bRest := splitLeadingNumber(b)
			if aNum != bNum {
				return aNum < bNum
			}
			a, b = aRest, bRest
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitLeadingNumber(s string) (int, string) {
	i := 0
	n := 0
	for i < len(s) && isDigit(s[i]) {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:]
}

// ── List provider ───────────────────────────────────────────────────────────

// ListProvider reads an ordered list of page URLs/paths, one per line, from
// either an HTTP endpoint or a local file. Blank lines and '#' comments are
// skipped.
type ListProvider struct {
	Location string
	Client   *http.Client
}

func (p *ListProvider) PageSources(ctx context.Context, sequenceID string) ([]Ref, error) {
	var body string
	if Ref(p.Location).IsRemote() {
		text, err := p.fetch(ctx)
		if err != nil {
			return nil, &FetchError{SequenceID: sequenceID, Err: err}
		}
		body = text
	} else {
		data, err := os.ReadFile(p.Location)
		if err != nil {
			return nil, &FetchError{SequenceID: sequenceID, Err: err}
		}
		body = string(data)
	}

	var refs []Ref
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, Ref(line))
	}
	if err := sc.Err(); err != nil {
		return nil, &FetchError{SequenceID: sequenceID, Err: err}
	}
	return refs, nil
}

func (p *ListProvider) fetch(ctx context.Context) (string, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Location, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list endpoint returned %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
