// Package watcher monitors a local chapter directory for page files arriving
// or changing and notifies the reader to refresh its sequence. A download
// manager typically drops pages into the directory one by one; rapid bursts
// are coalesced via the debounce window so the reader does not rebuild its
// layout once per file.
package watcher

import (
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is sent when the watcher detects relevant page-file changes.
type Event struct{}

// Watch monitors dir for page-file changes and sends Event values on the
// returned channel. Call the returned stop function to tear down the watcher.
func Watch(dir string, debounce time.Duration) (<-chan Event, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, nil, err
	}

	ch := make(chan Event, 1)
	done := make(chan struct{})

	// jitterRange adds randomness to the debounce to spread refresh load
	// when several instances watch the same library directory.
	jitterRange := debounce / 2 // 0 to 50% of debounce

	go func() {
		defer close(ch)
		var timer *time.Timer

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if shouldIgnore(ev.Name) {
					continue
				}
				jitter := time.Duration(rand.Int63n(int64(jitterRange)))
				d := debounce + jitter
				if timer == nil {
					timer = time.NewTimer(d)
				} else {
					timer.Reset(d)
				}
			case <-timerChan(timer):
				timer = nil
				select {
				case ch <- Event{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		_ = w.Close()
	}

	return ch, stop, nil
}

// timerChan returns the timer's channel, or a nil channel if timer is nil.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// shouldIgnore returns true for events that should not trigger a refresh.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	// In-progress downloads: downloaders write to a temp name and rename
	// when complete. Refreshing mid-write would truncate the sequence.
	for _, suffix := range []string{".part", ".tmp", ".download", ".crdownload"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	// Editor swap files and hidden bookkeeping files.
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") {
		return true
	}

	return false
}
