package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetMissingSequence(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "progress.json"))
	_, ok, err := s.Get("ch-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected no record for a fresh store")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := NewFileStore(path)

	want := Progress{
		SequenceID: "ch-42",
		Index:      12,
		Total:      20,
		UpdatedAt:  time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Session:    NewSessionID(),
	}
	if err := s.Put(want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Read back through a fresh store so the file, not memory, is tested.
	got, ok, err := NewFileStore(path).Get("ch-42")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPutOverwritesSameSequence(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "progress.json"))
	session := NewSessionID()
	for _, idx := range []int{3, 7, 11} {
		if err := s.Put(Progress{SequenceID: "ch-1", Index: idx, Total: 20, Session: session}); err != nil {
			t.Fatalf("Put(%d): %v", idx, err)
		}
	}
	got, ok, _ := s.Get("ch-1")
	if !ok || got.Index != 11 {
		t.Fatalf("got %+v, want index 11", got)
	}
}

func TestCorruptFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewFileStore(path).Get("ch-1"); err == nil {
		t.Fatal("corrupt file should error, caller logs and continues")
	}
}

func TestSessionIDsUnique(t *testing.T) {
	if NewSessionID() == NewSessionID() {
		t.Fatal("session ids should be unique")
	}
}
