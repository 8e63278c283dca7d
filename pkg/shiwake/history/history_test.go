package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleFiles() []FileRecord {
	return []FileRecord{
		{Source: "/in/a.jpg", Destination: "/out/2023/05/a.jpg", RuleID: "photos",
			Operation: "move", Status: "organized", Size: 100},
		{Source: "/in/b.txt", Status: "unmatched", Size: 50},
		{Source: "/in/c.jpg", Status: "failed", Error: "permission denied", Size: 25},
		{Source: "/in/d.jpg", Destination: "/out/d.jpg", Status: "skipped", Conflict: "skipped"},
	}
}

func TestNewRequiresDirectory(t *testing.T) {
	t.Parallel()
	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") should error")
	}
}

func TestLogRun(t *testing.T) {
	t.Parallel()
	j, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	entry, err := j.LogRun(false, sampleFiles())
	if err != nil {
		t.Fatalf("LogRun() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("entry ID is empty")
	}
	if entry.Preview {
		t.Error("Preview = true, want false")
	}
	s := entry.Summary
	if s.TotalFiles != 4 || s.Organized != 1 || s.Unmatched != 1 || s.Failed != 1 || s.Skipped != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.TotalBytes != 175 {
		t.Errorf("TotalBytes = %d, want 175", s.TotalBytes)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()
	j, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	logged, err := j.LogRun(true, sampleFiles())
	if err != nil {
		t.Fatal(err)
	}

	got, err := j.Get(logged.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != logged.ID || len(got.Files) != 4 || !got.Preview {
		t.Errorf("entry = %+v", got)
	}

	if _, err := j.Get("20990101-000000-deadbeef"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get() of unknown id error = %v, want ErrEntryNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()
	j, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		entry, err := j.LogRun(false, nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, entry.ID)
		time.Sleep(10 * time.Millisecond)
	}

	entries, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].ID != ids[2] || entries[2].ID != ids[0] {
		t.Errorf("order = [%s %s %s], want newest first", entries[0].ID, entries[1].ID, entries[2].ID)
	}

	limited, err := j.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d entries", len(limited))
	}
}

func TestListMissingDirectory(t *testing.T) {
	t.Parallel()
	j, err := New(filepath.Join(t.TempDir(), "never-created"))
	if err != nil {
		t.Fatal(err)
	}

	entries, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}

func TestListSkipsUnparseableFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	j, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := j.LogRun(false, nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1", len(entries))
	}
}

func TestClean(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	j, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := j.LogRun(false, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Write an old entry directly, predating the retention window.
	old := &Entry{
		ID:        "20200101-000000-aaaaaaaa",
		Timestamp: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := j.writeEntry(old); err != nil {
		t.Fatal(err)
	}

	removed, err := j.Clean(30)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if _, err := j.Get(fresh.ID); err != nil {
		t.Errorf("fresh entry was removed: %v", err)
	}
	if _, err := j.Get(old.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("old entry should be gone, got %v", err)
	}
}

func TestCleanZeroRetentionKeepsEverything(t *testing.T) {
	t.Parallel()
	j, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := j.LogRun(false, nil); err != nil {
		t.Fatal(err)
	}

	removed, err := j.Clean(0)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}
