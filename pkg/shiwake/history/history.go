package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Journal manages run logging to a directory of JSON entries.
type Journal struct {
	dir string
}

// New creates a Journal over the given directory. The directory is not
// created until the first write.
func New(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	return &Journal{dir: dir}, nil
}

// LogRun persists one run and returns the created entry.
func (j *Journal) LogRun(preview bool, files []FileRecord) (*Entry, error) {
	now := time.Now().UTC()

	var summary Summary
	summary.TotalFiles = int64(len(files))
	for _, f := range files {
		summary.TotalBytes += f.Size
		switch f.Status {
		case "organized":
			summary.Organized++
		case "skipped":
			summary.Skipped++
		case "failed":
			summary.Failed++
		case "unmatched":
			summary.Unmatched++
		}
	}

	entry := &Entry{
		ID:        generateID(now),
		Timestamp: now,
		Preview:   preview,
		Files:     files,
		Summary:   summary,
	}

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	if err := j.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("writing history entry: %w", err)
	}
	return entry, nil
}

// generateID builds a sortable, unique entry id.
func generateID(t time.Time) string {
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), uuid.NewString()[:8])
}

// writeEntry writes an entry atomically using a temp file and rename.
func (j *Journal) writeEntry(entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	dest := filepath.Join(j.dir, entry.ID+".json")
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// List returns entries sorted newest first. A limit of 0 or less returns all
// entries. A missing directory yields an empty list.
func (j *Journal) List(limit int) ([]Entry, error) {
	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading history directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := j.readEntryFile(f.Name())
		if err != nil {
			continue // unparseable entries are skipped, not fatal
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, k int) bool {
		return entries[i].Timestamp.After(entries[k].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ErrEntryNotFound is returned by Get for an unknown entry id.
var ErrEntryNotFound = errors.New("history entry not found")

// Get returns the entry with the given id.
func (j *Journal) Get(id string) (*Entry, error) {
	entry, err := j.readEntryFile(id + ".json")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		return nil, err
	}
	return entry, nil
}

// readEntryFile reads and decodes one entry file.
func (j *Journal) readEntryFile(name string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(j.dir, name))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parsing history entry %q: %w", name, err)
	}
	return &entry, nil
}

// Clean removes entries older than the retention period and returns how many
// were removed. A retention of 0 or less removes nothing.
func (j *Journal) Clean(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	entries, err := j.List(0)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		if entry.Timestamp.Before(cutoff) {
			path := filepath.Join(j.dir, entry.ID+".json")
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("removing history entry %q: %w", entry.ID, err)
			}
			removed++
		}
	}
	return removed, nil
}
