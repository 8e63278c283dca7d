// Package history journals organization runs to the filesystem. Each run is
// written as one JSON entry so the outcome of every file, including sentinel
// substitutions the UI should flag, can be inspected later.
package history

import "time"

// Entry represents one organization run.
type Entry struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Preview   bool         `json:"preview"`
	Files     []FileRecord `json:"files"`
	Summary   Summary      `json:"summary"`
}

// FileRecord is the journaled outcome for one file.
type FileRecord struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination,omitempty"`
	RuleID      string   `json:"rule_id,omitempty"`
	RuleName    string   `json:"rule_name,omitempty"`
	Operation   string   `json:"operation,omitempty"`
	Status      string   `json:"status"`
	Conflict    string   `json:"conflict,omitempty"`
	Size        int64    `json:"size,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Summary aggregates a run's outcomes.
type Summary struct {
	TotalFiles int64 `json:"total_files"`
	TotalBytes int64 `json:"total_bytes"`
	Organized  int64 `json:"organized"`
	Skipped    int64 `json:"skipped"`
	Failed     int64 `json:"failed"`
	Unmatched  int64 `json:"unmatched"`
}
