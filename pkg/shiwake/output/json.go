package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Records []Record  `json:"records"`
	Stats   jsonStats `json:"stats"`
	Meta    jsonMeta  `json:"meta"`
}

// jsonStats represents run statistics in JSON output.
type jsonStats struct {
	FilesSeen int64  `json:"files_seen"`
	Organized int64  `json:"organized"`
	Skipped   int64  `json:"skipped"`
	Failed    int64  `json:"failed"`
	Unmatched int64  `json:"unmatched"`
	Duration  string `json:"duration"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Sources     []string `json:"sources"`
	Preview     bool     `json:"preview"`
	TotalSize   int64    `json:"total_size"`
	Interrupted bool     `json:"interrupted"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with records, stats, and meta
// sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := jsonOutput{
		Records: r.Records,
		Stats: jsonStats{
			FilesSeen: r.Stats.FilesSeen,
			Organized: r.Stats.Organized,
			Skipped:   r.Stats.Skipped,
			Failed:    r.Stats.Failed,
			Unmatched: r.Stats.Unmatched,
			Duration:  formatDurationString(r.Stats.Duration),
		},
		Meta: jsonMeta{
			Sources:     r.Sources,
			Preview:     r.Preview,
			TotalSize:   r.TotalSize(),
			Interrupted: r.Interrupted,
		},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// formatDurationString formats a duration as a string for JSON output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON (one record per
// line). This format is suitable for streaming processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, rec := range r.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
