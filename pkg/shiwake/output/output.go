// Package output provides formatters for displaying organization run
// results in various output formats (pretty, plain, json, etc.).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Record contains the outcome of one file for output formatting.
type Record struct {
	// Source is the path the file was found at.
	Source string `json:"source"`

	// Destination is the resolved destination path. Empty for skipped files.
	Destination string `json:"destination,omitempty"`

	// RuleName is the name of the matched rule, empty when no rule matched.
	RuleName string `json:"rule_name,omitempty"`

	// Operation is the operation applied (move, copy).
	Operation string `json:"operation,omitempty"`

	// Status is one of organized, skipped, failed, unmatched.
	Status string `json:"status"`

	// Conflict describes how a destination conflict was handled, if any.
	Conflict string `json:"conflict,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// SizeHuman is the human-readable file size (e.g., "1.5 MiB").
	SizeHuman string `json:"size_human"`

	// Warnings lists template placeholders that fell back to sentinels.
	Warnings []string `json:"warnings,omitempty"`

	// Error holds the failure message for failed files.
	Error string `json:"error,omitempty"`
}

// RunStats contains statistics about an organization run.
type RunStats struct {
	// FilesSeen is the total number of files considered.
	FilesSeen int64 `json:"files_seen"`

	// Organized is the number of files moved or copied.
	Organized int64 `json:"organized"`

	// Skipped is the number of files left in place.
	Skipped int64 `json:"skipped"`

	// Failed is the number of files whose operation failed.
	Failed int64 `json:"failed"`

	// Unmatched is the number of files no rule or default covered.
	Unmatched int64 `json:"unmatched"`

	// Duration is the total time taken to complete the run.
	Duration time.Duration `json:"duration"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Records contains the outcome of every file, in processing order.
	Records []Record `json:"records"`

	// Stats contains run statistics.
	Stats RunStats `json:"stats"`

	// Sources are the root paths that were organized.
	Sources []string `json:"sources"`

	// Preview indicates a dry run: destinations were resolved but no file
	// was touched.
	Preview bool `json:"preview"`

	// Interrupted indicates the run was cancelled before finishing.
	Interrupted bool `json:"interrupted"`
}

// TotalSize returns the sum of all record sizes in the result.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, rec := range r.Records {
		total += rec.Size
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
