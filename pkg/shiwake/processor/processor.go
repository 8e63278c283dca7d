// Package processor orchestrates organization runs: it discovers files,
// extracts their metadata, resolves destinations through the engine, and
// commits the resulting moves and copies with a bounded worker pool.
package processor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/shiwake/shiwake/pkg/shiwake/engine"
	"github.com/shiwake/shiwake/pkg/shiwake/fileops"
	"github.com/shiwake/shiwake/pkg/shiwake/logging"
	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
	"github.com/shiwake/shiwake/pkg/shiwake/rules"
)

// File statuses recorded per processed file.
const (
	StatusOrganized = "organized"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusUnmatched = "unmatched"
)

// Extractor produces metadata for a file path.
type Extractor interface {
	Extract(path string) (metadata.FileMetadata, error)
}

// MetadataCache is an optional cache of extracted metadata keyed by file
// path and validated against file size and mtime.
type MetadataCache interface {
	Lookup(path string, info os.FileInfo) (metadata.FileMetadata, bool)
	Store(path string, info os.FileInfo, md metadata.FileMetadata) error
}

// Result is the outcome of processing one file.
type Result struct {
	// Source is the file's original path.
	Source string

	// Destination is the resolved destination, empty when nothing applies.
	Destination string

	// RuleID and RuleName identify the matched rule, empty when unmatched.
	RuleID   string
	RuleName string

	// Operation is the operation applied (move or copy).
	Operation string

	// Status is one of the Status constants.
	Status string

	// Conflict records how a destination conflict was handled.
	Conflict engine.Conflict

	// Size is the file size in bytes, zero when stat failed.
	Size int64

	// Warnings lists placeholders that fell back to sentinel values.
	Warnings []engine.Warning

	// Err holds the failure for StatusFailed results.
	Err error
}

// Report aggregates the results of one run.
type Report struct {
	Results     []Result
	Duration    time.Duration
	Interrupted bool
}

// Organized returns the number of files moved or copied.
func (r *Report) Organized() int {
	return r.count(StatusOrganized)
}

// Skipped returns the number of files left in place.
func (r *Report) Skipped() int {
	return r.count(StatusSkipped)
}

// Failed returns the number of files whose operation failed.
func (r *Report) Failed() int {
	return r.count(StatusFailed)
}

// Unmatched returns the number of files no rule or default covered.
func (r *Report) Unmatched() int {
	return r.count(StatusUnmatched)
}

func (r *Report) count(status string) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Processor runs the organize pipeline over a set of paths.
type Processor struct {
	fs        afero.Fs
	extractor Extractor
	engine    *engine.Engine
	ops       *fileops.Ops
	ruleset   *rules.RuleSet
	opts      engine.Options

	cache   MetadataCache
	preview bool
	workers int
	logger  *logging.Logger

	locks *pathLocks
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers sets the number of concurrent workers. Values below one are
// treated as one.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// WithCache attaches a metadata cache.
func WithCache(c MetadataCache) Option {
	return func(p *Processor) { p.cache = c }
}

// WithPreview makes the run a dry run: destinations are resolved but no
// file is touched.
func WithPreview(preview bool) Option {
	return func(p *Processor) { p.preview = preview }
}

// WithExtractor replaces the default metadata extractor.
func WithExtractor(e Extractor) Option {
	return func(p *Processor) { p.extractor = e }
}

// WithLogger sets the component logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// New creates a Processor over the given filesystem and ruleset.
func New(fsys afero.Fs, rs *rules.RuleSet, opts engine.Options, options ...Option) *Processor {
	p := &Processor{
		fs:        fsys,
		extractor: metadata.NewExtractor(fsys),
		engine:    engine.New(fsys),
		ops:       fileops.New(fsys),
		ruleset:   rs,
		opts:      opts,
		workers:   1,
		logger:    logging.Get("processor"),
		locks:     newPathLocks(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Run organizes every file under the given paths. Cancellation via ctx stops
// the run between files; files already committed stay committed.
func (p *Processor) Run(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()

	files, err := p.discover(ctx, paths)
	if err != nil {
		return nil, err
	}
	p.logger.Info("run started", "files", len(files), "workers", p.workers, "preview", p.preview)

	results := make([]Result, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.processOne(files[i])
			}
		}()
	}

	interrupted := false
feed:
	for i := range files {
		select {
		case <-ctx.Done():
			interrupted = true
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if interrupted {
		// Drop zero-value results for files never dispatched.
		done := results[:0]
		for _, res := range results {
			if res.Source != "" {
				done = append(done, res)
			}
		}
		results = done
	}

	report := &Report{
		Results:     results,
		Duration:    time.Since(start),
		Interrupted: interrupted,
	}
	p.logger.Info("run finished",
		"organized", report.Organized(),
		"skipped", report.Skipped(),
		"failed", report.Failed(),
		"unmatched", report.Unmatched(),
		"duration", report.Duration,
	)
	return report, nil
}

// processOne resolves and, unless previewing, commits one file.
func (p *Processor) processOne(path string) Result {
	res := Result{Source: path}

	info, statErr := p.fs.Stat(path)
	if statErr == nil {
		res.Size = info.Size()
	}

	md := p.extractMetadata(path, info, statErr)

	plan := p.engine.Plan(md, p.ruleset, p.opts)
	res.Warnings = plan.Warnings
	if plan.Matched {
		if rule, ok := p.ruleset.Find(plan.RuleID); ok {
			res.RuleID = rule.ID
			res.RuleName = rule.Name
		}
	}

	if plan.Action == engine.ActionSkip {
		if plan.Matched {
			res.Status = StatusSkipped
		} else {
			res.Status = StatusUnmatched
		}
		return res
	}

	// Serialize conflict resolution and commit per destination directory so
	// two workers cannot claim the same resolved path.
	lock := p.locks.lock(filepath.Dir(plan.Path))
	defer lock.Unlock()

	final, err := p.engine.Finalize(plan, p.opts.ConflictPolicy)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		p.logger.Error("destination resolution failed", "path", path, "error", err)
		return res
	}
	res.Destination = final.Path
	res.Conflict = final.Conflict
	res.Operation = final.Action.String()

	if final.Action == engine.ActionSkip {
		res.Status = StatusSkipped
		return res
	}

	if p.preview {
		res.Status = StatusOrganized
		return res
	}

	overwrite := final.Conflict == engine.ConflictOverwritten
	switch final.Action {
	case engine.ActionMove:
		err = p.ops.Move(path, final.Path, overwrite)
	case engine.ActionCopy:
		err = p.ops.Copy(path, final.Path, overwrite)
	}
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		p.logger.Error("file operation failed", "path", path, "destination", final.Path, "error", err)
		return res
	}

	res.Status = StatusOrganized
	p.logger.Debug("file organized", "path", path, "destination", final.Path, "rule", res.RuleID)
	return res
}

// extractMetadata returns metadata for the file, consulting the cache when
// one is attached. Extraction failure still yields a usable (empty) metadata
// set so matching can degrade instead of erroring.
func (p *Processor) extractMetadata(path string, info os.FileInfo, statErr error) metadata.FileMetadata {
	if p.cache != nil && statErr == nil {
		if md, ok := p.cache.Lookup(path, info); ok {
			return md
		}
	}

	md, err := p.extractor.Extract(path)
	if err != nil {
		p.logger.Warn("metadata extraction degraded", "path", path, "error", err)
		return md
	}

	if p.cache != nil && statErr == nil {
		if err := p.cache.Store(path, info, md); err != nil {
			p.logger.Debug("cache store failed", "path", path, "error", err)
		}
	}
	return md
}
