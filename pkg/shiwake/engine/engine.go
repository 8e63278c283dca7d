package engine

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
	"github.com/shiwake/shiwake/pkg/shiwake/rules"
)

// Action is what the caller should do with the file once resolution is done.
type Action int

const (
	// ActionMove relocates the file to the resolved path.
	ActionMove Action = iota
	// ActionCopy duplicates the file at the resolved path.
	ActionCopy
	// ActionSkip leaves the file untouched at its source.
	ActionSkip
)

// String returns the wire name of the action.
func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "copy"
	case ActionSkip:
		return "skip"
	default:
		return "move"
	}
}

// Options are the per-run settings the engine needs. They are constructed
// once by the caller and passed into every invocation; the engine holds no
// ambient configuration state.
type Options struct {
	// DefaultDestination receives files no rule matches. Empty disables the
	// fallback: unmatched files are reported as unmatched instead.
	DefaultDestination string

	// DefaultOperation applies to files sent to the default destination.
	DefaultOperation rules.Operation

	// ConflictPolicy decides what happens when the destination exists.
	ConflictPolicy Policy
}

// ResolvedDestination is the outcome of resolving one file. It is produced
// once per file per invocation and consumed immediately by the caller; the
// engine itself never acts on it.
type ResolvedDestination struct {
	// Path is the destination path in the native separator convention.
	// Empty when no rule matched and no default destination is configured.
	Path string

	// RuleID identifies the matched rule; empty when no rule matched.
	RuleID string

	// Matched reports whether a rule matched (as opposed to the default
	// destination fallback).
	Matched bool

	// Action is the operation the caller should perform.
	Action Action

	// Conflict describes how a naming conflict was handled.
	Conflict Conflict

	// Warnings lists placeholders that were substituted with sentinels.
	Warnings []Warning
}

// Engine composes matching, template expansion, and conflict resolution.
// It is stateless and re-entrant; a single Engine may be shared across
// concurrent per-file invocations.
type Engine struct {
	resolver *Resolver
}

// New creates an Engine whose conflict resolver checks existence against the
// given filesystem.
func New(fs afero.Fs, opts ...ResolverOption) *Engine {
	return &Engine{resolver: NewResolver(fs, opts...)}
}

// Plan matches the file against the rule set and expands the destination
// template, without touching the filesystem. Callers that parallelize
// per-file work use Plan to learn the proposed destination, serialize on it,
// and then call Finalize; single-threaded callers use ResolveForFile.
func (e *Engine) Plan(md metadata.FileMetadata, rs *rules.RuleSet, opts Options) ResolvedDestination {
	if rule, ok := FindMatch(rs, md); ok {
		expanded, warnings := Expand(rule.DestinationPattern, md)
		return ResolvedDestination{
			Path:     filepath.FromSlash(expanded),
			RuleID:   rule.ID,
			Matched:  true,
			Action:   actionFor(rule.Operation),
			Warnings: warnings,
		}
	}

	if opts.DefaultDestination == "" {
		return ResolvedDestination{Action: ActionSkip}
	}

	// No match: default destination plus the original filename.
	name := ""
	if v, ok := md.Get(metadata.FieldFilename); ok {
		name, _ = v.AsString()
	}
	return ResolvedDestination{
		Path:   filepath.Join(opts.DefaultDestination, name),
		Action: actionFor(opts.DefaultOperation),
	}
}

// Finalize applies conflict resolution to a planned destination. The caller
// must hold whatever serialization it uses for the destination path across
// Finalize and the subsequent commit.
func (e *Engine) Finalize(planned ResolvedDestination, policy Policy) (ResolvedDestination, error) {
	if planned.Action == ActionSkip || planned.Path == "" {
		return planned, nil
	}

	final, conflict, err := e.resolver.Resolve(planned.Path, policy)
	if err != nil {
		return planned, err
	}

	planned.Path = final
	planned.Conflict = conflict
	if conflict == ConflictSkipped {
		planned.Action = ActionSkip
	}
	return planned, nil
}

// ResolveForFile runs the full pipeline for one file: match, expand, resolve
// conflicts. It returns an error only for fatal per-file conditions (a
// failed existence check or rename exhaustion); missing metadata and
// unresolvable placeholders degrade per their defined semantics instead.
func (e *Engine) ResolveForFile(md metadata.FileMetadata, rs *rules.RuleSet, opts Options) (ResolvedDestination, error) {
	return e.Finalize(e.Plan(md, rs, opts), opts.ConflictPolicy)
}

// actionFor maps a rule operation onto the caller-facing action.
func actionFor(op rules.Operation) Action {
	if op == rules.Copy {
		return ActionCopy
	}
	return ActionMove
}
