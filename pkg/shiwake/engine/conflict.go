package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Policy is the configured strategy for a destination path that already
// exists.
type Policy int

const (
	// PolicySkip leaves the file at its source.
	PolicySkip Policy = iota
	// PolicyOverwrite keeps the path unchanged; the downstream file
	// operation replaces the existing target.
	PolicyOverwrite
	// PolicyRename probes numbered alternatives until a free path is found.
	PolicyRename
)

// String returns the wire name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyOverwrite:
		return "overwrite"
	case PolicyRename:
		return "rename"
	default:
		return "skip"
	}
}

// ErrInvalidPolicy indicates an unrecognized conflict policy name.
var ErrInvalidPolicy = errors.New("invalid conflict policy")

// ParsePolicy parses a wire name into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "skip":
		return PolicySkip, nil
	case "overwrite":
		return PolicyOverwrite, nil
	case "rename":
		return PolicyRename, nil
	default:
		return PolicySkip, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Conflict describes how a naming conflict at the destination was handled.
type Conflict int

const (
	// ConflictNone means the destination did not exist.
	ConflictNone Conflict = iota
	// ConflictRenamed means a numbered suffix was appended.
	ConflictRenamed
	// ConflictSkipped means the file is left at its source.
	ConflictSkipped
	// ConflictOverwritten means the existing target will be replaced.
	ConflictOverwritten
)

// String returns the wire name of the conflict outcome.
func (c Conflict) String() string {
	switch c {
	case ConflictRenamed:
		return "renamed"
	case ConflictSkipped:
		return "skipped"
	case ConflictOverwritten:
		return "overwritten"
	default:
		return "none"
	}
}

// DefaultMaxRenameAttempts bounds the rename probe loop. Exceeding it is a
// fatal error for the single file, never for the batch.
const DefaultMaxRenameAttempts = 10000

// ErrConflictExhausted is returned when the rename loop bound is exceeded.
var ErrConflictExhausted = errors.New("no free destination path found")

// Resolver decides the final destination for a proposed path under a conflict
// policy. Its only I/O is read-only existence checks against the injected
// filesystem, so tests can run it entirely against an in-memory fake.
// Callers that process files concurrently must serialize Resolve and the
// subsequent commit per destination path.
type Resolver struct {
	fs          afero.Fs
	maxAttempts int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxRenameAttempts overrides the rename loop bound.
func WithMaxRenameAttempts(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// NewResolver creates a Resolver over the given filesystem.
func NewResolver(fs afero.Fs, opts ...ResolverOption) *Resolver {
	r := &Resolver{fs: fs, maxAttempts: DefaultMaxRenameAttempts}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the final path and conflict outcome for the proposed
// destination. When the destination does not exist the path passes through
// unchanged. Under PolicyRename the returned path is guaranteed free at the
// time of the check; the rename suffix is "name(N).ext" with N starting at 1.
func (r *Resolver) Resolve(dest string, policy Policy) (string, Conflict, error) {
	exists, err := afero.Exists(r.fs, dest)
	if err != nil {
		return "", ConflictNone, fmt.Errorf("checking destination %q: %w", dest, err)
	}
	if !exists {
		return dest, ConflictNone, nil
	}

	switch policy {
	case PolicySkip:
		return dest, ConflictSkipped, nil
	case PolicyOverwrite:
		return dest, ConflictOverwritten, nil
	case PolicyRename:
		return r.rename(dest)
	default:
		return "", ConflictNone, fmt.Errorf("%w: %d", ErrInvalidPolicy, int(policy))
	}
}

// rename probes numbered alternatives for an occupied destination.
func (r *Resolver) rename(dest string) (string, Conflict, error) {
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)

	for n := 1; n <= r.maxAttempts; n++ {
		candidate := fmt.Sprintf("%s(%d)%s", stem, n, ext)
		exists, err := afero.Exists(r.fs, candidate)
		if err != nil {
			return "", ConflictNone, fmt.Errorf("checking destination %q: %w", candidate, err)
		}
		if !exists {
			return candidate, ConflictRenamed, nil
		}
	}

	return "", ConflictNone, fmt.Errorf("%w: %q after %d attempts",
		ErrConflictExhausted, dest, r.maxAttempts)
}
