// Package fileops performs the physical move and copy operations that commit
// a resolved destination. It creates intermediate directories, refuses to
// clobber an existing target unless told to overwrite, and preserves
// modification times on copy. The filesystem is injected so the package can
// be exercised against an in-memory fake.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// flagCreateTrunc opens the destination for writing, creating or truncating.
const flagCreateTrunc = os.O_WRONLY | os.O_CREATE | os.O_TRUNC

// ErrSourceMissing indicates the source file disappeared before the commit.
var ErrSourceMissing = errors.New("source file does not exist")

// ErrDestinationExists indicates the destination is occupied and overwrite
// was not requested. Callers normally never see this: the conflict resolver
// runs first, and the commit is serialized with it per destination path.
var ErrDestinationExists = errors.New("destination already exists")

// Ops commits file operations against a filesystem.
type Ops struct {
	fs afero.Fs
}

// New creates an Ops over the given filesystem.
func New(fs afero.Fs) *Ops {
	return &Ops{fs: fs}
}

// Move relocates src to dst, creating intermediate directories. A plain
// rename is attempted first; when that fails (typically a cross-device move)
// it falls back to copy-then-delete.
func (o *Ops) Move(src, dst string, overwrite bool) error {
	if err := o.precheck(src, dst, overwrite); err != nil {
		return err
	}
	if err := o.ensureParent(dst); err != nil {
		return err
	}

	if err := o.fs.Rename(src, dst); err == nil {
		return nil
	}

	if err := o.copyFile(src, dst); err != nil {
		return fmt.Errorf("moving %q to %q: %w", src, dst, err)
	}
	if err := o.fs.Remove(src); err != nil {
		return fmt.Errorf("removing source %q after copy: %w", src, err)
	}
	return nil
}

// Copy duplicates src at dst, creating intermediate directories and
// preserving the source modification time.
func (o *Ops) Copy(src, dst string, overwrite bool) error {
	if err := o.precheck(src, dst, overwrite); err != nil {
		return err
	}
	if err := o.ensureParent(dst); err != nil {
		return err
	}
	if err := o.copyFile(src, dst); err != nil {
		return fmt.Errorf("copying %q to %q: %w", src, dst, err)
	}
	return nil
}

// precheck verifies the source exists and the destination is writable under
// the overwrite setting.
func (o *Ops) precheck(src, dst string, overwrite bool) error {
	if ok, err := afero.Exists(o.fs, src); err != nil {
		return fmt.Errorf("checking source %q: %w", src, err)
	} else if !ok {
		return fmt.Errorf("%w: %q", ErrSourceMissing, src)
	}

	if !overwrite {
		if ok, err := afero.Exists(o.fs, dst); err != nil {
			return fmt.Errorf("checking destination %q: %w", dst, err)
		} else if ok {
			return fmt.Errorf("%w: %q", ErrDestinationExists, dst)
		}
	}
	return nil
}

// ensureParent creates the destination's parent directory.
func (o *Ops) ensureParent(dst string) error {
	dir := filepath.Dir(dst)
	if err := o.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}
	return nil
}

// copyFile copies file contents and carries over mode and mtime.
func (o *Ops) copyFile(src, dst string) error {
	info, err := o.fs.Stat(src)
	if err != nil {
		return err
	}

	in, err := o.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := o.fs.OpenFile(dst, flagCreateTrunc, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = o.fs.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return o.fs.Chtimes(dst, info.ModTime(), info.ModTime())
}
