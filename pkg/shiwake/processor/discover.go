package processor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/spf13/afero"
)

// discover collects the regular files under each path. Paths that are files
// are included directly. Hidden files (dotfiles) are skipped, matching the
// usual expectation for a downloads or pictures folder.
func (p *Processor) discover(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := p.fs.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		found, err := p.walkDir(ctx, root)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// walkDir walks one directory tree. The real filesystem uses fastwalk for
// parallel traversal; any other afero backend falls back to afero.Walk.
func (p *Processor) walkDir(ctx context.Context, root string) ([]string, error) {
	if isOSFilesystem(p.fs) {
		return walkOS(ctx, root)
	}
	return walkAfero(ctx, p.fs, root)
}

func walkOS(ctx context.Context, root string) ([]string, error) {
	conf := fastwalk.Config{
		Follow: false, // don't follow symlinks
	}

	var files []string
	collect := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || isHidden(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	}

	// fastwalk runs the callback from multiple goroutines; serialize appends.
	var mu sync.Mutex
	walkErr := fastwalk.Walk(&conf, root, fastwalk.IgnorePermissionErrors(
		func(path string, d fs.DirEntry, err error) error {
			mu.Lock()
			defer mu.Unlock()
			return collect(path, d, err)
		}))
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		return nil, walkErr
	}
	return files, ctx.Err()
}

func walkAfero(ctx context.Context, fsys afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			if path != root && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || isHidden(info.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	return files, ctx.Err()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isOSFilesystem reports whether the afero backend is the real OS
// filesystem.
func isOSFilesystem(fsys afero.Fs) bool {
	switch fsys.(type) {
	case *afero.OsFs, afero.OsFs:
		return true
	default:
		return false
	}
}
