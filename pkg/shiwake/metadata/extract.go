package metadata

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// imageExtensions lists extensions for which EXIF extraction is attempted.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".png":  true,
}

// Extractor reads filesystem and image metadata for a file. The filesystem is
// injected so extraction can run against an in-memory fake in tests.
type Extractor struct {
	fs afero.Fs
}

// NewExtractor creates an Extractor over the given filesystem.
func NewExtractor(fs afero.Fs) *Extractor {
	return &Extractor{fs: fs}
}

// Extract builds the metadata for one file.
//
// A failed stat returns metadata with all domain fields absent together with
// the error, so rules requiring those fields simply do not match. EXIF
// failures are not errors: image fields stay absent and extraction continues
// with filesystem attributes only.
func (e *Extractor) Extract(path string) (FileMetadata, error) {
	info, err := e.fs.Stat(path)
	if err != nil {
		return New(nil), fmt.Errorf("stat %q: %w", path, err)
	}

	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	fields := map[string]Value{
		FieldFilename:     String(name),
		FieldExtension:    String(ext),
		FieldSize:         Int(info.Size()),
		FieldModifiedDate: Time(info.ModTime()),
	}

	// Creation time is only available on some platforms and only for the
	// real filesystem; absent otherwise.
	if e.isOSFilesystem() {
		if btime, ok := birthtime(path); ok {
			fields[FieldCreatedDate] = Time(btime)
		}
	}

	if imageExtensions[ext] {
		e.extractImage(path, fields)
	}

	return New(fields), nil
}

// isOSFilesystem reports whether the injected filesystem is the real one.
func (e *Extractor) isOSFilesystem() bool {
	switch e.fs.(type) {
	case *afero.OsFs, afero.OsFs:
		return true
	default:
		return false
	}
}
