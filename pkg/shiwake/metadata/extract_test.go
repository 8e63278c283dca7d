package metadata

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestExtract(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := []byte("hello world")
	if err := afero.WriteFile(fsys, "/in/Report FINAL.PDF", content, 0o644); err != nil {
		t.Fatal(err)
	}
	modTime := time.Date(2023, 5, 14, 10, 0, 0, 0, time.UTC)
	if err := fsys.Chtimes("/in/Report FINAL.PDF", modTime, modTime); err != nil {
		t.Fatal(err)
	}

	md, err := NewExtractor(fsys).Extract("/in/Report FINAL.PDF")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if v, _ := md.Get(FieldFilename); v.Display() != "Report FINAL.PDF" {
		t.Errorf("filename = %q", v.Display())
	}
	if v, _ := md.Get(FieldExtension); v.Display() != ".pdf" {
		t.Errorf("extension = %q, want lowercased .pdf", v.Display())
	}
	if v, _ := md.Get(FieldSize); v.Display() != "11" {
		t.Errorf("size = %q, want 11", v.Display())
	}
	if v, ok := md.Get(FieldModifiedDate); !ok {
		t.Error("modified_date absent")
	} else if ts, _ := v.AsTime(); !ts.Equal(modTime) {
		t.Errorf("modified_date = %v, want %v", ts, modTime)
	}

	// Not an image and not the real filesystem: no capture, camera, or
	// creation metadata.
	for _, field := range []string{FieldCaptureDate, FieldCamera, FieldCreatedDate} {
		if md.Has(field) {
			t.Errorf("%s should be absent", field)
		}
	}
}

func TestExtractMissingFile(t *testing.T) {
	md, err := NewExtractor(afero.NewMemMapFs()).Extract("/gone.txt")
	if err == nil {
		t.Fatal("Extract() of missing file should error")
	}
	// Degraded metadata still works for matching.
	if md.Len() != 0 {
		t.Errorf("Len() = %d, want empty metadata", md.Len())
	}
}

// A .jpg with no real EXIF data still extracts filesystem fields; image
// fields just stay absent.
func TestExtractImageWithoutEXIF(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/in/broken.jpg", []byte("not a real jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	md, err := NewExtractor(fsys).Extract("/in/broken.jpg")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !md.Has(FieldFilename) || !md.Has(FieldSize) {
		t.Error("filesystem fields should be present")
	}
	if md.Has(FieldCaptureDate) || md.Has(FieldCamera) {
		t.Error("EXIF fields should be absent for a broken image")
	}
}
