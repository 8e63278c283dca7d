package metadata

import (
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// extractImage reads EXIF tags and adds capture_date and camera to fields.
// Any failure leaves the image fields absent; many files carry no EXIF block
// at all and that is not an error.
func (e *Extractor) extractImage(path string, fields map[string]Value) {
	f, err := e.fs.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return
	}

	// DateTimeOriginal with a fall back to DateTimeDigitized and DateTime.
	if captured, err := x.DateTime(); err == nil {
		fields[FieldCaptureDate] = Time(captured)
	}

	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil {
			model = strings.TrimSpace(model)
			if model != "" {
				fields[FieldCamera] = String(model)
			}
		}
	}
}
