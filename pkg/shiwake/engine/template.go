package engine

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
)

// Sentinel substituted for a placeholder whose field is absent. Date tokens
// use per-token sentinels (YYYY, MM, ...) so a partially dated path stays
// readable; everything else falls back to this.
const unresolvedSentinel = "unknown"

// dateSentinels are the substitutes for date-derived tokens when neither
// capture_date nor modified_date is present.
var dateSentinels = map[string]string{
	"year":   "YYYY",
	"month":  "MM",
	"day":    "DD",
	"hour":   "HH",
	"minute": "mm",
	"second": "ss",
}

// Warning records a placeholder that could not be resolved and the sentinel
// substituted for it. Warnings never abort processing; they are carried on
// the per-file result so the caller can flag the file.
type Warning struct {
	Placeholder string
	Sentinel    string
}

// String returns a human-readable description of the warning.
func (w Warning) String() string {
	return fmt.Sprintf("placeholder {%s} unresolved, substituted %q", w.Placeholder, w.Sentinel)
}

// Expand expands the placeholder tokens of a destination pattern against the
// file's metadata and returns the literal path with forward-slash separators.
//
// Date tokens ({year} {month} {day} {hour} {minute} {second}) derive from
// capture_date, falling back to modified_date when no capture metadata is
// present. Any other token resolves to the metadata field of the same name;
// {extension} is rendered without its leading dot and {filename} without its
// extension. Substituted values are sanitized for path safety. An
// unresolvable token is replaced by a sentinel and reported as a Warning
// rather than failing the file.
//
// Expansion is deterministic: it reads no clock and no filesystem, so the
// same pattern and metadata always produce the same path.
func Expand(pattern string, md metadata.FileMetadata) (string, []Warning) {
	pattern = strings.ReplaceAll(pattern, "\\", "/")

	var (
		out      strings.Builder
		warnings []Warning
	)

	for i := 0; i < len(pattern); {
		if pattern[i] != '{' {
			out.WriteByte(pattern[i])
			i++
			continue
		}
		end := strings.IndexByte(pattern[i:], '}')
		if end < 0 {
			// Unterminated brace: keep the rest literally.
			out.WriteString(pattern[i:])
			break
		}
		token := pattern[i+1 : i+end]
		value, ok := resolveToken(token, md)
		if !ok {
			warnings = append(warnings, Warning{Placeholder: token, Sentinel: value})
		}
		out.WriteString(value)
		i += end + 1
	}

	return cleanPath(out.String()), warnings
}

// resolveToken resolves one placeholder token. ok is false when a sentinel
// was substituted.
func resolveToken(token string, md metadata.FileMetadata) (string, bool) {
	if sentinel, isDate := dateSentinels[token]; isDate {
		t, ok := templateDate(md)
		if !ok {
			return sentinel, false
		}
		return formatDateToken(token, t), true
	}

	v, ok := md.Get(token)
	if !ok {
		return unresolvedSentinel, false
	}

	s := v.Display()
	switch token {
	case metadata.FieldExtension:
		s = strings.TrimPrefix(s, ".")
	case metadata.FieldFilename:
		if ext := path.Ext(s); ext != "" {
			s = strings.TrimSuffix(s, ext)
		}
	}

	s = sanitize(s)
	if s == "" {
		return unresolvedSentinel, false
	}
	return s, true
}

// templateDate returns the date that date-derived tokens are computed from:
// capture_date when present, otherwise modified_date.
func templateDate(md metadata.FileMetadata) (time.Time, bool) {
	if v, ok := md.Get(metadata.FieldCaptureDate); ok {
		if t, ok := v.AsTime(); ok {
			return t, true
		}
	}
	if v, ok := md.Get(metadata.FieldModifiedDate); ok {
		if t, ok := v.AsTime(); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatDateToken renders one date component with fixed zero-padded width.
func formatDateToken(token string, t time.Time) string {
	switch token {
	case "year":
		return fmt.Sprintf("%04d", t.Year())
	case "month":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "day":
		return fmt.Sprintf("%02d", t.Day())
	case "hour":
		return fmt.Sprintf("%02d", t.Hour())
	case "minute":
		return fmt.Sprintf("%02d", t.Minute())
	default:
		return fmt.Sprintf("%02d", t.Second())
	}
}

// sanitize strips characters that are unsafe in directory names, keeping
// letters, digits, '-', '_', '.', and spaces, and trims surrounding space.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) ||
			r == '-' || r == '_' || r == '.' || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// cleanPath collapses duplicate slashes without touching a leading one.
func cleanPath(p string) string {
	if p == "" {
		return p
	}
	cleaned := path.Clean(p)
	// path.Clean turns "" into "." which is never a useful destination.
	if cleaned == "." {
		return ""
	}
	return cleaned
}
