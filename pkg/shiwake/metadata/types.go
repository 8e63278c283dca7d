// Package metadata provides the typed, read-only view of a file's attributes
// that organization rules are matched against. A FileMetadata value is built
// once per file by the extractor and is immutable afterwards; absence of a
// field is a first-class state, distinct from an empty string or a zero value.
package metadata

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Well-known field names produced by the extractor. Rules may also reference
// extractor-defined optional fields not listed here.
const (
	FieldFilename     = "filename"
	FieldExtension    = "extension"
	FieldSize         = "size"
	FieldCreatedDate  = "created_date"
	FieldModifiedDate = "modified_date"
	FieldCaptureDate  = "capture_date"
	FieldCamera       = "camera"
)

// Kind identifies the type carried by a Value.
type Kind int

const (
	// KindString is a text value such as a filename or camera model.
	KindString Kind = iota
	// KindInt is an integer value such as a file size in bytes.
	KindInt
	// KindTime is a timestamp value such as a capture date.
	KindTime
	// KindStrings is a sequence of text values such as keyword tags.
	KindStrings
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindTime:
		return "time"
	case KindStrings:
		return "strings"
	default:
		return "unknown"
	}
}

// Value is a single typed metadata value. The zero Value is not valid;
// construct values with String, Int, Time, or Strings.
type Value struct {
	kind Kind
	str  string
	num  int64
	time time.Time
	list []string
}

// String constructs a text value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Int constructs an integer value.
func Int(n int64) Value {
	return Value{kind: KindInt, num: n}
}

// Time constructs a timestamp value.
func Time(t time.Time) Value {
	return Value{kind: KindTime, time: t}
}

// Strings constructs a sequence value. The input slice is copied.
func Strings(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: KindStrings, list: list}
}

// Kind returns the type carried by the value.
func (v Value) Kind() Kind {
	return v.kind
}

// AsString returns the text value and whether the value is text.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsInt returns the integer value and whether the value is an integer.
func (v Value) AsInt() (int64, bool) {
	return v.num, v.kind == KindInt
}

// AsTime returns the timestamp value and whether the value is a timestamp.
func (v Value) AsTime() (time.Time, bool) {
	return v.time, v.kind == KindTime
}

// AsStrings returns the sequence value and whether the value is a sequence.
// The returned slice must not be modified.
func (v Value) AsStrings() ([]string, bool) {
	return v.list, v.kind == KindStrings
}

// Display returns the canonical string form of the value, used for string
// comparisons and template expansion. Timestamps render as RFC 3339.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindTime:
		return v.time.Format(time.RFC3339)
	case KindStrings:
		out := ""
		for i, s := range v.list {
			if i > 0 {
				out += ","
			}
			out += s
		}
		return out
	default:
		return ""
	}
}

// valueJSON is the serialized form of a Value for cache and history storage.
type valueJSON struct {
	Kind   string    `json:"kind"`
	String string    `json:"string,omitempty"`
	Int    int64     `json:"int,omitempty"`
	Time   time.Time `json:"time,omitzero"`
	List   []string  `json:"list,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: v.kind.String()}
	switch v.kind {
	case KindString:
		out.String = v.str
	case KindInt:
		out.Int = v.num
	case KindTime:
		out.Time = v.time
	case KindStrings:
		out.List = v.list
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "string":
		*v = String(in.String)
	case "int":
		*v = Int(in.Int)
	case "time":
		*v = Time(in.Time)
	case "strings":
		*v = Strings(in.List...)
	default:
		return fmt.Errorf("unknown value kind %q", in.Kind)
	}
	return nil
}

// FileMetadata is an immutable mapping from field name to typed value for a
// single file. It is safe for concurrent read access.
type FileMetadata struct {
	fields map[string]Value
}

// New constructs a FileMetadata from the given fields. The map is copied, so
// the caller may reuse it afterwards. A nil map yields metadata with every
// field absent, which is the defined representation of a failed extraction.
func New(fields map[string]Value) FileMetadata {
	copied := make(map[string]Value, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return FileMetadata{fields: copied}
}

// Get returns the value for a field and whether the field is present.
func (m FileMetadata) Get(field string) (Value, bool) {
	v, ok := m.fields[field]
	return v, ok
}

// Has reports whether the field is present.
func (m FileMetadata) Has(field string) bool {
	_, ok := m.fields[field]
	return ok
}

// Fields returns the present field names in sorted order.
func (m FileMetadata) Fields() []string {
	names := make([]string, 0, len(m.fields))
	for name := range m.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of present fields.
func (m FileMetadata) Len() int {
	return len(m.fields)
}
