package metadata

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValueAccessors(t *testing.T) {
	when := time.Date(2023, 5, 14, 10, 30, 0, 0, time.UTC)

	s := String("hello")
	if got, ok := s.AsString(); !ok || got != "hello" {
		t.Errorf("AsString() = %q, %v", got, ok)
	}
	if _, ok := s.AsInt(); ok {
		t.Error("AsInt() on a string value should fail")
	}

	n := Int(42)
	if got, ok := n.AsInt(); !ok || got != 42 {
		t.Errorf("AsInt() = %d, %v", got, ok)
	}

	ts := Time(when)
	if got, ok := ts.AsTime(); !ok || !got.Equal(when) {
		t.Errorf("AsTime() = %v, %v", got, ok)
	}

	l := Strings("a", "b")
	if got, ok := l.AsStrings(); !ok || len(got) != 2 {
		t.Errorf("AsStrings() = %v, %v", got, ok)
	}
}

func TestValueDisplay(t *testing.T) {
	when := time.Date(2023, 5, 14, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "string", value: String("x.jpg"), want: "x.jpg"},
		{name: "int", value: Int(1024), want: "1024"},
		{name: "time", value: Time(when), want: "2023-05-14T10:30:00Z"},
		{name: "list", value: Strings("a", "b"), want: "a, b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	when := time.Date(2023, 5, 14, 10, 30, 0, 0, time.UTC)
	values := map[string]Value{
		"s": String("photo"),
		"n": Int(99),
		"t": Time(when),
		"l": Strings("one", "two"),
	}

	for name, v := range values {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var back Value
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back.Kind() != v.Kind() {
				t.Errorf("Kind = %v, want %v", back.Kind(), v.Kind())
			}
			if back.Display() != v.Display() {
				t.Errorf("Display = %q, want %q", back.Display(), v.Display())
			}
		})
	}
}

func TestFileMetadata(t *testing.T) {
	md := New(map[string]Value{
		FieldFilename: String("a.txt"),
		FieldSize:     Int(10),
	})

	if md.Len() != 2 {
		t.Errorf("Len() = %d, want 2", md.Len())
	}
	if !md.Has(FieldFilename) {
		t.Error("Has(filename) = false")
	}
	if md.Has(FieldCamera) {
		t.Error("Has(camera) = true, want false")
	}
	if v, ok := md.Get(FieldSize); !ok {
		t.Error("Get(size) not found")
	} else if n, _ := v.AsInt(); n != 10 {
		t.Errorf("size = %d, want 10", n)
	}

	fields := md.Fields()
	if len(fields) != 2 || fields[0] != FieldFilename || fields[1] != FieldSize {
		t.Errorf("Fields() = %v, want sorted [filename size]", fields)
	}
}

func TestFileMetadataEmpty(t *testing.T) {
	md := New(nil)
	if md.Len() != 0 {
		t.Errorf("Len() = %d, want 0", md.Len())
	}
	if _, ok := md.Get(FieldFilename); ok {
		t.Error("Get on empty metadata should report absent")
	}
}

func TestNewCopiesInput(t *testing.T) {
	src := map[string]Value{FieldFilename: String("a")}
	md := New(src)
	src[FieldFilename] = String("mutated")

	v, _ := md.Get(FieldFilename)
	if got, _ := v.AsString(); got != "a" {
		t.Errorf("metadata observed caller mutation: %q", got)
	}
}
