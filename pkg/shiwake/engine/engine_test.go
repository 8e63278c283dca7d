package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
	"github.com/shiwake/shiwake/pkg/shiwake/rules"
)

func photoRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	return mustRuleSet(t, []rules.Rule{
		{
			ID:                 "photos",
			Priority:           10,
			Operation:          rules.Move,
			DestinationPattern: "/sorted/Photos/{year}/{month}",
			Conditions: []rules.Condition{
				{Field: "extension", Operator: rules.OpIn, Value: []any{".jpg", ".png"}},
			},
		},
		{
			ID:                 "docs",
			Priority:           20,
			Operation:          rules.Copy,
			DestinationPattern: "/sorted/Docs",
			Conditions: []rules.Condition{
				{Field: "extension", Operator: rules.OpEquals, Value: ".pdf"},
			},
		},
	})
}

func TestResolveForFileMatch(t *testing.T) {
	eng := New(afero.NewMemMapFs())
	md := metadata.New(map[string]metadata.Value{
		metadata.FieldFilename:    metadata.String("IMG_1.jpg"),
		metadata.FieldExtension:   metadata.String(".jpg"),
		metadata.FieldCaptureDate: metadata.Time(time.Date(2023, 5, 14, 0, 0, 0, 0, time.UTC)),
	})

	got, err := eng.ResolveForFile(md, photoRules(t), Options{ConflictPolicy: PolicyRename})
	if err != nil {
		t.Fatalf("ResolveForFile() error = %v", err)
	}
	if !got.Matched || got.RuleID != "photos" {
		t.Errorf("match = %v/%s, want photos", got.Matched, got.RuleID)
	}
	want := filepath.FromSlash("/sorted/Photos/2023/05")
	if got.Path != want {
		t.Errorf("Path = %q, want %q", got.Path, want)
	}
	if got.Action != ActionMove {
		t.Errorf("Action = %v, want ActionMove", got.Action)
	}
	if got.Conflict != ConflictNone {
		t.Errorf("Conflict = %v, want ConflictNone", got.Conflict)
	}
}

func TestResolveForFileCopyOperation(t *testing.T) {
	eng := New(afero.NewMemMapFs())
	md := metadata.New(map[string]metadata.Value{
		metadata.FieldFilename:  metadata.String("paper.pdf"),
		metadata.FieldExtension: metadata.String(".pdf"),
	})

	got, err := eng.ResolveForFile(md, photoRules(t), Options{ConflictPolicy: PolicySkip})
	if err != nil {
		t.Fatalf("ResolveForFile() error = %v", err)
	}
	if got.RuleID != "docs" || got.Action != ActionCopy {
		t.Errorf("resolution = %s/%v, want docs/ActionCopy", got.RuleID, got.Action)
	}
}

func TestResolveForFileDefaultDestination(t *testing.T) {
	eng := New(afero.NewMemMapFs())
	md := metadata.New(map[string]metadata.Value{
		metadata.FieldFilename:  metadata.String("archive.zip"),
		metadata.FieldExtension: metadata.String(".zip"),
	})

	got, err := eng.ResolveForFile(md, photoRules(t), Options{
		DefaultDestination: "/sorted/Other",
		DefaultOperation:   rules.Copy,
		ConflictPolicy:     PolicyRename,
	})
	if err != nil {
		t.Fatalf("ResolveForFile() error = %v", err)
	}
	if got.Matched {
		t.Error("Matched should be false for the default destination fallback")
	}
	want := filepath.Join("/sorted/Other", "archive.zip")
	if got.Path != want {
		t.Errorf("Path = %q, want %q", got.Path, want)
	}
	if got.Action != ActionCopy {
		t.Errorf("Action = %v, want ActionCopy", got.Action)
	}
}

func TestResolveForFileUnmatchedWithoutDefault(t *testing.T) {
	eng := New(afero.NewMemMapFs())
	md := metadata.New(map[string]metadata.Value{
		metadata.FieldFilename:  metadata.String("archive.zip"),
		metadata.FieldExtension: metadata.String(".zip"),
	})

	got, err := eng.ResolveForFile(md, photoRules(t), Options{ConflictPolicy: PolicyRename})
	if err != nil {
		t.Fatalf("ResolveForFile() error = %v", err)
	}
	if got.Action != ActionSkip || got.Path != "" {
		t.Errorf("resolution = %v/%q, want skip with empty path", got.Action, got.Path)
	}
}

func TestResolveForFileConflictSkipFlipsAction(t *testing.T) {
	fsys := afero.NewMemMapFs()
	eng := New(fsys)
	md := metadata.New(map[string]metadata.Value{
		metadata.FieldFilename:    metadata.String("IMG_1.jpg"),
		metadata.FieldExtension:   metadata.String(".jpg"),
		metadata.FieldCaptureDate: metadata.Time(time.Date(2023, 5, 14, 0, 0, 0, 0, time.UTC)),
	})

	dest := filepath.FromSlash("/sorted/Photos/2023/05")
	if err := afero.WriteFile(fsys, dest, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := eng.ResolveForFile(md, photoRules(t), Options{ConflictPolicy: PolicySkip})
	if err != nil {
		t.Fatalf("ResolveForFile() error = %v", err)
	}
	if got.Conflict != ConflictSkipped || got.Action != ActionSkip {
		t.Errorf("resolution = %v/%v, want skipped", got.Conflict, got.Action)
	}
}

func TestResolveForFileCarriesWarnings(t *testing.T) {
	eng := New(afero.NewMemMapFs())
	// A matching photo with no date metadata at all.
	md := metadata.New(map[string]metadata.Value{
		metadata.FieldFilename:  metadata.String("IMG_1.jpg"),
		metadata.FieldExtension: metadata.String(".jpg"),
	})

	got, err := eng.ResolveForFile(md, photoRules(t), Options{ConflictPolicy: PolicyRename})
	if err != nil {
		t.Fatalf("ResolveForFile() error = %v", err)
	}
	want := filepath.FromSlash("/sorted/Photos/YYYY/MM")
	if got.Path != want {
		t.Errorf("Path = %q, want sentinel path %q", got.Path, want)
	}
	if len(got.Warnings) != 2 {
		t.Errorf("Warnings = %v, want year and month", got.Warnings)
	}
}
