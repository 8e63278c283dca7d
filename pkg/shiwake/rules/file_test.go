package rules

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

const sampleRules = `{
  "rules": [
    {
      "id": "photos",
      "name": "Photos by month",
      "priority": 10,
      "operation": "move",
      "destination_pattern": "Pictures/{year}/{month}",
      "conditions": [
        {"field": "extension", "operator": "in", "value": [".jpg", ".png"]}
      ]
    },
    {
      "id": "big-files",
      "name": "Large files",
      "priority": 5,
      "operation": "copy",
      "destination_pattern": "Big",
      "conditions": [
        {"field": "size", "operator": "greater_than", "value": 1048576}
      ]
    }
  ]
}`

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/rules.json", []byte(sampleRules), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(fsys, "/rules.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rs.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rs.Len())
	}
	// Priority 5 sorts first.
	if rs.Rules()[0].ID != "big-files" {
		t.Errorf("rules[0].ID = %s, want big-files", rs.Rules()[0].ID)
	}
	if rs.Rules()[1].Operation != Move {
		t.Errorf("rules[1].Operation = %v, want Move", rs.Rules()[1].Operation)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.json")
	if err == nil {
		t.Fatal("Load() of missing file should error")
	}
	if !IsNotExist(err) {
		t.Errorf("IsNotExist(%v) = false, want true", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/rules.json", []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(fsys, "/rules.json"); err == nil {
		t.Fatal("Load() of malformed JSON should error")
	}
}

func TestLoadUnknownOperator(t *testing.T) {
	fsys := afero.NewMemMapFs()
	doc := `{"rules": [{"id": "r", "destination_pattern": "x",
		"conditions": [{"field": "size", "operator": "approximately", "value": 3}]}]}`
	if err := afero.WriteFile(fsys, "/rules.json", []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(fsys, "/rules.json")
	if !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("Load() error = %v, want ErrInvalidOperator", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	rs, err := NewRuleSet([]Rule{
		{ID: "r", Name: "rule", Priority: 1, Operation: Copy, DestinationPattern: "Docs/{year}",
			Conditions: []Condition{
				{Field: "extension", Operator: OpEquals, Value: ".pdf"},
			}},
	})
	if err != nil {
		t.Fatalf("NewRuleSet() error = %v", err)
	}

	if err := Save(fsys, "/dir/rules.json", rs); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(fsys, "/dir/rules.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", loaded.Len())
	}
	got := loaded.Rules()[0]
	if got.ID != "r" || got.Operation != Copy || got.DestinationPattern != "Docs/{year}" {
		t.Errorf("loaded rule = %+v", got)
	}
}
