package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// Document is the on-disk shape of a rules file.
type Document struct {
	Rules []Rule `json:"rules"`
}

// Load reads and validates a rules file. A missing file is an error; an
// empty rules list is valid and matches nothing (every file falls through to
// the default destination).
func Load(fsys afero.Fs, path string) (*RuleSet, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %q: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules file %q: %w", path, err)
	}

	rs, err := NewRuleSet(doc.Rules)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// Save writes the rule set to a rules file atomically using a temp file and
// rename, preserving the previous file on failure.
func Save(fsys afero.Fs, path string, rs *RuleSet) error {
	doc := Document{Rules: rs.Rules()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing rules file: %w", err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("replacing rules file: %w", err)
	}
	return nil
}

// IsNotExist reports whether the load error means the rules file is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
