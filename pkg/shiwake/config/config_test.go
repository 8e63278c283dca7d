package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultDestination != filepath.Join(home, "Unsorted") {
		t.Errorf("DefaultDestination = %q", cfg.DefaultDestination)
	}
	if cfg.ConflictPolicy != "rename" {
		t.Errorf("ConflictPolicy = %q, want rename", cfg.ConflictPolicy)
	}
	if cfg.DefaultOperation != "copy" {
		t.Errorf("DefaultOperation = %q, want copy", cfg.DefaultOperation)
	}
	if !cfg.Preview {
		t.Error("Preview = false, want preview by default")
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.RulesPath != filepath.Join(home, ".config", "shiwake", "rules.json") {
		t.Errorf("RulesPath = %q", cfg.RulesPath)
	}
	if !cfg.Cache.Enabled || !cfg.History.Enabled {
		t.Error("cache and history should default to enabled")
	}
	if cfg.History.RetentionDays != DefaultRetentionDays {
		t.Errorf("RetentionDays = %d", cfg.History.RetentionDays)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	dir := filepath.Join(home, ".config", "shiwake")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
conflict_policy: skip
preview: false
workers: 8
history:
  retention_days: 7
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConflictPolicy != "skip" {
		t.Errorf("ConflictPolicy = %q, want skip", cfg.ConflictPolicy)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7", cfg.History.RetentionDays)
	}
	if cfg.Preview {
		t.Error("Preview = true, config file should disable it")
	}
	// Values the file does not set keep their defaults.
	if cfg.DefaultOperation != "copy" {
		t.Errorf("DefaultOperation = %q, want copy", cfg.DefaultOperation)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("SHIWAKE_CONFLICT_POLICY", "overwrite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ConflictPolicy != "overwrite" {
		t.Errorf("ConflictPolicy = %q, want overwrite from env", cfg.ConflictPolicy)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		input string
		want  string
	}{
		{input: "~/Pictures", want: filepath.Join(home, "Pictures")},
		{input: "~", want: home},
		{input: "/absolute/path", want: "/absolute/path"},
		{input: "relative", want: "relative"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != filepath.Join("/custom/xdg", "shiwake") {
		t.Errorf("ConfigDir() = %q", dir)
	}
}

func TestWriteDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	path := filepath.Join(home, ".config", "shiwake", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	if len(data) == 0 {
		t.Error("config file is empty")
	}

	// A second call must not clobber an edited file.
	if err := os.WriteFile(path, []byte("workers: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() second call error = %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "workers: 99\n" {
		t.Error("WriteDefault() overwrote an existing config file")
	}
}
