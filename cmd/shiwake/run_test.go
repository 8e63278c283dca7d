package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func newApplyCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("apply", false, "")
	return cmd
}

func TestPreviewMode(t *testing.T) {
	tests := []struct {
		name          string
		configPreview bool
		applyFlag     string // "" means not passed
		want          bool
	}{
		{name: "defaults preview", configPreview: true, want: true},
		{name: "config disables preview without apply", configPreview: false, want: false},
		{name: "apply commits", configPreview: true, applyFlag: "true", want: false},
		{name: "explicit apply=false previews", configPreview: false, applyFlag: "false", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newApplyCommand(t)
			if tt.applyFlag != "" {
				if err := cmd.Flags().Set("apply", tt.applyFlag); err != nil {
					t.Fatal(err)
				}
			}
			if got := previewMode(tt.configPreview, cmd); got != tt.want {
				t.Errorf("previewMode(%t) = %t, want %t", tt.configPreview, got, tt.want)
			}
		})
	}
}

func TestPreviewModeWithoutApplyFlag(t *testing.T) {
	// Commands that define no --apply flag follow the config.
	cmd := &cobra.Command{Use: "test"}
	if !previewMode(true, cmd) {
		t.Error("previewMode(true) = false without an apply flag")
	}
	if previewMode(false, cmd) {
		t.Error("previewMode(false) = true without an apply flag")
	}
}
