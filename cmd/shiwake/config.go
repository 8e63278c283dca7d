package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shiwake/shiwake/pkg/shiwake/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and edit the shiwake configuration file.`,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long:  `Write a default config file if none exists. Existing files are left alone.`,
	RunE:  runConfigInit,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in $EDITOR",
	RunE:  runConfigEdit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	printInfo("default_destination: %s", cfg.DefaultDestination)
	printInfo("conflict_policy:     %s", cfg.ConflictPolicy)
	printInfo("default_operation:   %s", cfg.DefaultOperation)
	printInfo("rules_path:          %s", cfg.RulesPath)
	printInfo("workers:             %d", cfg.Workers)
	printInfo("cache:               enabled=%t path=%s", cfg.Cache.Enabled, cfg.Cache.Path)
	printInfo("history:             enabled=%t path=%s retention=%dd",
		cfg.History.Enabled, cfg.History.Path, cfg.History.RetentionDays)
	printInfo("logging:             level=%s path=%s", cfg.Logging.Level, cfg.Logging.Path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(dir, "config.yaml"))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return err
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	printInfo("Config at %s", filepath.Join(dir, "config.yaml"))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	if err := config.WriteDefault(); err != nil {
		return err
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	c := exec.Command(editor, filepath.Join(dir, "config.yaml"))
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
