package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "shiwake [path...]",
		Short: "Organize files into folders by rule",
		Long: `Shiwake sorts files into destination folders based on a set of rules.

Each rule matches on file metadata (name, extension, size, dates, camera
model) and names a destination pattern with placeholders like {year}/{month}.
The first matching rule wins; files nothing matches go to the configured
default destination.

Runs are previews by default: pass --apply to actually move or copy files.

Examples:
  shiwake ~/Downloads              # Preview organizing Downloads
  shiwake --apply ~/Downloads      # Actually move/copy the files
  shiwake -f json ~/Pictures       # Machine-readable report
  shiwake watch ~/Downloads        # Organize new files as they appear
  shiwake rules list               # Show the loaded rules
  shiwake history                  # View past runs`,
		Args: cobra.ArbitraryArgs,
		RunE: runOrganize,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/shiwake/config.yaml)")
	rootCmd.PersistentFlags().StringP("rules", "r", "", "rules file (default from config)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Run flags
	rootCmd.Flags().Bool("apply", false, "actually move/copy files instead of previewing")
	rootCmd.Flags().StringP("destination", "d", "", "default destination for unmatched files")
	rootCmd.Flags().String("conflict", "", "conflict policy: skip, overwrite, rename")
	rootCmd.Flags().IntP("workers", "w", 0, "worker count (0 uses config)")
	rootCmd.Flags().StringP("format", "f", "pretty", "output format: pretty, plain, json, jsonl")
	rootCmd.Flags().Bool("no-cache", false, "bypass the metadata cache")

	// Bind flags to viper
	_ = viper.BindPFlag("rules_path", rootCmd.PersistentFlags().Lookup("rules"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("conflict_policy", rootCmd.Flags().Lookup("conflict"))
	_ = viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("no_cache", rootCmd.Flags().Lookup("no-cache"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "shiwake"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "shiwake"))
		}
	}

	viper.SetEnvPrefix("SHIWAKE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
