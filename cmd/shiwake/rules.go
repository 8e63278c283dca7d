package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shiwake/shiwake/pkg/shiwake/config"
	"github.com/shiwake/shiwake/pkg/shiwake/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage organization rules",
	Long:  `List, validate, and bootstrap the JSON rules file.`,
	RunE:  runRulesList,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the loaded rules",
	Long:  `Show every rule in priority order, the order they are matched in.`,
	RunE:  runRulesList,
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a rules file",
	Long: `Check a rules file for problems: unknown operators, malformed
condition values, duplicate ids, and bad glob patterns. All problems are
reported at once.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesValidate,
}

var rulesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter rules file",
	Long:  `Write a starter rules file with common rules for pictures and documents.`,
	RunE:  runRulesInit,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesInitCmd)
	rootCmd.AddCommand(rulesCmd)
}

// rulesPath resolves the rules file location from flag or config.
func rulesPath() (string, error) {
	if v := viper.GetString("rules_path"); v != "" {
		return config.ExpandPath(v)
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.RulesPath, nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	path, err := rulesPath()
	if err != nil {
		return err
	}

	ruleset, err := rules.Load(afero.NewOsFs(), path)
	if err != nil {
		if rules.IsNotExist(err) {
			printInfo("No rules file at %s", path)
			printInfo("Run 'shiwake rules init' to create one.")
			return nil
		}
		return err
	}

	if ruleset.Len() == 0 {
		printInfo("No rules defined in %s", path)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tID\tNAME\tOP\tCONDITIONS\tDESTINATION")
	for _, r := range ruleset.Rules() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			r.Priority, r.ID, r.Name, r.Operation, len(r.Conditions), r.DestinationPattern)
	}
	return tw.Flush()
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		var err error
		path, err = rulesPath()
		if err != nil {
			return err
		}
	}

	ruleset, err := rules.Load(afero.NewOsFs(), path)
	if err != nil {
		printError("%v", err)
		return err
	}

	printInfo("%s: %d rules OK", path, ruleset.Len())
	return nil
}

func runRulesInit(cmd *cobra.Command, args []string) error {
	path, err := rulesPath()
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	if exists, _ := afero.Exists(fsys, path); exists {
		printInfo("Rules file already exists at %s", path)
		return nil
	}

	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	starter, err := rules.NewRuleSet(starterRules(home))
	if err != nil {
		return err
	}
	if err := rules.Save(fsys, path, starter); err != nil {
		return err
	}

	printInfo("Created %s with %d starter rules", path, starter.Len())
	printInfo("Edit it to match your folders, then run 'shiwake rules validate'.")
	return nil
}

// starterRules returns a small set of rules that cover the common cases:
// screenshots, photos by capture date, and documents. Destination patterns
// are full file paths, so each one ends in {filename}.{extension}.
func starterRules(home string) []rules.Rule {
	dest := func(sub string) string {
		return filepath.ToSlash(filepath.Join(home, sub)) + "/{filename}.{extension}"
	}
	return []rules.Rule{
		{
			ID:                 "screenshots",
			Name:               "Screenshots",
			Priority:           10,
			Operation:          rules.Move,
			DestinationPattern: dest("Pictures/Screenshots/{year}"),
			Conditions: []rules.Condition{
				{Field: "filename", Operator: rules.OpContains, Value: "Screenshot"},
			},
		},
		{
			ID:                 "photos",
			Name:               "Photos by month",
			Priority:           20,
			Operation:          rules.Move,
			DestinationPattern: dest("Pictures/{year}/{month}"),
			Conditions: []rules.Condition{
				{Field: "extension", Operator: rules.OpIn, Value: []any{".jpg", ".jpeg", ".heic", ".png"}},
			},
		},
		{
			ID:                 "documents",
			Name:               "Documents by year",
			Priority:           30,
			Operation:          rules.Move,
			DestinationPattern: dest("Documents/{year}"),
			Conditions: []rules.Condition{
				{Field: "extension", Operator: rules.OpIn, Value: []any{".pdf", ".doc", ".docx", ".txt"}},
			},
		},
	}
}
