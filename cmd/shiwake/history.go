package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shiwake/shiwake/pkg/shiwake/config"
	"github.com/shiwake/shiwake/pkg/shiwake/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past organization runs",
	Long: `View the journal of organization runs.

Each run records which files were organized, which rules matched, and any
placeholder warnings or failures.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getJournal returns the journal at the configured history path.
func getJournal() (*history.Journal, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return history.New(cfg.History.Path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	journal, err := getJournal()
	if err != nil {
		return err
	}

	entries, err := journal.List(historyLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'shiwake [path]' to organize some files.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tMODE\tFILES\tORGANIZED\tFAILED")
	for _, e := range entries {
		mode := "apply"
		if e.Preview {
			mode = "preview"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			e.ID, humanize.Time(e.Timestamp), mode,
			e.Summary.TotalFiles, e.Summary.Organized, e.Summary.Failed)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	journal, err := getJournal()
	if err != nil {
		return err
	}

	entry, err := journal.Get(args[0])
	if err != nil {
		return err
	}

	mode := "apply"
	if entry.Preview {
		mode = "preview"
	}
	printInfo("Run %s (%s, %s)", entry.ID, mode, entry.Timestamp.Format("2006-01-02 15:04:05"))
	printInfo("Files: %d  Organized: %d  Skipped: %d  Failed: %d  Unmatched: %d",
		entry.Summary.TotalFiles, entry.Summary.Organized,
		entry.Summary.Skipped, entry.Summary.Failed, entry.Summary.Unmatched)
	printInfo("")

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSOURCE\tDESTINATION\tRULE")
	for _, f := range entry.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Status, f.Source, f.Destination, f.RuleName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, f := range entry.Files {
		for _, w := range f.Warnings {
			printInfo("warning: %s: %s", f.Source, w)
		}
		if f.Error != "" {
			printInfo("error: %s: %s", f.Source, f.Error)
		}
	}
	return nil
}

func runHistoryClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	journal, err := history.New(cfg.History.Path)
	if err != nil {
		return err
	}

	removed, err := journal.Clean(cfg.History.RetentionDays)
	if err != nil {
		return err
	}
	printInfo("Removed %d entries older than %d days", removed, cfg.History.RetentionDays)
	return nil
}
