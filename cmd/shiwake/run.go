package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shiwake/shiwake/pkg/shiwake/cache"
	"github.com/shiwake/shiwake/pkg/shiwake/config"
	"github.com/shiwake/shiwake/pkg/shiwake/engine"
	"github.com/shiwake/shiwake/pkg/shiwake/history"
	"github.com/shiwake/shiwake/pkg/shiwake/logging"
	"github.com/shiwake/shiwake/pkg/shiwake/output"
	"github.com/shiwake/shiwake/pkg/shiwake/processor"
	"github.com/shiwake/shiwake/pkg/shiwake/rules"
)

// runtimeEnv bundles everything a run needs: config, compiled rules, engine
// options, and the optional cache and journal.
type runtimeEnv struct {
	cfg     *config.Config
	ruleset *rules.RuleSet
	opts    engine.Options
	cache   *cache.Cache
	journal *history.Journal
	preview bool
	workers int
}

func (e *runtimeEnv) close() {
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			printVerbose("closing cache: %v", err)
		}
	}
}

// setupRun loads configuration and rules and initializes logging.
func setupRun(cmd *cobra.Command) (*runtimeEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Flag overrides
	if v := viper.GetString("rules_path"); v != "" {
		cfg.RulesPath = v
	}
	if cmd.Flags().Lookup("destination") != nil {
		if v, _ := cmd.Flags().GetString("destination"); v != "" {
			cfg.DefaultDestination = v
		}
	}
	if v := viper.GetString("conflict_policy"); v != "" {
		cfg.ConflictPolicy = v
	}
	if v := viper.GetInt("workers"); v > 0 {
		cfg.Workers = v
	}

	if err := initLogging(cfg); err != nil {
		return nil, err
	}

	ruleset, err := rules.Load(afero.NewOsFs(), cfg.RulesPath)
	if err != nil {
		if rules.IsNotExist(err) {
			return nil, fmt.Errorf("no rules file at %s (run 'shiwake rules init' to create one)", cfg.RulesPath)
		}
		return nil, err
	}
	printVerbose("loaded %d rules from %s", ruleset.Len(), cfg.RulesPath)

	policy, err := engine.ParsePolicy(cfg.ConflictPolicy)
	if err != nil {
		return nil, err
	}
	op, err := rules.ParseOperation(cfg.DefaultOperation)
	if err != nil {
		return nil, err
	}

	env := &runtimeEnv{
		cfg:     cfg,
		ruleset: ruleset,
		opts: engine.Options{
			DefaultDestination: cfg.DefaultDestination,
			DefaultOperation:   op,
			ConflictPolicy:     policy,
		},
		preview: cfg.Preview,
		workers: cfg.Workers,
	}

	env.preview = previewMode(cfg.Preview, cmd)

	if cfg.Cache.Enabled && !viper.GetBool("no_cache") {
		store, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			printVerbose("metadata cache unavailable: %v", err)
		} else {
			env.cache = cache.New(store)
		}
	}

	if cfg.History.Enabled {
		journal, err := history.New(cfg.History.Path)
		if err != nil {
			printVerbose("history disabled: %v", err)
		} else {
			env.journal = journal
		}
	}

	return env, nil
}

// previewMode decides whether a run is a dry run. An --apply flag given on
// the command line wins; otherwise the config's preview setting applies, so
// `preview: false` in the config commits without --apply.
func previewMode(configPreview bool, cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("apply"); f != nil && f.Changed {
		apply, _ := cmd.Flags().GetBool("apply")
		return !apply
	}
	return configPreview
}

// initLogging initializes the logging subsystem from config and flags.
func initLogging(cfg *config.Config) error {
	level := cfg.Logging.Level
	if getVerbose() {
		level = "debug"
	}

	maxSize, err := logging.ParseSize(cfg.Logging.Rotation.MaxSize)
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:      level,
		Path:       cfg.Logging.Path,
		Components: cfg.Logging.Components,
		Rotation: logging.RotationConfig{
			MaxSize:    maxSize,
			MaxAge:     cfg.Logging.Rotation.MaxAge,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
			Daily:      cfg.Logging.Rotation.Daily,
		},
	}
	if getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}

	return logging.Init(logCfg)
}

// runOrganize is the root command: organize the given paths.
func runOrganize(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		paths = []string{cwd}
	}

	env, err := setupRun(cmd)
	if err != nil {
		printError("%v", err)
		return err
	}
	defer env.close()
	defer func() {
		if err := logging.Close(); err != nil {
			printVerbose("closing log: %v", err)
		}
	}()

	procOpts := []processor.Option{
		processor.WithWorkers(env.workers),
		processor.WithPreview(env.preview),
	}
	if env.cache != nil {
		procOpts = append(procOpts, processor.WithCache(env.cache))
	}
	proc := processor.New(afero.NewOsFs(), env.ruleset, env.opts, procOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := proc.Run(ctx, paths)
	if err != nil {
		printError("%v", err)
		return err
	}

	if env.journal != nil {
		if _, err := env.journal.LogRun(env.preview, historyRecords(report)); err != nil {
			printVerbose("recording history: %v", err)
		}
	}

	if err := renderReport(report, paths, env.preview); err != nil {
		return err
	}

	if report.Failed() > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed(), len(report.Results))
	}
	return nil
}

// renderReport formats the run report with the selected formatter.
func renderReport(report *processor.Report, paths []string, preview bool) error {
	format := viper.GetString("format")
	if format == "" {
		format = "pretty"
	}

	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, output.Available())
	}

	result := buildResult(report, paths, preview)
	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// buildResult converts a processor report into the output package's shape.
func buildResult(report *processor.Report, paths []string, preview bool) *output.Result {
	records := make([]output.Record, len(report.Results))
	for i, res := range report.Results {
		rec := output.Record{
			Source:      res.Source,
			Destination: res.Destination,
			RuleName:    res.RuleName,
			Operation:   res.Operation,
			Status:      res.Status,
			Size:        res.Size,
			SizeHuman:   humanize.IBytes(uint64(res.Size)),
		}
		if res.Conflict != engine.ConflictNone {
			rec.Conflict = res.Conflict.String()
		}
		for _, w := range res.Warnings {
			rec.Warnings = append(rec.Warnings, w.String())
		}
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
		records[i] = rec
	}

	return &output.Result{
		Records: records,
		Stats: output.RunStats{
			FilesSeen: int64(len(report.Results)),
			Organized: int64(report.Organized()),
			Skipped:   int64(report.Skipped()),
			Failed:    int64(report.Failed()),
			Unmatched: int64(report.Unmatched()),
			Duration:  report.Duration,
		},
		Sources:     paths,
		Preview:     preview,
		Interrupted: report.Interrupted,
	}
}

// historyRecords converts a processor report into journal records.
func historyRecords(report *processor.Report) []history.FileRecord {
	records := make([]history.FileRecord, len(report.Results))
	for i, res := range report.Results {
		rec := history.FileRecord{
			Source:      res.Source,
			Destination: res.Destination,
			RuleID:      res.RuleID,
			RuleName:    res.RuleName,
			Operation:   res.Operation,
			Status:      res.Status,
			Size:        res.Size,
		}
		if res.Conflict != engine.ConflictNone {
			rec.Conflict = res.Conflict.String()
		}
		for _, w := range res.Warnings {
			rec.Warnings = append(rec.Warnings, w.String())
		}
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
		records[i] = rec
	}
	return records
}
