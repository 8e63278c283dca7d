package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shiwake/shiwake/pkg/shiwake/logging"
	"github.com/shiwake/shiwake/pkg/shiwake/processor"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path...]",
	Short: "Organize new files as they appear",
	Long: `Watch one or more directories and organize files as they are created.

Newly created files are given a short settle period so downloads and copies
can finish before they are matched and moved. Watching is not recursive;
only files created directly in the watched directories are organized.

Press Ctrl-C to stop watching.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

// settleDelay is how long a new file must keep a stable size before it is
// organized.
const settleDelay = 500 * time.Millisecond

func init() {
	watchCmd.Flags().Bool("apply", false, "actually move/copy files instead of previewing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	logger := logging.Get("watch")

	procOpts := []processor.Option{
		processor.WithWorkers(1),
		processor.WithPreview(env.preview),
		processor.WithLogger(logger),
	}
	if env.cache != nil {
		procOpts = append(procOpts, processor.WithCache(env.cache))
	}
	proc := processor.New(afero.NewOsFs(), env.ruleset, env.opts, procOpts...)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			printVerbose("closing watcher: %v", err)
		}
	}()

	for _, path := range args {
		if err := watcher.Add(path); err != nil {
			printError("cannot watch %s: %v", path, err)
			return err
		}
		printInfo("Watching %s", path)
	}
	if env.preview {
		printInfo("Preview mode: no files will be moved (use --apply)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			printInfo("Stopping watch")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if err := handleCreated(ctx, proc, env, event.Name); err != nil {
				logger.Warn("organizing new file failed", "path", event.Name, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}

// handleCreated waits for a newly created file to settle, then runs it
// through the processor.
func handleCreated(ctx context.Context, proc *processor.Processor, env *runtimeEnv, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil // gone already, or a directory
	}

	if err := waitSettled(ctx, path); err != nil {
		return err
	}

	report, err := proc.Run(ctx, []string{path})
	if err != nil {
		return err
	}

	if env.journal != nil {
		if _, err := env.journal.LogRun(env.preview, historyRecords(report)); err != nil {
			printVerbose("recording history: %v", err)
		}
	}

	for _, res := range report.Results {
		switch res.Status {
		case processor.StatusOrganized:
			printInfo("%s -> %s", res.Source, res.Destination)
		case processor.StatusFailed:
			printError("%s: %v", res.Source, res.Err)
		default:
			printVerbose("%s: %s", res.Source, res.Status)
		}
	}
	return nil
}

// waitSettled polls the file size until it stops changing.
func waitSettled(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settleDelay):
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()
	}
}
