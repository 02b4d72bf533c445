package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-etl-worker/internal/app"
	"github.com/samvad-hq/samvad-etl-worker/internal/config"
	"github.com/samvad-hq/samvad-etl-worker/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "etlworker: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "etlworker",
		Short:         "Extract, transform and load records between two HTTP services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newUploadCommand())
	return root
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once, or on run_interval_seconds when set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorker(cmd.Context(), func(ctx context.Context, w *app.Worker) error {
				if err := w.Run(ctx); err != nil {
					return fmt.Errorf("worker run: %w", err)
				}
				return nil
			})
		},
	}
}

func newUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <endpoint> <path>",
		Short: "Upload a local file to the destination service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorker(cmd.Context(), func(ctx context.Context, w *app.Worker) error {
				res, err := w.Upload(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("upload: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", res.StatusCode, res.Raw())
				return nil
			})
		},
	}
}

// withWorker loads config, sets up logging and hands a ready worker to fn.
func withWorker(ctx context.Context, fn func(context.Context, *app.Worker) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	log.InfoObj("etl worker starting", "config", cfg)

	worker, err := app.NewWorker(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize worker", "error", err)
		return err
	}
	defer worker.Close()

	return fn(ctx, worker)
}
