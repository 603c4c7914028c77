// Package cli wires the resume-analyzer commands: the HTTP API, the worker
// pool, one-shot local analysis, cache prefetch, the container healthcheck
// and the supervised runner.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/config"
	"github.com/imran601021/Resume/pkg/logger"
)

var debug bool

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "resume-analyzer",
		Short:        "Scores resumes against job descriptions",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		serveCmd(),
		workerCmd(),
		analyzeCmd(),
		prefetchCmd(),
		healthcheckCmd(),
		superviseCmd(),
		versionCmd(),
	)
	return cmd
}

// bootstrap loads the configuration and builds the logger every service
// command starts from.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Options{
		Dir:   cfg.Log.Dir,
		Debug: debug || cfg.Log.Debug,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
