package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/health"
	"github.com/imran601021/Resume/internal/supervisor"
)

func superviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supervise [child args]",
		Short: "Run a subcommand under the restart-unless-stopped policy",
		Long: `Runs the given subcommand (default: serve) as a child process and
restarts it with linear backoff whenever it exits or the health monitor
reports it unhealthy. Only an operator stop (SIGINT/SIGTERM) ends the
loop without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signalContext()
			defer stop()

			child := args
			if len(child) == 0 {
				child = []string{"serve"}
			}

			bin, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}

			// Only a serve child exposes the health endpoint; other children
			// are restarted on exit alone.
			var watch func(ctx context.Context, unhealthy chan<- error)
			if child[0] == "serve" {
				probeURL := fmt.Sprintf("http://127.0.0.1:%s%s", cfg.Server.Port, cfg.Health.Path)
				watch = func(ctx context.Context, unhealthy chan<- error) {
					monitor := health.NewMonitor(health.NewProbe(probeURL, cfg.Health.Timeout), health.Options{
						Interval:    cfg.Health.Interval,
						Retries:     cfg.Health.Retries,
						StartPeriod: cfg.Health.StartPeriod,
						Logger:      log,
						OnTransition: func(_, to health.State, cause error) {
							if to != health.StateUnhealthy {
								return
							}
							if cause == nil {
								cause = errors.New("health probe failing")
							}
							select {
							case unhealthy <- cause:
							default:
							}
						},
					})
					_ = monitor.Run(ctx)
				}
			}

			sup := supervisor.New(
				supervisor.Command(bin, child, nil),
				supervisor.Options{
					KillTimeout: 10 * time.Second,
					ResetAfter:  time.Minute,
					Watch:       watch,
					Logger:      log,
				},
			)
			log.Info("supervising child", zap.Strings("argv", child))
			return sup.Run(ctx)
		},
	}
}
