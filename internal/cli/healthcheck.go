package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imran601021/Resume/internal/config"
	"github.com/imran601021/Resume/internal/health"
)

// healthcheckCmd probes the local server once. The container HEALTHCHECK
// runs this; exit code 0 means healthy, 1 means not.
func healthcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the local health endpoint once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			url := fmt.Sprintf("http://127.0.0.1:%s%s", cfg.Server.Port, cfg.Health.Path)
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Health.Timeout)
			defer cancel()

			if err := health.NewProbe(url, cfg.Health.Timeout).Check(ctx); err != nil {
				return fmt.Errorf("unhealthy: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
