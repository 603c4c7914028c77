package cli

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/imran601021/Resume/internal/analyzer"
	"github.com/imran601021/Resume/internal/database"
	"github.com/imran601021/Resume/internal/limits"
	"github.com/imran601021/Resume/internal/queue"
	"github.com/imran601021/Resume/internal/server"
	"github.com/imran601021/Resume/internal/service"
	"github.com/imran601021/Resume/internal/storage"
	"github.com/imran601021/Resume/internal/telemetry"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(*cobra.Command, []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := cfg.RequireService(); err != nil {
				return err
			}
			limits.Apply(cfg.Limits, log)

			ctx, stop := signalContext()
			defer stop()

			db, err := sql.Open("postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			conn, err := queue.Dial(cfg.Queue.URL)
			if err != nil {
				return err
			}
			defer conn.Close()
			qc := queue.NewClient(conn, cfg.Queue.SessionsQueue, cfg.Queue.UpdatesExchange)
			if err := qc.DeclareTopology(); err != nil {
				return err
			}

			objects, err := storage.New(ctx, cfg.Storage, log)
			if err != nil {
				return err
			}

			stats := telemetry.New(cfg.Telemetry.GatherUsageStats, log)
			go stats.Run(ctx, telemetry.DefaultFlushInterval)

			engine := analyzer.NewEngine(cfg.Analyzer.SkillMatchThreshold)
			svc := service.NewSessionService(database.New(db), objects, qc, engine, stats, log)
			srv := server.New(cfg.Server, server.NewHandler(svc, log), log)

			if !cfg.Server.Headless {
				fmt.Printf("Resume analyzer listening on http://%s\n", cfg.Server.Addr())
			}
			return srv.Run(ctx)
		},
	}
}
