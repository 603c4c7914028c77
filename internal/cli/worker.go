package cli

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/agent"
	"github.com/imran601021/Resume/internal/analyzer"
	"github.com/imran601021/Resume/internal/config"
	"github.com/imran601021/Resume/internal/database"
	"github.com/imran601021/Resume/internal/limits"
	"github.com/imran601021/Resume/internal/modelcache"
	"github.com/imran601021/Resume/internal/queue"
	"github.com/imran601021/Resume/internal/skills"
	"github.com/imran601021/Resume/internal/storage"
	"github.com/imran601021/Resume/internal/telemetry"
	"github.com/imran601021/Resume/internal/worker"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the session analysis worker pool",
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

			objects, err := storage.New(ctx, cfg.Storage, log)
			if err != nil {
				return err
			}

			// Status updates go out on a shared connection; each consumer in
			// the pool dials its own.
			conn, err := queue.Dial(cfg.Queue.URL)
			if err != nil {
				return err
			}
			defer conn.Close()
			updates := queue.NewClient(conn, cfg.Queue.SessionsQueue, cfg.Queue.UpdatesExchange)
			if err := updates.DeclareTopology(); err != nil {
				return err
			}

			stats := telemetry.New(cfg.Telemetry.GatherUsageStats, log)
			go stats.Run(ctx, telemetry.DefaultFlushInterval)

			wcfg := worker.Config{
				Store:   database.New(db),
				Objects: objects,
				Updates: updates,
				Engine:  analyzer.NewEngine(cfg.Analyzer.SkillMatchThreshold),
				Stats:   stats,
				Logger:  log,
			}

			if library, err := loadSkillsLibrary(ctx, cfg, objects, log); err != nil {
				log.Warn("skills profiles unavailable; sessions must carry explicit skills", zap.Error(err))
			} else {
				wcfg.Skills = library
			}

			if cfg.Agent.Enabled() {
				summarizer, err := agent.New(ctx, cfg.Agent.GoogleAPIKey, cfg.Agent.Model, log)
				if err != nil {
					return fmt.Errorf("build summarizer agent: %w", err)
				}
				wcfg.Summarizer = summarizer
				log.Info("AI summary enrichment enabled", zap.String("model", cfg.Agent.Model))
			}

			pool := worker.NewPool(cfg.Queue.URL, cfg.Queue.SessionsQueue, cfg.Queue.UpdatesExchange,
				cfg.Worker.Count, worker.New(wcfg), log)
			log.Info("worker pool starting", zap.Int("consumers", cfg.Worker.Count))
			return pool.Run(ctx)
		},
	}
}

// loadSkillsLibrary ensures the locale datapack is cached (downloading it
// when the prefetched copy is missing) and loads it.
func loadSkillsLibrary(ctx context.Context, cfg *config.Config, objects modelcache.ObjectDownloader, log *zap.Logger) (*skills.Library, error) {
	cache := modelcache.New(cfg.Cache.Dir, objects, log)
	name := modelcache.DatapackName(cfg.Cache.Locale)

	path := filepath.Join(cfg.Cache.Dir, name)
	if cfg.Cache.Bucket != "" {
		artifacts := modelcache.DefaultManifest(cfg.Cache.Locale, cfg.Cache.Bucket)
		p, err := cache.Ensure(ctx, artifacts[0])
		if err != nil {
			return nil, err
		}
		path = p
	}

	library, err := skills.Load(path)
	if err != nil {
		return nil, err
	}
	log.Info("skills library loaded",
		zap.String("locale", library.Locale()),
		zap.Int("profiles", len(library.Names())),
	)
	return library, nil
}
