package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/modelcache"
	"github.com/imran601021/Resume/internal/storage"
)

func prefetchCmd() *cobra.Command {
	var manifestPath string

	c := &cobra.Command{
		Use:   "prefetch",
		Short: "Download datapacks and model artifacts into the cache",
		Long: `Fetches every artifact the analyzer needs at runtime into the model
cache directory, verifying digests when the manifest pins them. Already
cached artifacts are kept. The container image runs this at build time so
cold starts never download.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signalContext()
			defer stop()

			var artifacts []modelcache.Artifact
			if manifestPath != "" {
				artifacts, err = modelcache.LoadManifest(manifestPath)
				if err != nil {
					return err
				}
			} else {
				if cfg.Cache.Bucket == "" {
					return errors.New("no artifact bucket configured; set ARTIFACT_BUCKET or pass --manifest")
				}
				artifacts = modelcache.DefaultManifest(cfg.Cache.Locale, cfg.Cache.Bucket)
			}

			// The object store is only needed for s3:// artifacts; a manifest
			// of plain https URLs works without credentials.
			var objects modelcache.ObjectDownloader
			if cfg.RequireStorage() == nil {
				client, err := storage.New(ctx, cfg.Storage, log)
				if err != nil {
					return err
				}
				objects = client
			}

			cache := modelcache.New(cfg.Cache.Dir, objects, log)
			if err := cache.Prefetch(ctx, artifacts); err != nil {
				return err
			}
			log.Info("prefetch complete",
				zap.Int("artifacts", len(artifacts)),
				zap.String("dir", cfg.Cache.Dir),
			)
			return nil
		},
	}

	c.Flags().StringVar(&manifestPath, "manifest", "", "path to a JSON artifact manifest (defaults to the locale datapack)")
	return c
}
