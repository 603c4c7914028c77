// Package limits applies the deployment resource ceiling: GOMAXPROCS from
// the container CPU quota capped at MAX_PROCS, and a soft memory limit for
// the Go runtime.
package limits

import (
	"runtime"
	"runtime/debug"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/config"
)

// Apply sets GOMAXPROCS and the runtime soft memory limit. automaxprocs
// reads the cgroup CPU quota first; the configured ceiling then caps the
// result so the process never schedules beyond its CPU share.
func Apply(cfg config.LimitsConfig, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := maxprocs.Set(maxprocs.Logger(log.Sugar().Debugf)); err != nil {
		log.Warn("failed to set GOMAXPROCS from cgroup quota", zap.Error(err))
	}
	if cfg.MaxProcs > 0 && runtime.GOMAXPROCS(0) > cfg.MaxProcs {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}

	if cfg.MemoryLimitBytes > 0 {
		debug.SetMemoryLimit(cfg.MemoryLimitBytes)
	}

	log.Info("resource limits applied",
		zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)),
		zap.Int64("memory_limit_bytes", cfg.MemoryLimitBytes),
	)
}
