// Package telemetry gathers anonymous usage counters. Collection is
// opt-out via GATHER_USAGE_STATS=false; when disabled every method is a
// no-op and nothing is recorded or logged.
package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultFlushInterval is how often the collector logs a snapshot.
const DefaultFlushInterval = 10 * time.Minute

// Stats is a point-in-time copy of the counters.
type Stats struct {
	SessionsCompleted int64
	SessionsFailed    int64
	ResumesAnalyzed   int64
	SyncAnalyses      int64
}

type Collector struct {
	enabled bool
	log     *zap.Logger

	sessionsCompleted atomic.Int64
	sessionsFailed    atomic.Int64
	resumesAnalyzed   atomic.Int64
	syncAnalyses      atomic.Int64
}

func New(enabled bool, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{enabled: enabled, log: log}
}

func (c *Collector) Enabled() bool { return c.enabled }

func (c *Collector) SessionCompleted() {
	if c.enabled {
		c.sessionsCompleted.Add(1)
	}
}

func (c *Collector) SessionFailed() {
	if c.enabled {
		c.sessionsFailed.Add(1)
	}
}

func (c *Collector) ResumeAnalyzed() {
	if c.enabled {
		c.resumesAnalyzed.Add(1)
	}
}

func (c *Collector) SyncAnalysis() {
	if c.enabled {
		c.syncAnalyses.Add(1)
	}
}

func (c *Collector) Snapshot() Stats {
	return Stats{
		SessionsCompleted: c.sessionsCompleted.Load(),
		SessionsFailed:    c.sessionsFailed.Load(),
		ResumesAnalyzed:   c.resumesAnalyzed.Load(),
		SyncAnalyses:      c.syncAnalyses.Load(),
	}
}

// Run logs a snapshot every interval and a final one on shutdown. It
// returns immediately when collection is disabled.
func (c *Collector) Run(ctx context.Context, interval time.Duration) {
	if !c.enabled {
		return
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.flush("usage stats (final)")
			return
		case <-ticker.C:
			c.flush("usage stats")
		}
	}
}

func (c *Collector) flush(msg string) {
	s := c.Snapshot()
	c.log.Info(msg,
		zap.Int64("sessions_completed", s.SessionsCompleted),
		zap.Int64("sessions_failed", s.SessionsFailed),
		zap.Int64("resumes_analyzed", s.ResumesAnalyzed),
		zap.Int64("sync_analyses", s.SyncAnalyses),
	)
}
