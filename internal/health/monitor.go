package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State string

const (
	StateStarting  State = "starting"
	StateHealthy   State = "healthy"
	StateUnhealthy State = "unhealthy"
)

const (
	DefaultInterval    = 30 * time.Second
	DefaultTimeout     = 10 * time.Second
	DefaultRetries     = 3
	DefaultStartPeriod = 40 * time.Second
)

// Options tune the monitor. Zero Interval and Retries fall back to the
// defaults above; a zero StartPeriod disables the grace window.
type Options struct {
	Interval    time.Duration
	Retries     int
	StartPeriod time.Duration
	// OnTransition fires on every state change. cause carries the probe
	// error for transitions into StateUnhealthy, nil otherwise.
	OnTransition func(from, to State, cause error)
	Logger       *zap.Logger
}

// Monitor drives a Prober on an interval and tracks the aggregate state.
// A target starts in StateStarting; probe failures there are ignored until
// the start period elapses. Once the first probe succeeds (or the start
// period ends) a streak of Retries consecutive failures flips the state to
// StateUnhealthy. Any success resets the streak and restores StateHealthy.
type Monitor struct {
	probe Prober
	opts  Options
	log   *zap.Logger

	mu     sync.Mutex
	state  State
	streak int
}

func NewMonitor(probe Prober, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.StartPeriod < 0 {
		opts.StartPeriod = DefaultStartPeriod
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		probe: probe,
		opts:  opts,
		log:   log,
		state: StateStarting,
	}
}

// State returns the current aggregate state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run probes until ctx is cancelled. The first probe fires one interval
// after Run starts, matching container runtime behavior.
func (m *Monitor) Run(ctx context.Context) error {
	start := time.Now()
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.observe(m.probe.Check(ctx), time.Since(start))
		}
	}
}

func (m *Monitor) observe(err error, sinceStart time.Duration) {
	var (
		from, to State
		fire     bool
		cause    error
	)

	m.mu.Lock()
	switch {
	case err == nil:
		m.streak = 0
		if m.state != StateHealthy {
			from, to, fire = m.state, StateHealthy, true
			m.state = StateHealthy
		}
	case m.state == StateStarting && sinceStart < m.opts.StartPeriod:
		// Grace window: the target is still booting.
	default:
		m.streak++
		if m.streak >= m.opts.Retries && m.state != StateUnhealthy {
			from, to, fire = m.state, StateUnhealthy, true
			m.state = StateUnhealthy
			cause = err
		}
	}
	streak := m.streak
	m.mu.Unlock()

	if err != nil && !fire {
		m.log.Debug("health probe failed",
			zap.Error(err),
			zap.Int("streak", streak),
			zap.Int("retries", m.opts.Retries),
		)
	}
	if fire {
		if to == StateUnhealthy {
			m.log.Warn("health state changed",
				zap.String("from", string(from)),
				zap.String("to", string(to)),
				zap.Error(cause),
			)
		} else {
			m.log.Info("health state changed",
				zap.String("from", string(from)),
				zap.String("to", string(to)),
			)
		}
		if m.opts.OnTransition != nil {
			m.opts.OnTransition(from, to, cause)
		}
	}
}
