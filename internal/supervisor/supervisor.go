// Package supervisor keeps a child process running: it restarts the child
// whenever it exits or turns unhealthy, with linear backoff, and stops
// restarting only when the supervisor itself is asked to shut down.
package supervisor

import (
	"context"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Process is one supervised child instance. A Process is started once;
// restarts create a fresh Process through the factory.
type Process interface {
	Start() error
	Wait() error
	Signal(sig os.Signal) error
	Kill() error
}

// Options tune restart pacing and shutdown patience.
type Options struct {
	// BackoffStep is multiplied by the attempt number, capped at BackoffMax.
	BackoffStep time.Duration
	BackoffMax  time.Duration
	// KillTimeout is how long a child may ignore SIGTERM before SIGKILL.
	KillTimeout time.Duration
	// ResetAfter zeroes the attempt counter once a child stays up this
	// long, so an old crash loop does not slow down future restarts.
	ResetAfter time.Duration
	// Watch, when set, observes the running child and sends a cause when
	// it should be restarted (e.g. a health monitor reporting unhealthy).
	// It must return when ctx is cancelled.
	Watch  func(ctx context.Context, unhealthy chan<- error)
	Logger *zap.Logger
}

type Supervisor struct {
	newProcess func() Process
	opts       Options
	log        *zap.Logger
}

func New(newProcess func() Process, opts Options) *Supervisor {
	if opts.BackoffStep <= 0 {
		opts.BackoffStep = 500 * time.Millisecond
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = 30 * time.Second
	}
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{newProcess: newProcess, opts: opts, log: log}
}

// Run supervises until ctx is cancelled. Cancellation terminates the child
// and returns nil: an operator stop is not an error and must not restart.
func (s *Supervisor) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		proc := s.newProcess()
		started := time.Now()
		if err := proc.Start(); err != nil {
			s.log.Error("child failed to start", zap.Error(err))
			attempt++
			if !s.pause(ctx, attempt) {
				return nil
			}
			continue
		}
		s.log.Info("child started", zap.Int("attempt", attempt))

		waitCh := make(chan error, 1)
		go func() { waitCh <- proc.Wait() }()

		var unhealthyCh chan error
		stopWatch := func() {}
		if s.opts.Watch != nil {
			unhealthyCh = make(chan error, 1)
			var wctx context.Context
			wctx, stopWatch = context.WithCancel(ctx)
			go s.opts.Watch(wctx, unhealthyCh)
		}

		select {
		case <-ctx.Done():
			stopWatch()
			s.terminate(proc, waitCh)
			s.log.Info("supervisor stopped, child will not be restarted")
			return nil

		case err := <-waitCh:
			stopWatch()
			if err != nil {
				s.log.Warn("child exited", zap.Error(err))
			} else {
				s.log.Info("child exited cleanly")
			}

		case cause := <-unhealthyCh:
			stopWatch()
			s.log.Warn("child unhealthy, restarting", zap.Error(cause))
			s.terminate(proc, waitCh)
		}

		if s.opts.ResetAfter > 0 && time.Since(started) >= s.opts.ResetAfter {
			attempt = 0
		}
		attempt++
		if !s.pause(ctx, attempt) {
			return nil
		}
	}
}

// terminate asks the child to stop and escalates to SIGKILL when it does
// not comply within KillTimeout.
func (s *Supervisor) terminate(proc Process, waitCh <-chan error) {
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		s.log.Debug("signalling child failed", zap.Error(err))
		proc.Kill()
	}
	select {
	case <-waitCh:
		return
	case <-time.After(s.opts.KillTimeout):
		s.log.Warn("child ignored SIGTERM, killing")
		proc.Kill()
	}
	select {
	case <-waitCh:
	case <-time.After(s.opts.KillTimeout):
		s.log.Error("child did not exit after SIGKILL")
	}
}

func (s *Supervisor) pause(ctx context.Context, attempt int) bool {
	d := s.backoffFor(attempt)
	s.log.Info("restarting child", zap.Int("attempt", attempt), zap.Duration("backoff", d))
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (s *Supervisor) backoffFor(attempt int) time.Duration {
	d := time.Duration(attempt) * s.opts.BackoffStep
	if d > s.opts.BackoffMax {
		d = s.opts.BackoffMax
	}
	return d
}
