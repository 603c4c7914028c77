package supervisor

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcess is a controllable child. exitCh feeds Wait; by default a
// SIGTERM makes the process exit, unless ignoreTerm is set.
type fakeProcess struct {
	exitCh     chan error
	ignoreTerm bool

	mu      sync.Mutex
	signals []os.Signal
	killed  bool
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{exitCh: make(chan error, 1)}
}

func (f *fakeProcess) Start() error { return nil }
func (f *fakeProcess) Wait() error  { return <-f.exitCh }

func (f *fakeProcess) Signal(sig os.Signal) error {
	f.mu.Lock()
	f.signals = append(f.signals, sig)
	ignore := f.ignoreTerm
	f.mu.Unlock()
	if sig == syscall.SIGTERM && !ignore {
		f.exit(errors.New("terminated"))
	}
	return nil
}

func (f *fakeProcess) Kill() error {
	f.mu.Lock()
	f.killed = true
	f.mu.Unlock()
	f.exit(errors.New("killed"))
	return nil
}

func (f *fakeProcess) exit(err error) {
	select {
	case f.exitCh <- err:
	default:
	}
}

func (f *fakeProcess) gotSignal(sig os.Signal) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.signals {
		if s == sig {
			return true
		}
	}
	return false
}

func (f *fakeProcess) wasKilled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.killed
}

func fastOptions() Options {
	return Options{
		BackoffStep: time.Millisecond,
		BackoffMax:  5 * time.Millisecond,
		KillTimeout: 20 * time.Millisecond,
	}
}

func TestRestartsAfterChildExit(t *testing.T) {
	var spawned atomic.Int64
	factory := func() Process {
		spawned.Add(1)
		p := newFakeProcess()
		p.exit(nil) // exits immediately
		return p
	}

	sup := New(factory, fastOptions())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	require.Eventually(t, func() bool { return spawned.Load() >= 3 },
		2*time.Second, time.Millisecond, "child must be restarted after exiting")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestOperatorStopDoesNotRestart(t *testing.T) {
	var mu sync.Mutex
	var procs []*fakeProcess
	factory := func() Process {
		p := newFakeProcess()
		mu.Lock()
		procs = append(procs, p)
		mu.Unlock()
		return p
	}

	sup := New(factory, fastOptions())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(procs) == 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "operator stop is not an error")
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, procs, 1, "no restart after operator stop")
	assert.True(t, procs[0].gotSignal(syscall.SIGTERM))
}

func TestRestartsUnhealthyChild(t *testing.T) {
	var mu sync.Mutex
	var procs []*fakeProcess
	factory := func() Process {
		p := newFakeProcess()
		mu.Lock()
		procs = append(procs, p)
		mu.Unlock()
		return p
	}

	var flagged atomic.Bool
	opts := fastOptions()
	opts.Watch = func(ctx context.Context, unhealthy chan<- error) {
		// Only the first child is reported unhealthy.
		if flagged.CompareAndSwap(false, true) {
			select {
			case unhealthy <- errors.New("3 consecutive probe failures"):
			case <-ctx.Done():
			}
		}
		<-ctx.Done()
	}

	sup := New(factory, opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(procs) >= 2
	}, 2*time.Second, time.Millisecond, "unhealthy child must be replaced")

	mu.Lock()
	first := procs[0]
	mu.Unlock()
	assert.True(t, first.gotSignal(syscall.SIGTERM), "unhealthy child is terminated, not abandoned")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestEscalatesToKillWhenTermIgnored(t *testing.T) {
	p := newFakeProcess()
	p.ignoreTerm = true
	started := make(chan struct{})
	factory := func() Process { close(started); return p }

	opts := fastOptions()
	opts.KillTimeout = 5 * time.Millisecond
	sup := New(factory, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	<-started
	time.Sleep(10 * time.Millisecond) // let the supervisor reach its select
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop")
	}
	assert.True(t, p.wasKilled(), "SIGKILL after the kill timeout")
}

func TestBackoffGrowsLinearlyAndCaps(t *testing.T) {
	sup := New(func() Process { return newFakeProcess() }, Options{
		BackoffStep: 10 * time.Millisecond,
		BackoffMax:  25 * time.Millisecond,
	})

	assert.Equal(t, 10*time.Millisecond, sup.backoffFor(1))
	assert.Equal(t, 20*time.Millisecond, sup.backoffFor(2))
	assert.Equal(t, 25*time.Millisecond, sup.backoffFor(3), "capped")
	assert.Equal(t, 25*time.Millisecond, sup.backoffFor(100), "still capped")
}
