package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) Check(ctx context.Context) error { return f(ctx) }

type transition struct {
	from, to State
	cause    error
}

func newRecordingMonitor(retries int, startPeriod time.Duration) (*Monitor, *[]transition) {
	var seen []transition
	m := NewMonitor(probeFunc(func(ctx context.Context) error { return nil }), Options{
		Interval:    time.Second,
		Retries:     retries,
		StartPeriod: startPeriod,
		OnTransition: func(from, to State, cause error) {
			seen = append(seen, transition{from, to, cause})
		},
	})
	return m, &seen
}

func TestMonitorForgivesFailuresDuringStartPeriod(t *testing.T) {
	m, seen := newRecordingMonitor(3, 40*time.Second)
	boom := errors.New("connection refused")

	for i := 0; i < 10; i++ {
		m.observe(boom, 10*time.Second)
	}

	assert.Equal(t, StateStarting, m.State())
	assert.Empty(t, *seen, "start-period failures must not count")
}

func TestMonitorUnhealthyAfterRetryStreak(t *testing.T) {
	m, seen := newRecordingMonitor(3, 40*time.Second)
	boom := errors.New("status 500")

	m.observe(boom, time.Minute)
	m.observe(boom, time.Minute)
	assert.Equal(t, StateStarting, m.State(), "below the retry threshold")

	m.observe(boom, time.Minute)
	assert.Equal(t, StateUnhealthy, m.State())

	require.Len(t, *seen, 1)
	assert.Equal(t, StateStarting, (*seen)[0].from)
	assert.Equal(t, StateUnhealthy, (*seen)[0].to)
	assert.ErrorIs(t, (*seen)[0].cause, boom)

	// Further failures keep the state without re-firing the callback.
	m.observe(boom, time.Minute)
	assert.Len(t, *seen, 1)
}

func TestMonitorSuccessResetsStreak(t *testing.T) {
	m, _ := newRecordingMonitor(3, 0)
	boom := errors.New("timeout")

	m.observe(boom, time.Minute)
	m.observe(boom, time.Minute)
	m.observe(nil, time.Minute)
	m.observe(boom, time.Minute)
	m.observe(boom, time.Minute)

	assert.Equal(t, StateHealthy, m.State(), "streak restarted after a success")
}

func TestMonitorSuccessEndsStartPeriodEarly(t *testing.T) {
	m, seen := newRecordingMonitor(3, 40*time.Second)
	boom := errors.New("oops")

	m.observe(nil, 5*time.Second)
	assert.Equal(t, StateHealthy, m.State())

	// Still inside the start period, but the target already reported
	// healthy once, so the grace window no longer applies.
	m.observe(boom, 6*time.Second)
	m.observe(boom, 7*time.Second)
	m.observe(boom, 8*time.Second)

	assert.Equal(t, StateUnhealthy, m.State())
	require.Len(t, *seen, 2)
	assert.Equal(t, StateHealthy, (*seen)[1].from)
	assert.Equal(t, StateUnhealthy, (*seen)[1].to)
}

func TestMonitorRecoversAfterUnhealthy(t *testing.T) {
	m, seen := newRecordingMonitor(2, 0)
	boom := errors.New("boom")

	m.observe(boom, time.Minute)
	m.observe(boom, time.Minute)
	require.Equal(t, StateUnhealthy, m.State())

	m.observe(nil, time.Minute)
	assert.Equal(t, StateHealthy, m.State())
	require.Len(t, *seen, 2)
	assert.Equal(t, StateUnhealthy, (*seen)[1].from)
	assert.Equal(t, StateHealthy, (*seen)[1].to)
}

func TestMonitorRunProbesOnInterval(t *testing.T) {
	var checks atomic.Int64
	healthy := make(chan struct{})
	m := NewMonitor(probeFunc(func(ctx context.Context) error {
		checks.Add(1)
		return nil
	}), Options{
		Interval: 5 * time.Millisecond,
		Retries:  3,
		OnTransition: func(from, to State, cause error) {
			if to == StateHealthy {
				close(healthy)
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case <-healthy:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never became healthy")
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on cancel")
	}
	assert.GreaterOrEqual(t, checks.Load(), int64(1))
}

func TestProbeAgainstHTTPServer(t *testing.T) {
	var status atomic.Int64
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	probe := NewProbe(srv.URL+"/healthz", time.Second)
	assert.NoError(t, probe.Check(context.Background()))

	status.Store(http.StatusServiceUnavailable)
	err := probe.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	srv.Close()
	assert.Error(t, probe.Check(context.Background()), "connection refused is a probe failure")
}
