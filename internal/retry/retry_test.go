package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoWithBackoffSucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := DoWithBackoff(3, time.Millisecond, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoWithBackoffStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	got, err := DoWithBackoff(5, time.Millisecond, func() (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDoWithBackoffExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("boom")
	calls := 0
	got, err := DoWithBackoff(3, time.Millisecond, func() (int, error) {
		calls++
		return 7, sentinel
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
	assert.Zero(t, got, "failed retries must not leak a partial result")
}
