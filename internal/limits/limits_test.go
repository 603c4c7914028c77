package limits

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/config"
)

func TestApplyCapsProcsAndMemory(t *testing.T) {
	prevProcs := runtime.GOMAXPROCS(0)
	prevMem := debug.SetMemoryLimit(-1)
	t.Cleanup(func() {
		runtime.GOMAXPROCS(prevProcs)
		debug.SetMemoryLimit(prevMem)
	})

	Apply(config.LimitsConfig{MaxProcs: 1, MemoryLimitBytes: 1 << 30}, zap.NewNop())

	assert.Equal(t, 1, runtime.GOMAXPROCS(0))
	assert.Equal(t, int64(1<<30), debug.SetMemoryLimit(-1))
}

func TestApplyLeavesMemoryLimitWhenUnset(t *testing.T) {
	prevProcs := runtime.GOMAXPROCS(0)
	prevMem := debug.SetMemoryLimit(-1)
	t.Cleanup(func() {
		runtime.GOMAXPROCS(prevProcs)
		debug.SetMemoryLimit(prevMem)
	})

	Apply(config.LimitsConfig{MaxProcs: 0, MemoryLimitBytes: 0}, zap.NewNop())

	assert.Equal(t, prevMem, debug.SetMemoryLimit(-1))
}
