package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8501", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, "0.0.0.0:8501", cfg.Server.Addr())
	assert.True(t, cfg.Server.Headless)

	assert.Equal(t, 30*time.Second, cfg.Health.Interval)
	assert.Equal(t, 10*time.Second, cfg.Health.Timeout)
	assert.Equal(t, 3, cfg.Health.Retries)
	assert.Equal(t, 40*time.Second, cfg.Health.StartPeriod)
	assert.Equal(t, "/healthz", cfg.Health.Path)

	assert.Equal(t, 2, cfg.Limits.MaxProcs)
	assert.Equal(t, int64(4)<<30, cfg.Limits.MemoryLimitBytes)

	assert.Equal(t, 70, cfg.Analyzer.SkillMatchThreshold)
	assert.Equal(t, "en-US", cfg.Cache.Locale)
	assert.Equal(t, 3, cfg.Worker.Count)
	assert.Equal(t, "sessions", cfg.Queue.SessionsQueue)
	assert.Equal(t, "session_updates", cfg.Queue.UpdatesExchange)
	assert.True(t, cfg.Telemetry.GatherUsageStats)
	assert.False(t, cfg.Agent.Enabled())
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_HEADLESS", "false")
	t.Setenv("GATHER_USAGE_STATS", "false")
	t.Setenv("HEALTH_INTERVAL", "5s")
	t.Setenv("HEALTH_RETRIES", "5")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("GOOGLE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.False(t, cfg.Server.Headless)
	assert.False(t, cfg.Telemetry.GatherUsageStats)
	assert.Equal(t, 5*time.Second, cfg.Health.Interval)
	assert.Equal(t, 5, cfg.Health.Retries)
	assert.Equal(t, 8, cfg.Worker.Count)
	assert.True(t, cfg.Agent.Enabled())
}

func TestCacheBucketFallsBackToStorageBucket(t *testing.T) {
	t.Setenv("R2_BUCKET", "resumes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "resumes", cfg.Cache.Bucket)

	t.Setenv("ARTIFACT_BUCKET", "datapacks")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "datapacks", cfg.Cache.Bucket)
}

func TestRequireService(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireService()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")

	cfg.Database.URL = "postgres://localhost/resume"
	err = cfg.RequireService()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RABBITMQ_URL")

	cfg.Queue.URL = "amqp://localhost"
	err = cfg.RequireService()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R2_ACCOUNT_ID")

	cfg.Storage = StorageConfig{
		AccountID: "acc",
		Bucket:    "resumes",
		AccessKey: "key",
		SecretKey: "secret",
	}
	assert.NoError(t, cfg.RequireService())
}

func TestRequireStorageAllowsEndpointWithoutAccountID(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{
		Endpoint:  "http://localhost:9000",
		Bucket:    "resumes",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}}
	assert.NoError(t, cfg.RequireStorage())
}
