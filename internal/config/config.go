// Package config loads the service configuration from environment variables.
// A .env file is honored when present. Defaults mirror the deployment
// descriptor: port 8501, headless on, 2 CPUs, 4 GiB, health probe every 30s
// with a 10s timeout, 3 retries and a 40s start period.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Analyzer  AnalyzerConfig
	Health    HealthConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	Queue     QueueConfig
	Storage   StorageConfig
	Agent     AgentConfig
	Limits    LimitsConfig
	Telemetry TelemetryConfig
	Log       LogConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port     string
	Address  string
	Headless bool
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return s.Address + ":" + s.Port
}

type AnalyzerConfig struct {
	// SkillMatchThreshold is the fuzzy partial-ratio cutoff (0-100) above
	// which a skill counts as present in a text.
	SkillMatchThreshold int
}

type HealthConfig struct {
	Interval    time.Duration
	Timeout     time.Duration
	Retries     int
	StartPeriod time.Duration
	// Path of the health endpoint, fixed for probes and the container
	// healthcheck alike.
	Path string
}

type CacheConfig struct {
	// Dir is the persistent model/datapack cache path (named volume in the
	// compose file).
	Dir    string
	Locale string
	// Bucket holding downloadable datapacks for s3:// manifest entries.
	// Defaults to the resume bucket when unset.
	Bucket string
}

type DatabaseConfig struct {
	URL string
}

type QueueConfig struct {
	URL string
	// SessionsQueue is the work queue the API publishes to and the worker
	// pool consumes from.
	SessionsQueue string
	// UpdatesExchange receives session status updates, routing key
	// "session.<id>".
	UpdatesExchange string
}

type StorageConfig struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the derived R2 endpoint, for MinIO or plain S3.
	Endpoint string
	// UsePathStyle is required by MinIO-style endpoints.
	UsePathStyle bool
}

type AgentConfig struct {
	GoogleAPIKey string
	Model        string
}

// Enabled reports whether the optional AI summary enrichment is configured.
func (a AgentConfig) Enabled() bool { return a.GoogleAPIKey != "" }

type LimitsConfig struct {
	MaxProcs         int
	MemoryLimitBytes int64
}

type TelemetryConfig struct {
	GatherUsageStats bool
}

type LogConfig struct {
	Dir   string
	Debug bool
}

type WorkerConfig struct {
	Count int
}

func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	viper.SetDefault("SERVER_PORT", "8501")
	viper.SetDefault("SERVER_ADDRESS", "0.0.0.0")
	viper.SetDefault("SERVER_HEADLESS", true)
	viper.SetDefault("GATHER_USAGE_STATS", true)
	viper.SetDefault("LOG_DIR", "./logs")
	viper.SetDefault("MODEL_CACHE_DIR", "/data/model-cache")
	viper.SetDefault("ARTIFACT_LOCALE", "en-US")
	viper.SetDefault("ARTIFACT_BUCKET", "")
	viper.SetDefault("DB_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("SESSIONS_QUEUE", "sessions")
	viper.SetDefault("SESSION_UPDATES_EXCHANGE", "session_updates")
	viper.SetDefault("R2_ACCOUNT_ID", "")
	viper.SetDefault("R2_BUCKET", "")
	viper.SetDefault("R2_ACCESS_KEY", "")
	viper.SetDefault("R2_SECRET_KEY", "")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_USE_PATH_STYLE", false)
	viper.SetDefault("GOOGLE_API_KEY", "")
	viper.SetDefault("AGENT_MODEL", "gemini-2.5-pro")
	viper.SetDefault("WORKER_COUNT", 3)
	viper.SetDefault("MAX_PROCS", 2)
	viper.SetDefault("MEMORY_LIMIT_BYTES", int64(4)<<30)
	viper.SetDefault("HEALTH_INTERVAL", 30*time.Second)
	viper.SetDefault("HEALTH_TIMEOUT", 10*time.Second)
	viper.SetDefault("HEALTH_RETRIES", 3)
	viper.SetDefault("HEALTH_START_PERIOD", 40*time.Second)
	viper.SetDefault("HEALTH_PATH", "/healthz")
	viper.SetDefault("SKILL_MATCH_THRESHOLD", 70)
	viper.SetDefault("LOG_DEBUG", false)

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("SERVER_PORT"),
			Address:  viper.GetString("SERVER_ADDRESS"),
			Headless: viper.GetBool("SERVER_HEADLESS"),
		},
		Analyzer: AnalyzerConfig{
			SkillMatchThreshold: viper.GetInt("SKILL_MATCH_THRESHOLD"),
		},
		Health: HealthConfig{
			Interval:    viper.GetDuration("HEALTH_INTERVAL"),
			Timeout:     viper.GetDuration("HEALTH_TIMEOUT"),
			Retries:     viper.GetInt("HEALTH_RETRIES"),
			StartPeriod: viper.GetDuration("HEALTH_START_PERIOD"),
			Path:        viper.GetString("HEALTH_PATH"),
		},
		Cache: CacheConfig{
			Dir:    viper.GetString("MODEL_CACHE_DIR"),
			Locale: viper.GetString("ARTIFACT_LOCALE"),
			Bucket: viper.GetString("ARTIFACT_BUCKET"),
		},
		Database: DatabaseConfig{
			URL: viper.GetString("DB_URL"),
		},
		Queue: QueueConfig{
			URL:             viper.GetString("RABBITMQ_URL"),
			SessionsQueue:   viper.GetString("SESSIONS_QUEUE"),
			UpdatesExchange: viper.GetString("SESSION_UPDATES_EXCHANGE"),
		},
		Storage: StorageConfig{
			AccountID:    viper.GetString("R2_ACCOUNT_ID"),
			Bucket:       viper.GetString("R2_BUCKET"),
			AccessKey:    viper.GetString("R2_ACCESS_KEY"),
			SecretKey:    viper.GetString("R2_SECRET_KEY"),
			Endpoint:     viper.GetString("S3_ENDPOINT"),
			UsePathStyle: viper.GetBool("S3_USE_PATH_STYLE"),
		},
		Agent: AgentConfig{
			GoogleAPIKey: viper.GetString("GOOGLE_API_KEY"),
			Model:        viper.GetString("AGENT_MODEL"),
		},
		Limits: LimitsConfig{
			MaxProcs:         viper.GetInt("MAX_PROCS"),
			MemoryLimitBytes: viper.GetInt64("MEMORY_LIMIT_BYTES"),
		},
		Telemetry: TelemetryConfig{
			GatherUsageStats: viper.GetBool("GATHER_USAGE_STATS"),
		},
		Log: LogConfig{
			Dir:   viper.GetString("LOG_DIR"),
			Debug: viper.GetBool("LOG_DEBUG"),
		},
		Worker: WorkerConfig{
			Count: viper.GetInt("WORKER_COUNT"),
		},
	}

	if cfg.Cache.Bucket == "" {
		cfg.Cache.Bucket = cfg.Storage.Bucket
	}

	return cfg, nil
}

// RequireService validates the settings both serve and worker refuse to run
// without.
func (c *Config) RequireService() error {
	if c.Database.URL == "" {
		return fmt.Errorf("empty DB_URL in environment")
	}
	if c.Queue.URL == "" {
		return fmt.Errorf("empty RABBITMQ_URL in environment")
	}
	return c.RequireStorage()
}

// RequireStorage validates the object-storage settings.
func (c *Config) RequireStorage() error {
	if c.Storage.Endpoint == "" && c.Storage.AccountID == "" {
		return fmt.Errorf("empty R2_ACCOUNT_ID in environment")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("empty R2_BUCKET in environment")
	}
	if c.Storage.AccessKey == "" {
		return fmt.Errorf("empty R2_ACCESS_KEY in environment")
	}
	if c.Storage.SecretKey == "" {
		return fmt.Errorf("empty R2_SECRET_KEY in environment")
	}
	return nil
}
