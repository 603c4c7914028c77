// Package logger builds the zap loggers used across the service. Logs go to
// stdout and, when a log directory is configured, to a file inside it so the
// host-mounted log directory keeps a copy across container restarts.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const FileName = "resume-analyzer.log"

type Options struct {
	// Dir is the log directory. Empty disables file output.
	Dir string
	// Debug switches to a development config with debug level enabled.
	Debug bool
}

func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Debug {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.LevelKey = "level"

	config.OutputPaths = []string{"stdout"}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", opts.Dir, err)
		}
		config.OutputPaths = append(config.OutputPaths, filepath.Join(opts.Dir, FileName))
	}

	return config.Build()
}

func NewSugared(opts Options) (*zap.SugaredLogger, error) {
	log, err := New(opts)
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}
