// Package logging builds the zap logger: human readable output on stderr and
// JSON lines in a size-rotated file.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the logger.
type Config struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`  // empty disables the file sink
	MaxSizeMiB int    `yaml:"max_size_mib"`
	Backups    int    `yaml:"backups"`
}

// DefaultConfig logs at info level to logs/protocolgen.log, keeping three
// 5 MiB backups.
func DefaultConfig() Config {
	return Config{Level: "info", File: "logs/protocolgen.log", MaxSizeMiB: 5, Backups: 3}
}

// Validate checks the level.
func (c Config) Validate() error {
	_, err := zapcore.ParseLevel(c.Level)
	return err
}

// New builds a logger from cfg. The returned close function flushes and
// closes the file sink.
func New(cfg Config) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	closeFn := func() error { return nil }
	if cfg.File != "" {
		sink := fileSink(cfg)
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(sink), level))
		closeFn = sink.Close
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return logger, func() error {
		_ = logger.Sync()
		return closeFn()
	}, nil
}

// fileSink opens cfg.File lazily, rotating it at MaxSizeMiB and keeping
// Backups old files next to it.
func fileSink(cfg Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMiB,
		MaxBackups: cfg.Backups,
	}
}
