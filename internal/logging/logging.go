// Package logging builds the structured logger used across this
// module. The construction follows the pattern used throughout the
// retrieval pack's networking/control-plane code: a color-aware
// console encoder when attached to a terminal, a plain one otherwise.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the logging configuration loaded from the diagnostic CLI's
// YAML file (cmd/ipqueue).
type Config struct {
	Level zapcore.Level `yaml:"level"`
	// File, if set, additionally writes logs to a size-rotated file
	// alongside stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{Level: zapcore.InfoLevel}
}

// Init builds a SugaredLogger and an AtomicLevel handle that lets a
// caller change the level later (e.g. a --verbose flag).
func Init(cfg Config) (*zap.SugaredLogger, zap.AtomicLevel, error) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()

	if term.IsTerminal(int(os.Stderr.Fd())) {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(cfg.Level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	if cfg.File == "" {
		logger, err := zc.Build()
		if err != nil {
			return nil, zap.AtomicLevel{}, fmt.Errorf("logging: building logger: %w", err)
		}
		return logger.Sugar(), zc.Level, nil
	}

	// A rotating file sink is layered in alongside stderr via NewTee,
	// rather than through OutputPaths, since lumberjack isn't
	// addressable by zap's URL-based output-path registry.
	stderrEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	stderrCore := zapcore.NewCore(stderrEncoder, zapcore.Lock(os.Stderr), zc.Level)

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoder := zapcore.NewJSONEncoder(fileEncoderConfig)
	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    valueOr(cfg.MaxSizeMB, 100),
		MaxBackups: valueOr(cfg.MaxBackups, 3),
		MaxAge:     valueOr(cfg.MaxAgeDays, 28),
	})
	fileCore := zapcore.NewCore(fileEncoder, fileSink, zc.Level)

	core := zapcore.NewTee(stderrCore, fileCore)
	logger := zap.New(core)

	return logger.Sugar(), zc.Level, nil
}

func valueOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Nop returns a logger that discards everything, for library callers
// that don't provide one.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
