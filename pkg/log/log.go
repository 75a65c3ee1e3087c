// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package log

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel = "info"
	defaultLogFile  = "stdout"
)

type Config struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Level: defaultLogLevel,
		File:  defaultLogFile,
	}
}

// globalLogger is always usable, callers before InitGlobalLogger get the default config.
var globalLogger = mustNewLogger(DefaultConfig())

// InitGlobalLogger replaces the process-global logger with one built from cfg.
func InitGlobalLogger(cfg *Config) (*zap.Logger, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	globalLogger = logger
	return logger, nil
}

func GetLogger() *zap.Logger {
	return globalLogger
}

func newLogger(cfg *Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errors.WithMessagef(err, "parse log level:%s", cfg.Level)
	}

	var sink zapcore.WriteSyncer
	switch cfg.File {
	case "stdout", "":
		sink = zapcore.Lock(os.Stdout)
	case "stderr":
		sink = zapcore.Lock(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.WithMessagef(err, "open log file:%s", cfg.File)
		}
		sink = zapcore.Lock(f)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, level)
	return zap.New(core, zap.AddCaller()), nil
}

func mustNewLogger(cfg *Config) *zap.Logger {
	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	return logger
}

func Debug(msg string, fields ...zap.Field) {
	globalLogger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	globalLogger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	globalLogger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	globalLogger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	globalLogger.Fatal(msg, fields...)
}
