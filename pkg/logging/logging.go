// Package logging builds the zap logger used by the application facade and
// the extrusion engine.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chazu/formcutter/pkg/config"
)

// ParseLevel maps a level name to a zap level. Unknown or empty names mean
// info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// New builds a logger from the logging section. With a Logfile set, JSON
// records go to a rotating file; otherwise a console encoder writes to
// stderr. The returned func flushes and releases the sink.
func New(cfg config.Logging) (*zap.Logger, func() error, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	if cfg.Logfile == "" {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
		logger := zap.New(core)
		return logger, func() error { return ignoreSyncErr(logger.Sync()) }, nil
	}

	if cfg.MaxSize < 0 || cfg.MaxAge < 0 {
		return nil, nil, fmt.Errorf("logging: rotation limits must not be negative")
	}
	l := &lumberjack.Logger{
		Filename: cfg.Logfile,
		MaxSize:  cfg.MaxSize, // megabytes
		MaxAge:   cfg.MaxAge,  // days
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(l), level)
	logger := zap.New(core)

	closer := func() error {
		if err := ignoreSyncErr(logger.Sync()); err != nil {
			return err
		}
		return l.Close()
	}
	return logger, closer, nil
}

// ignoreSyncErr drops the EINVAL that fsync returns on terminals.
func ignoreSyncErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}
