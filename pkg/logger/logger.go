package logger

import (
	"fmt"

	"mailsweep/pkg/activitylog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Output goes to stderr (json or console) and,
// when buf is non-nil, every entry is also recorded in the activity buffer.
func New(level, format string, buf *activitylog.Buffer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return l, nil
	}

	return l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, activitylog.NewCore(buf, lvl))
	})), nil
}
