// Package logging provides the structured logger used throughout the
// reachable-set engine. It wraps zap rather than reinventing levels,
// formatting, or sinks.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a log severity. It round-trips through JSON as its string form
// so configuration files can spell out "warn" instead of an integer.
type Level int

// Severities, ordered least to most severe.
const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (level Level) String() string {
	switch level {
	case DEBUG:
		return "Debug"
	case INFO:
		return "Info"
	case WARN:
		return "Warn"
	case ERROR:
		return "Error"
	default:
		return "Unknown"
	}
}

// LevelFromString parses the (case-insensitive) string form of a Level,
// accepting "warning" as an alias for "warn".
func LevelFromString(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (level Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + level.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (level *Level) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid level literal %q", s)
	}
	parsed, err := LevelFromString(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*level = parsed
	return nil
}

func (level Level) zapLevel() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is the interface every reachable-set subsystem logs through.
// It is deliberately small: subsystems only need leveled, formatted
// output plus the ability to attach a name for the call site.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Named(name string) Logger
	With(args ...interface{}) Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a Logger at the given level that writes through the given
// Appenders. With no appenders, it writes to stdout.
func New(level Level, appenders ...Appender) Logger {
	if len(appenders) == 0 {
		appenders = []Appender{NewStdoutAppender()}
	}
	cores := make([]zapcore.Core, 0, len(appenders))
	enc := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	for _, a := range appenders {
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(a), level.zapLevel()))
	}
	core := zapcore.NewTee(cores...)
	return &zapLogger{sugar: zap.New(core).Sugar()}
}

// NewTestLogger returns a Logger suitable for use in tests; it writes at
// DEBUG level to stdout so `go test -v` shows everything.
func NewTestLogger() Logger {
	return New(DEBUG)
}

func (l *zapLogger) Debugf(template string, args ...interface{}) { l.sugar.Debugf(template, args...) }
func (l *zapLogger) Infof(template string, args ...interface{})  { l.sugar.Infof(template, args...) }
func (l *zapLogger) Warnf(template string, args ...interface{})  { l.sugar.Warnf(template, args...) }
func (l *zapLogger) Errorf(template string, args ...interface{}) { l.sugar.Errorf(template, args...) }

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{sugar: l.sugar.Named(name)}
}

func (l *zapLogger) With(args ...interface{}) Logger {
	return &zapLogger{sugar: l.sugar.With(args...)}
}
