package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/director/common"
	"github.com/rs/zerolog"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	SetLevel(level common.LogLevel)
}

type zerologLogger struct {
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewDefaultLogger returns a console logger on stderr with logging disabled until SetLevel is called.
func NewDefaultLogger() Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return NewZerologLogger(zerolog.New(out).With().Timestamp().Logger().Level(zerolog.Disabled))
}

// New builds a logger for the given level and format ("console" or "json").
func New(w io.Writer, level common.LogLevel, format string) Logger {
	if w == nil {
		w = os.Stderr
	}
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).With().Timestamp().Str("service", "director").Logger()
	return NewZerologLogger(zl.Level(toZerolog(level)))
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return &zerologLogger{logger: zl}
}

// NewNopLogger discards everything.
func NewNopLogger() Logger {
	return NewZerologLogger(zerolog.Nop())
}

// Zerolog exposes the underlying zerolog logger when the Logger was built by this package.
func Zerolog(l Logger) zerolog.Logger {
	if zl, ok := l.(*zerologLogger); ok {
		zl.mu.RLock()
		defer zl.mu.RUnlock()
		return zl.logger
	}
	return zerolog.Nop()
}

func toZerolog(level common.LogLevel) zerolog.Level {
	switch level {
	case common.DebugLevel:
		return zerolog.DebugLevel
	case common.InfoLevel:
		return zerolog.InfoLevel
	case common.WarnLevel:
		return zerolog.WarnLevel
	case common.ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

func (l *zerologLogger) event(level zerolog.Level) *zerolog.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger.WithLevel(level)
}

func (l *zerologLogger) log(level zerolog.Level, args ...interface{}) {
	l.mu.RLock()
	enabled := level >= l.logger.GetLevel()
	l.mu.RUnlock()
	if !enabled {
		return
	}
	l.event(level).Msg(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func (l *zerologLogger) logf(level zerolog.Level, format string, args ...interface{}) {
	l.mu.RLock()
	enabled := level >= l.logger.GetLevel()
	l.mu.RUnlock()
	if !enabled {
		return
	}
	l.event(level).Msgf(format, args...)
}

func (l *zerologLogger) Debug(args ...interface{}) { l.log(zerolog.DebugLevel, args...) }
func (l *zerologLogger) Debugf(format string, args ...interface{}) {
	l.logf(zerolog.DebugLevel, format, args...)
}
func (l *zerologLogger) Info(args ...interface{}) { l.log(zerolog.InfoLevel, args...) }
func (l *zerologLogger) Infof(format string, args ...interface{}) {
	l.logf(zerolog.InfoLevel, format, args...)
}
func (l *zerologLogger) Warn(args ...interface{}) { l.log(zerolog.WarnLevel, args...) }
func (l *zerologLogger) Warnf(format string, args ...interface{}) {
	l.logf(zerolog.WarnLevel, format, args...)
}
func (l *zerologLogger) Error(args ...interface{}) { l.log(zerolog.ErrorLevel, args...) }
func (l *zerologLogger) Errorf(format string, args ...interface{}) {
	l.logf(zerolog.ErrorLevel, format, args...)
}

func (l *zerologLogger) SetLevel(level common.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = l.logger.Level(toZerolog(level))
}
