// Package logging provides the leveled logger used across RawFlow. It keeps
// a printf-style API on top of zap: console output (colored when the
// terminal allows it) plus an optional append-only log file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/backmassage/rawflow/internal/config"
	"github.com/backmassage/rawflow/internal/term"
)

const timeLayout = "2006-01-02 15:04:05"

// Logger provides leveled logging with an optional file sink. Loggers
// derived with With share the parent's sinks; only the root owns the file.
type Logger struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// NewLogger builds the console sink from cfg (color mode, verbosity) and
// optionally opens cfg.LogFile for appending. Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.Verbose {
		level.SetLevel(zap.DebugLevel)
	}

	color := term.ColorEnabled(cfg.ColorMode)
	console := zapcore.NewConsoleEncoder(encoderConfig(color))

	// Errors go to stderr, everything else to stdout.
	below := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return level.Enabled(l) && l < zap.ErrorLevel })
	above := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return level.Enabled(l) && l >= zap.ErrorLevel })
	cores := []zapcore.Core{
		zapcore.NewCore(console, zapcore.Lock(os.Stdout), below),
		zapcore.NewCore(console, zapcore.Lock(os.Stderr), above),
	}

	l := &Logger{}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		plain := zapcore.NewConsoleEncoder(encoderConfig(false))
		cores = append(cores, zapcore.NewCore(plain, zapcore.Lock(f), level))
	}

	l.sugar = zap.New(zapcore.NewTee(cores...)).Sugar()
	return l, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	levelEnc := zapcore.CapitalLevelEncoder
	if color {
		levelEnc = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeLevel:      levelEnc,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// With returns a child logger that adds key/value context to every line.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// Close flushes buffered output and closes the log file if one was opened.
func (l *Logger) Close() error {
	_ = l.sugar.Sync() // stdout/stderr may not support fsync
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Info(fmt.Sprintf(format, args...))
}

// Success logs at INFO level, tagged status=ok.
func (l *Logger) Success(format string, args ...interface{}) {
	l.sugar.Infow(fmt.Sprintf(format, args...), "status", "ok")
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warn(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level, to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Error(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; dropped unless the logger was built verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debug(fmt.Sprintf(format, args...))
}
