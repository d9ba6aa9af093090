package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logLevelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var zapLevels = map[LogLevel]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel accepts debug, info, warn, warning and error in any case.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// New builds a logger writing to stderr and, when folder is set, to
// folder/etl_run_YYYYMMDD_HHMMSS.log as JSON lines.
func New(level LogLevel, folder string) (*Logger, error) {
	atom := zap.NewAtomicLevelAt(zapLevels[level])
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), atom),
	}

	var file *os.File
	if folder != "" {
		if err := os.MkdirAll(folder, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create log folder %s: %w", folder, err)
		}
		name := filepath.Join(folder, "etl_run_"+time.Now().Format("20060102_150405")+".log")
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(f), atom))
	}

	l := newLogger(zapcore.NewTee(cores...), atom)
	l.MinLevel = level
	l.file = file
	return l, nil
}

func newLogger(core zapcore.Core, atom zap.AtomicLevel) *Logger {
	return &Logger{
		MinLevel: LevelInfo,
		level:    atom,
		base:     zap.New(core).Sugar(),
	}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{MinLevel: LevelError, level: zap.NewAtomicLevel(), base: zap.NewNop().Sugar()}
}

// SetLogLevel sets the minimum log level
func (l *Logger) SetLogLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensure()
	l.MinLevel = level
	l.level.SetLevel(zapLevels[level])
}

// ensure lazily builds a console logger for zero-value Loggers. Callers hold mu.
func (l *Logger) ensure() {
	if l.base != nil {
		return
	}
	l.level = zap.NewAtomicLevelAt(zapLevels[l.MinLevel])
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), l.level)
	l.base = zap.New(core).Sugar()
}

func (l *Logger) sugar(component string) *zap.SugaredLogger {
	l.mu.Lock()
	l.ensure()
	base := l.base
	l.mu.Unlock()

	if component != "" {
		return base.With("component", component)
	}
	return base
}

func (l *Logger) log(level LogLevel, component, message string, args ...interface{}) {
	if level < l.MinLevel {
		return
	}

	s := l.sugar(component)
	switch level {
	case LevelDebug:
		s.Debugf(message, args...)
	case LevelInfo:
		s.Infof(message, args...)
	case LevelWarn:
		s.Warnf(message, args...)
	default:
		s.Errorf(message, args...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, args ...interface{}) {
	l.log(LevelDebug, component, message, args...)
}

// Info logs an info message
func (l *Logger) Info(component, message string, args ...interface{}) {
	l.log(LevelInfo, component, message, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, args ...interface{}) {
	l.log(LevelWarn, component, message, args...)
}

// Error logs an error message
func (l *Logger) Error(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
	l.Close()
	os.Exit(1)
}

// Close flushes buffered entries and closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.base != nil {
		_ = l.base.Sync()
	}
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
