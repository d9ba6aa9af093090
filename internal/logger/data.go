package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// Logger provides component-tagged logging with levels

type Logger struct {
	MinLevel LogLevel
	mu       sync.Mutex
	level    zap.AtomicLevel
	base     *zap.SugaredLogger
	file     *os.File
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)
