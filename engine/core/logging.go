package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func getLogger() *log.Logger {
	once.Do(func() {
		singleton = NewLogger(os.Stderr, "oxy-swarm")
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// NewLogger creates a logger writing to w in the engine's format.
//
// Parameters:
//   - w: the destination writer
//   - prefix: the prefix shown on every line
//
// Returns:
//   - *log.Logger: the configured logger
func NewLogger(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportCaller:    false,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
}

// Logger returns the process wide logger. Components fall back to it when no logger is injected.
func Logger() *log.Logger {
	return getLogger()
}

// SetLevel parses and applies a level name ("debug", "info", "warn", "error") to the process logger.
// Unknown names leave the level unchanged and return an error.
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

func LogDebug(msg string, args ...any) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...any) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...any) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...any) {
	getLogger().Errorf(msg, args...)
}
