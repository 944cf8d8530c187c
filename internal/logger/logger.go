// Package logger writes parley's debug log. The TUI owns the terminal, so
// everything goes to a file under /tmp through a shared slog.Logger.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultLogPath is the log file used when Init is never called.
const DefaultLogPath = "/tmp/parley-debug.log"

// logGlob matches every log file parley may have written, including
// the per-port logs of demo servers.
const logGlob = "/tmp/parley-*.log"

var (
	mu       sync.Mutex
	level    = new(slog.LevelVar)
	base     *slog.Logger
	file     *os.File
	path     string
	triedDefault bool // a default open was tried, successfully or not
)

// DemoLogPath returns the log path for a demo server listening on port.
func DemoLogPath(port int) string {
	return fmt.Sprintf("/tmp/parley-demo-%d.log", port)
}

// SetDebug switches between debug and info level. It applies to loggers
// already handed out.
func SetDebug(enabled bool) {
	if enabled {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// Init opens the log file at p. Calls after the first successful one are
// no-ops until Reset.
func Init(p string) error {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		return nil
	}
	return open(p)
}

// Path returns the file currently being written, or "" before the first log line.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return path
}

// open must be called with mu held.
func open(p string) error {
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", p, err)
	}
	file, path = f, p
	base = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	base.Info("logger initialized", "path", p)
	return nil
}

// with returns base carrying attr, opening the default file on first use.
func with(attr slog.Attr) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if base == nil && !triedDefault {
		triedDefault = true
		if err := open(DefaultLogPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if base == nil {
		return slog.New(slog.DiscardHandler)
	}
	return base.With(attr)
}

// WithComponent returns a logger tagged with the subsystem writing to it.
//
//	log := logger.WithComponent("api")
//	log.Info("request sent", "method", "POST", "path", "/chat")
func WithComponent(component string) *slog.Logger {
	return with(slog.String("component", component))
}

// WithConversation returns a logger tagged with a conversation ID.
func WithConversation(conversationID string) *slog.Logger {
	return with(slog.String("conversationID", conversationID))
}

// Close closes the log file. Later log lines are dropped.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	base = nil
	triedDefault = true
}

// Reset forgets the open file and level so tests can Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	base, path, triedDefault = nil, "", false
	level.Set(slog.LevelInfo)
}

// LogFiles lists the parley log files currently in /tmp.
func LogFiles() ([]string, error) {
	return filepath.Glob(logGlob)
}

// ClearLogs removes all parley log files from /tmp and returns how many were removed.
func ClearLogs() (int, error) {
	logs, err := LogFiles()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, p := range logs {
		if err := os.Remove(p); err == nil {
			count++
		} else if !os.IsNotExist(err) {
			return count, err
		}
	}
	return count, nil
}
