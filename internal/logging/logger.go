// Package logging provides structured logging with file and console output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents logging levels
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	}
	return zerolog.DebugLevel
}

// LogEntry represents a single log entry for the frontend
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
	Data      string `json:"data,omitempty"`
}

// Logger wraps zerolog with file output and log history
type Logger struct {
	zlog    zerolog.Logger
	level   zerolog.Level
	file    *os.File
	logPath string
	mu      sync.RWMutex
	history []LogEntry
	maxHist int
	onLog   func(LogEntry) // callback for real-time log streaming
}

// Config holds logger configuration
type Config struct {
	LogDir     string   // Directory for log files (default: ~/.neonlight/logs)
	Level      LogLevel // Minimum log level (default: debug)
	MaxHistory int      // Max entries to keep in memory (default: 1000)
	Console    bool     // Also log to console (default: true)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		LogDir:     filepath.Join(home, ".neonlight", "logs"),
		Level:      LevelDebug,
		MaxHistory: 1000,
		Console:    true,
	}
}

// New creates a new Logger with file and console output
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultConfig().LogDir
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// One file per day
	logFileName := fmt.Sprintf("neonlight_%s.log", time.Now().Format("2006-01-02"))
	logPath := filepath.Join(cfg.LogDir, logFileName)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	writers := []io.Writer{file}
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	}

	logger := NewWithWriter(io.MultiWriter(writers...), cfg.Level, cfg.MaxHistory)
	logger.file = file
	logger.logPath = logPath

	logger.Info("logging", "Logger initialized", map[string]any{
		"logFile": logPath,
		"level":   string(cfg.Level),
	})
	return logger, nil
}

// NewWithWriter creates a Logger that writes JSON lines to w and keeps no file
func NewWithWriter(w io.Writer, level LogLevel, maxHistory int) *Logger {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	zl := level.zerolog()
	return &Logger{
		zlog: zerolog.New(w).Level(zl).With().
			Timestamp().
			Str("app", "neonlight").
			Logger(),
		level:   zl,
		history: make([]LogEntry, 0, maxHistory),
		maxHist: maxHistory,
	}
}

// SetOnLog sets a callback for real-time log streaming (to frontend)
func (l *Logger) SetOnLog(fn func(LogEntry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onLog = fn
}

func (l *Logger) addToHistory(entry LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.history = append(l.history, entry)
	if len(l.history) > l.maxHist {
		l.history = l.history[len(l.history)-l.maxHist:]
	}

	if l.onLog != nil {
		go l.onLog(entry)
	}
}

// GetHistory returns up to limit of the most recent entries, oldest first
func (l *Logger) GetHistory(limit int) []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.history) {
		limit = len(l.history)
	}
	result := make([]LogEntry, limit)
	copy(result, l.history[len(l.history)-limit:])
	return result
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	return l.logPath
}

// Close closes the log file
func (l *Logger) Close() error {
	l.Info("logging", "Logger shutting down", nil)
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// formatData renders data as sorted key=value pairs
func formatData(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, data[k]))
	}
	return strings.Join(parts, ", ")
}

func (l *Logger) write(level zerolog.Level, component, msg string, err error, data map[string]any) {
	if level < l.level {
		return
	}
	event := l.zlog.WithLevel(level).Str("component", component)
	if err != nil {
		event = event.Err(err)
	}
	for k, v := range data {
		event = event.Interface(k, v)
	}
	event.Msg(msg)

	text := formatData(data)
	if err != nil {
		text = strings.TrimSpace(text + " error=" + err.Error())
	}
	l.addToHistory(LogEntry{
		Timestamp: time.Now().Format("15:04:05.000"),
		Level:     level.String(),
		Component: component,
		Message:   msg,
		Data:      text,
	})
}

// Debug logs a debug message
func (l *Logger) Debug(component, msg string, data map[string]any) {
	l.write(zerolog.DebugLevel, component, msg, nil, data)
}

// Info logs an info message
func (l *Logger) Info(component, msg string, data map[string]any) {
	l.write(zerolog.InfoLevel, component, msg, nil, data)
}

// Warn logs a warning message
func (l *Logger) Warn(component, msg string, data map[string]any) {
	l.write(zerolog.WarnLevel, component, msg, nil, data)
}

// Error logs an error message
func (l *Logger) Error(component, msg string, err error, data map[string]any) {
	l.write(zerolog.ErrorLevel, component, msg, err, data)
}

// Component returns a zerolog.Logger with the component field set, for
// packages that take a zerolog.Logger directly
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

// Zerolog returns the underlying zerolog.Logger
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}
