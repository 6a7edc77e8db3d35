package bridge

import (
	"context"
	"os/exec"
	"path/filepath"
	goruntime "runtime"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/normanking/neonlight/internal/logging"
)

// EventLogEntry streams log entries to the frontend
const EventLogEntry = "log:entry"

// LogBridge exposes logging methods to the frontend
type LogBridge struct {
	ctx    context.Context
	logger *logging.Logger
	emit   EmitFunc
}

// NewLogBridge creates a new log bridge
func NewLogBridge(logger *logging.Logger) *LogBridge {
	return &LogBridge{
		logger: logger,
		emit:   runtime.EventsEmit,
	}
}

// Bind sets the Wails context and starts streaming log entries
func (b *LogBridge) Bind(ctx context.Context) {
	b.ctx = ctx
	b.logger.SetOnLog(func(entry logging.LogEntry) {
		b.emit(b.ctx, EventLogEntry, entry)
	})
}

// Log logs a message from the frontend
func (b *LogBridge) Log(level, component, message string, data map[string]interface{}) {
	switch logging.LogLevel(level) {
	case logging.LevelDebug:
		b.logger.Debug(component, message, data)
	case logging.LevelWarn:
		b.logger.Warn(component, message, data)
	case logging.LevelError:
		b.logger.Error(component, message, nil, data)
	default:
		b.logger.Info(component, message, data)
	}
}

// GetLogHistory returns recent log entries
func (b *LogBridge) GetLogHistory(limit int) []logging.LogEntry {
	return b.logger.GetHistory(limit)
}

// GetLogPath returns the current log file path
func (b *LogBridge) GetLogPath() string {
	return b.logger.GetLogPath()
}

// OpenLogDir opens the log directory in the file manager
func (b *LogBridge) OpenLogDir() error {
	return openPath(filepath.Dir(b.logger.GetLogPath()))
}

// GetSystemInfo returns system information for troubleshooting
func (b *LogBridge) GetSystemInfo() map[string]interface{} {
	var m goruntime.MemStats
	goruntime.ReadMemStats(&m)

	return map[string]interface{}{
		"os":           goruntime.GOOS,
		"arch":         goruntime.GOARCH,
		"goVersion":    goruntime.Version(),
		"numCPU":       goruntime.NumCPU(),
		"numGoroutine": goruntime.NumGoroutine(),
		"memAlloc":     m.Alloc / 1024 / 1024, // MB
		"numGC":        m.NumGC,
		"logPath":      b.logger.GetLogPath(),
	}
}

func openPath(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default:
		cmd = exec.Command("open", path)
	}
	return cmd.Start()
}
