// Package debug provides conditional debug logging for pf.
//
// Debug logging is enabled by setting the PF_DEBUG environment variable:
//
//	PF_DEBUG=1 pf                   # logs to $XDG_STATE_HOME/permitflow/debug.log
//	PF_DEBUG=/tmp/pf.log pf         # logs to the given file
//
// The TUI owns the terminal, so debug output always goes to a file. When
// disabled (default), all debug functions are no-ops.
//
// Usage:
//
//	debug.Log("loaded %d categories", n)
//	defer debug.LogEnterExit("reload")()
package debug

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvVar enables debug logging when non-empty.
const EnvVar = "PF_DEBUG"

var (
	mu      sync.Mutex
	enabled bool
	logger  *zap.SugaredLogger = zap.NewNop().Sugar()
)

func init() {
	if v := os.Getenv(EnvVar); v != "" {
		if l, err := newFileLogger(logPath(v)); err == nil {
			logger = l
			enabled = true
		}
	}
}

// logPath maps the PF_DEBUG value to a log file path.
func logPath(v string) string {
	switch v {
	case "1", "true", "yes", "on":
		return filepath.Join(stateDir(), "debug.log")
	}
	return v
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "permitflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".local", "state", "permitflow")
}

func newFileLogger(path string) (*zap.SugaredLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	l, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return nil, err
	}
	return l.Named("pf").Sugar(), nil
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetLogger installs l as the debug sink and enables logging. Passing nil
// disables logging.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		enabled = false
		logger = zap.NewNop().Sugar()
		return
	}
	enabled = true
	logger = l.Sugar()
}

func current() (*zap.SugaredLogger, bool) {
	mu.Lock()
	defer mu.Unlock()
	return logger, enabled
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if l, ok := current(); ok {
		l.Debugf(format, args...)
	}
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if l, ok := current(); ok {
		l.Debugw("timing", "op", name, "took", d)
	}
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("reload")()
func LogEnterExit(name string) func() {
	l, ok := current()
	if !ok {
		return func() {}
	}
	l.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		l.Debugf("<- %s (%v)", name, time.Since(start))
	}
}

// Section logs a section header for visual organization in debug output.
func Section(name string) {
	if l, ok := current(); ok {
		l.Debugf("=== %s ===", name)
	}
}

// Sync flushes buffered log entries.
func Sync() {
	if l, ok := current(); ok {
		_ = l.Sync()
	}
}
