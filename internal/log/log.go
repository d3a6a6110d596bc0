// Package log provides category-based structured logging for bytechef.
//
// Logging is a no-op until Init is called. The TUI owns the terminal, so
// log output always goes to a file.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category tags a log line with the subsystem that emitted it.
type Category string

const (
	CatApp      Category = "app"
	CatConfig   Category = "config"
	CatDB       Category = "db"
	CatAPI      Category = "api"
	CatWorkflow Category = "workflow"
	CatExec     Category = "exec"
	CatUI       Category = "ui"
)

var (
	current atomic.Pointer[zap.SugaredLogger]
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	current.Store(zap.NewNop().Sugar())
}

// Init opens (or creates) the log file at path and installs a JSON logger at
// the given level. The returned function flushes and closes the file.
func Init(path, levelName string) (func(), error) {
	if err := SetLevel(levelName); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // G304: path comes from config
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)
	logger := zap.New(core)
	current.Store(logger.Sugar())

	return func() {
		_ = logger.Sync()
		current.Store(zap.NewNop().Sugar())
		_ = f.Close()
	}, nil
}

// SetLevel changes the minimum level of the installed logger.
// Valid values: debug, info, warn, error. Empty means info.
func SetLevel(levelName string) error {
	if levelName == "" {
		levelName = "info"
	}
	parsed, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	level.SetLevel(parsed)
	return nil
}

// Level returns the current minimum level name.
func Level() string {
	return level.Level().String()
}

// UseLogger installs an existing zap logger. Intended for tests.
func UseLogger(l *zap.Logger) {
	current.Store(l.Sugar())
}

// Debug logs a debug message with key/value pairs.
func Debug(cat Category, msg string, kv ...any) {
	current.Load().With("cat", string(cat)).Debugw(msg, kv...)
}

// Info logs an informational message with key/value pairs.
func Info(cat Category, msg string, kv ...any) {
	current.Load().With("cat", string(cat)).Infow(msg, kv...)
}

// Warn logs a warning with key/value pairs.
func Warn(cat Category, msg string, kv ...any) {
	current.Load().With("cat", string(cat)).Warnw(msg, kv...)
}

// Error logs an error message with key/value pairs.
func Error(cat Category, msg string, kv ...any) {
	current.Load().With("cat", string(cat)).Errorw(msg, kv...)
}

// ErrorErr logs an error message with the error attached under the "error" key.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	current.Load().With("cat", string(cat), zap.Error(err)).Errorw(msg, kv...)
}
