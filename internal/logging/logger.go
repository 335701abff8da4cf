// Package logging provides categorized logging for r9c, backed by zap.
// Each category is a named child of one shared logger; output goes to a
// JSON file under the workspace state directory and, optionally, to the
// console. Until Initialize is called everything is a silent no-op, so
// library code can log unconditionally.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem's log stream.
type Category string

const (
	CategoryBoot     Category = "boot"     // startup and shutdown
	CategoryRegistry Category = "registry" // membrane store lifecycle
	CategoryMembrane Category = "membrane" // per-membrane operations
	CategoryShell    Category = "shell"    // interactive shell traffic
	CategoryFacts    Category = "facts"    // datalog engine
	CategoryConfig   Category = "config"   // config load and reload
)

// Options configures the logging backend.
type Options struct {
	Level   string // debug, info, warn, error; default info
	File    string // JSON log path; empty disables the file sink
	Console bool   // mirror to stderr in console encoding
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop().Sugar()
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggers = make(map[Category]*zap.SugaredLogger)
	logFile *os.File
)

// Initialize builds the zap backend from opts. Safe to call more than
// once; later calls replace the sinks and reset the category cache.
func Initialize(opts Options) error {
	lvl := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		lvl = parsed
	}

	var cores []zapcore.Core
	var file *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f), level))
	}
	if opts.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr), level))
	}

	mu.Lock()
	defer mu.Unlock()
	level.SetLevel(lvl)
	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	if len(cores) == 0 {
		root = zap.NewNop().Sugar()
	} else {
		root = zap.New(zapcore.NewTee(cores...)).Sugar()
	}
	loggers = make(map[Category]*zap.SugaredLogger)
	return nil
}

// SetLevel changes the level of every sink at runtime.
func SetLevel(name string) error {
	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}
	level.SetLevel(lvl)
	return nil
}

// Get returns the logger for a category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category))
	loggers[category] = l
	return l
}

// Sync flushes buffered entries. Call at shutdown; sync errors on stderr
// are expected and ignored by callers.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}

// Close flushes and closes the file sink, returning the package to its
// no-op state.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = root.Sync()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	root = zap.NewNop().Sugar()
	loggers = make(map[Category]*zap.SugaredLogger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

// BootDebug logs debug to the boot category.
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debugf(format, args...)
}

// Registry logs to the registry category.
func Registry(format string, args ...interface{}) {
	Get(CategoryRegistry).Infof(format, args...)
}

// RegistryDebug logs debug to the registry category.
func RegistryDebug(format string, args ...interface{}) {
	Get(CategoryRegistry).Debugf(format, args...)
}

// Membrane logs to the membrane category.
func Membrane(format string, args ...interface{}) {
	Get(CategoryMembrane).Infof(format, args...)
}

// MembraneDebug logs debug to the membrane category.
func MembraneDebug(format string, args ...interface{}) {
	Get(CategoryMembrane).Debugf(format, args...)
}

// Shell logs to the shell category.
func Shell(format string, args ...interface{}) {
	Get(CategoryShell).Infof(format, args...)
}

// ShellDebug logs debug to the shell category.
func ShellDebug(format string, args ...interface{}) {
	Get(CategoryShell).Debugf(format, args...)
}

// Facts logs to the facts category.
func Facts(format string, args ...interface{}) {
	Get(CategoryFacts).Infof(format, args...)
}

// FactsDebug logs debug to the facts category.
func FactsDebug(format string, args ...interface{}) {
	Get(CategoryFacts).Debugf(format, args...)
}

// Config logs to the config category.
func Config(format string, args ...interface{}) {
	Get(CategoryConfig).Infof(format, args...)
}

// ConfigDebug logs debug to the config category.
func ConfigDebug(format string, args ...interface{}) {
	Get(CategoryConfig).Debugf(format, args...)
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer measures the duration of one operation.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level.
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Infof("%s completed in %v", t.op, elapsed)
	return elapsed
}
