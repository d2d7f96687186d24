// Package logging provides config-driven categorized file-based logging for
// Pegasus Edge. Logs are written to <data dir>/logs/ with one file per
// category. Logging is controlled by the logging section of config.json -
// when debug_mode is false, no logs are written.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, configuration
	CategorySession  Category = "session"  // TUI session lifecycle
	CategoryGemini   Category = "gemini"   // Gemini API calls, parse fallbacks
	CategoryStudio   Category = "studio"   // Creator's Edge Studio wizard
	CategoryAccess   Category = "access"   // Tier/trial policy decisions
	CategoryAudio    Category = "audio"    // AudioCraft backend calls
	CategoryPayments Category = "payments" // Payment gate (mocked)
	CategoryUI       Category = "ui"       // Page rendering, key handling
)

// Settings mirrors the logging section of config.Config to avoid a circular
// import between this package and config.
type Settings struct {
	DebugMode  bool
	Level      string
	Categories map[string]bool
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	settings  Settings
	setMu     sync.RWMutex
	logLevel  int
)

// Initialize sets up the logging directory from the resolved settings.
// Should be called once at startup with the data directory path.
func Initialize(dataDir string, s Settings) error {
	if dataDir == "" {
		return fmt.Errorf("data directory required")
	}

	setMu.Lock()
	settings = s
	switch s.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	setMu.Unlock()

	logsDir = filepath.Join(dataDir, "logs")

	// Silent no-op in production mode.
	if !s.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== Pegasus Edge logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", s.Level)

	return nil
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	setMu.RLock()
	defer setMu.RUnlock()
	return settings.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	setMu.RLock()
	defer setMu.RUnlock()

	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true // all enabled by default in debug mode
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock.
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation trivial.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l

	return l
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// Session logs to the session category.
func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}

// Gemini logs to the gemini category.
func Gemini(format string, args ...interface{}) {
	Get(CategoryGemini).Info(format, args...)
}

// GeminiDebug logs debug to the gemini category.
func GeminiDebug(format string, args ...interface{}) {
	Get(CategoryGemini).Debug(format, args...)
}

// GeminiWarn logs warning to the gemini category.
func GeminiWarn(format string, args ...interface{}) {
	Get(CategoryGemini).Warn(format, args...)
}

// GeminiError logs error to the gemini category.
func GeminiError(format string, args ...interface{}) {
	Get(CategoryGemini).Error(format, args...)
}

// Studio logs to the studio category.
func Studio(format string, args ...interface{}) {
	Get(CategoryStudio).Info(format, args...)
}

// StudioDebug logs debug to the studio category.
func StudioDebug(format string, args ...interface{}) {
	Get(CategoryStudio).Debug(format, args...)
}

// StudioError logs error to the studio category.
func StudioError(format string, args ...interface{}) {
	Get(CategoryStudio).Error(format, args...)
}

// Access logs to the access category.
func Access(format string, args ...interface{}) {
	Get(CategoryAccess).Info(format, args...)
}

// AccessDebug logs debug to the access category.
func AccessDebug(format string, args ...interface{}) {
	Get(CategoryAccess).Debug(format, args...)
}

// Audio logs to the audio category.
func Audio(format string, args ...interface{}) {
	Get(CategoryAudio).Info(format, args...)
}

// AudioError logs error to the audio category.
func AudioError(format string, args ...interface{}) {
	Get(CategoryAudio).Error(format, args...)
}

// Payments logs to the payments category.
func Payments(format string, args ...interface{}) {
	Get(CategoryPayments).Info(format, args...)
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration.
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

// Stop ends the timer and logs the duration.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}
