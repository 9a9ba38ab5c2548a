package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel defines log level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

const filePrefix = "searchdl-"

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger is a levelled logger writing to a daily rotated file and,
// optionally, a console stream.
type Logger struct {
	mu          sync.Mutex
	level       LogLevel
	logDir      string
	maxDays     int
	prefix      string
	console     io.Writer
	currentFile *os.File
	currentDate string
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Config logger configuration
type Config struct {
	LogDir  string    // Log directory, empty disables the log file
	Level   LogLevel  // Log level
	MaxDays int       // Max days to keep logs
	Console io.Writer // Mirror log lines here when set
	Prefix  string    // Tag added to every line, e.g. the run id
}

// Init replaces the default logger
func Init(cfg Config) error {
	l, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return nil
}

// NewLogger creates a new logger instance
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 7
	}

	l := &Logger{
		level:   cfg.Level,
		logDir:  cfg.LogDir,
		maxDays: cfg.MaxDays,
		prefix:  cfg.Prefix,
		console: cfg.Console,
	}

	if l.logDir == "" {
		return l, nil
	}

	if err := os.MkdirAll(l.logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := l.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return l, nil
}

// rotateIfNeeded opens today's file, closing yesterday's
func (l *Logger) rotateIfNeeded() error {
	if l.logDir == "" {
		return nil
	}
	today := time.Now().Format("2006-01-02")
	if l.currentDate == today && l.currentFile != nil {
		return nil
	}

	if l.currentFile != nil {
		l.currentFile.Close()
	}

	filename := filepath.Join(l.logDir, fmt.Sprintf("%s%s.log", filePrefix, today))
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.currentFile = f
	l.currentDate = today

	l.cleanOldLogs()

	return nil
}

// cleanOldLogs removes log files older than maxDays
func (l *Logger) cleanOldLogs() {
	files, err := filepath.Glob(filepath.Join(l.logDir, filePrefix+"*.log"))
	if err != nil || len(files) <= l.maxDays {
		return
	}

	// Names sort by date
	sort.Strings(files)
	for i := 0; i < len(files)-l.maxDays; i++ {
		os.Remove(files[i])
	}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger rotation error: %v\n", err)
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	var logLine string
	if l.prefix != "" {
		logLine = fmt.Sprintf("[%s] [%s] [%s] %s\n", timestamp, level.String(), l.prefix, message)
	} else {
		logLine = fmt.Sprintf("[%s] [%s] %s\n", timestamp, level.String(), message)
	}

	if l.currentFile != nil {
		l.currentFile.WriteString(logLine)
	}
	if l.console != nil {
		io.WriteString(l.console, logLine)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.currentFile != nil {
		err := l.currentFile.Close()
		l.currentFile = nil
		return err
	}
	return nil
}

// Package-level functions using the default logger

func current() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// Debug logs a debug message using the default logger
func Debug(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debug(format, args...)
	}
}

// Info logs an info message using the default logger
func Info(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Info(format, args...)
	}
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warn(format, args...)
	}
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Error(format, args...)
	}
}

// Close closes the default logger
func Close() error {
	if l := current(); l != nil {
		return l.Close()
	}
	return nil
}

// GetDefault returns the default logger
func GetDefault() *Logger {
	return current()
}
