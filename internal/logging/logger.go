package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	clog "github.com/charmbracelet/log"
)

// ConsoleTimeFormat is the timestamp layout of console log lines.
const ConsoleTimeFormat = "15:04:05"

// Logger is the structured logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes any buffered logs and releases resources.
	Shutdown() error
}

// loggerImpl fans every entry out to one or more charmbracelet loggers.
type loggerImpl struct {
	sinks []*clog.Logger
	file  *os.File
	path  string
	mu    *sync.Mutex
}

// Init builds the daemon logger: text output on stdout and, when
// cfg.FileEnabled, a JSON log file under LogDir.
func Init(cfg Config) (Logger, error) {
	return initWith(os.Stdout, cfg, true)
}

// NewWriter returns a console logger writing to w without timestamps.
func NewWriter(w io.Writer, level string) Logger {
	l, _ := initWith(w, Config{Level: level}, false)
	return l
}

func initWith(w io.Writer, cfg Config, timestamps bool) (Logger, error) {
	l := &loggerImpl{
		sinks: []*clog.Logger{newConsole(w, cfg.Level, timestamps)},
		mu:    &sync.Mutex{},
	}
	if !cfg.FileEnabled {
		return l, nil
	}
	f, path, err := openLogFile(cfg)
	if err != nil {
		return nil, err
	}
	fileLogger := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
		Formatter:       clog.JSONFormatter,
	})
	l.sinks = append(l.sinks, fileLogger.With("pid", cfg.PID, "command", cfg.Command))
	l.file = f
	l.path = path
	return l, nil
}

func newConsole(w io.Writer, level string, timestamps bool) *clog.Logger {
	console := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: timestamps,
		TimeFormat:      ConsoleTimeFormat,
		Level:           parseLevel(level),
	})
	styles := clog.DefaultStyles()
	bold := lipgloss.NewStyle().Bold(true)
	styles.Keys["filter"] = bold
	styles.Values["filter"] = bold
	console.SetStyles(styles)
	return console
}

func openLogFile(cfg Config) (*os.File, string, error) {
	logDir, err := LogDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to determine log directory: %w", err)
	}
	if err := rotate(logDir, cfg.MaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	command := cfg.Command
	if command == "" {
		command = "gaudible"
	}
	name := fmt.Sprintf("%s%s_PID%d_%s.log",
		logFilePrefix,
		time.Now().Format("20060102_150405"),
		cfg.PID,
		strings.ReplaceAll(command, " ", "_"))
	path := filepath.Join(logDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}
	return f, path, nil
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *loggerImpl) log(level clog.Level, msg string, args []any) {
	for _, s := range l.sinks {
		s.Log(level, msg, args...)
	}
}

func (l *loggerImpl) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *loggerImpl) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *loggerImpl) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *loggerImpl) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

func (l *loggerImpl) With(args ...any) Logger {
	sinks := make([]*clog.Logger, len(l.sinks))
	for i, s := range l.sinks {
		sinks[i] = s.With(args...)
	}
	return &loggerImpl{sinks: sinks, file: l.file, path: l.path, mu: l.mu}
}

func (l *loggerImpl) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// FilePath returns the JSON log file path, or "" when file logging is off.
func FilePath(l Logger) string {
	if impl, ok := l.(*loggerImpl); ok {
		return impl.path
	}
	return ""
}

// Nop returns a logger that discards all output.
func Nop() Logger { return noopLogger{} }

type noopLogger struct{}

func (n noopLogger) Debug(msg string, args ...any) {}
func (n noopLogger) Info(msg string, args ...any)  {}
func (n noopLogger) Warn(msg string, args ...any)  {}
func (n noopLogger) Error(msg string, args ...any) {}
func (n noopLogger) With(args ...any) Logger       { return n }
func (n noopLogger) Shutdown() error               { return nil }
