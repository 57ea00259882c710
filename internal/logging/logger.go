package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const defaultBufferSize = 200

// Logger is a duck-typed interface satisfied by *slog.Logger.
// Use this interface instead of *slog.Logger to decouple from the concrete type.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig    Config
	globalLevelVar  = &slog.LevelVar{} // default level
	isInitialized   bool
	mutex           sync.RWMutex
	logBuffer       = NewRingBuffer(defaultBufferSize)
	logFile         *os.File
	stderr          io.Writer = os.Stderr
	stderrIsTTY               = func() bool {
		fd := os.Stderr.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	File    string            `toml:"file"`
	Modules map[string]string `toml:"modules"`
}

// Initialize sets up the logging system. The terminal is reserved for
// rendering, so records go to Config.File when set, to stderr only when
// stderr is not a terminal, and always to the in-memory ring buffer.
func Initialize(config Config) error {
	mutex.Lock()
	defer mutex.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if config.File != "" {
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
	}

	globalConfig = config
	isInitialized = true

	globalLevel := parseLevel(config.Level)
	if globalLevel == nil {
		defaultLevel := slog.LevelInfo
		globalLevel = &defaultLevel
	}
	globalLevelVar.Set(*globalLevel)

	// Loggers handed out before Initialize keep their pointer; only their
	// level and handler chain change.
	for module, levelVar := range moduleLevelVars {
		levelVar.Set(moduleLevel(module, *globalLevel))
		handler := createHandler(config.Format, levelVar)
		*moduleLoggers[module] = *slog.New(handler).With("module", module)
	}

	slog.SetDefault(slog.New(createHandler(config.Format, globalLevelVar)))
	return nil
}

// Close releases the log file, if any.
func Close() error {
	mutex.Lock()
	defer mutex.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Recent returns up to n of the newest entries at or above minLevel,
// oldest first.
func Recent(n int, minLevel slog.Level) []LogEntry {
	return logBuffer.Tail(n, minLevel)
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := moduleLoggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	// Double-check in case another goroutine created it
	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}

	levelVar := &slog.LevelVar{}
	format := "text"
	if isInitialized {
		levelVar.Set(moduleLevel(module, globalLevelVar.Level()))
		format = globalConfig.Format
	} else {
		levelVar.Set(slog.LevelInfo)
	}

	logger := slog.New(createHandler(format, levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// moduleLevel resolves the level for module, falling back to global.
// Callers hold mutex.
func moduleLevel(module string, global slog.Level) slog.Level {
	if levelStr, exists := globalConfig.Modules[module]; exists {
		if parsed := parseLevel(levelStr); parsed != nil {
			return *parsed
		}
	}
	return global
}

// createHandler builds the handler chain for the current outputs.
// Callers hold mutex.
func createHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	newStream := func(w io.Writer) slog.Handler {
		if format == "json" {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}

	handlers := []slog.Handler{NewBufferHandler(logBuffer, level)}
	if logFile != nil {
		handlers = append(handlers, newStream(logFile))
	}
	if !stderrIsTTY() {
		handlers = append(handlers, newStream(stderr))
	}

	if len(handlers) == 1 {
		return handlers[0]
	}
	return NewMultiHandler(handlers...)
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) *slog.Level {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil
	}
	return &l
}
