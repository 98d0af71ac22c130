// Package logger provides structured logging using zap.
//
// Components log through Named loggers. Each component may run at its own
// level (for example network at debug while the rest stays at info); the
// remaining loggers follow the global level.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance. It discards everything until Init.
var Log = zap.NewNop()

// Sugar is the sugared logger for convenient logging.
var Sugar = Log.Sugar()

var (
	// root writes every level; loggers handed out filter on top of it.
	root   = zap.NewNop()
	global = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	levelsMu   sync.RWMutex
	components = map[string]zapcore.Level{}
)

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Init initializes the logger with the given level and optional file output.
func Init(level string, logFile string) error {
	if logFile != "" {
		return InitWithFileConfig(level, DefaultFileConfig(logFile), true)
	}
	return InitWithFileConfig(level, FileConfig{}, true)
}

// InitWithFileConfig initializes the logger with custom file configuration.
// Set consoleOutput to false to disable console logging (useful for tests).
// Component levels set earlier are kept.
func InitWithFileConfig(level string, fileCfg FileConfig, consoleOutput bool) error {
	var cores []zapcore.Core

	// Console output goes to stderr so command output stays clean.
	if consoleOutput {
		enc := encoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc),
			zapcore.Lock(os.Stderr),
			zapcore.DebugLevel,
		))
	}

	if fileCfg.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   fileCfg.Path,
			MaxSize:    fileCfg.MaxSizeMB,
			MaxBackups: fileCfg.MaxBackups,
			MaxAge:     fileCfg.MaxAgeDays,
			Compress:   fileCfg.Compress,
			LocalTime:  true, // Use local time in rotated filename
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(fileWriter),
			zapcore.DebugLevel,
		))
	}

	global.SetLevel(parseLevel(level))
	root = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Log = root.WithOptions(filterBy(global))
	Sugar = Log.Sugar()

	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
}

// SetLevel changes the global level of every logger without its own level.
func SetLevel(level string) {
	global.SetLevel(parseLevel(level))
}

// SetComponentLevels replaces the per-component levels, keyed by the name
// given to Named. Loggers already handed out pick up the change.
func SetComponentLevels(levels map[string]string) {
	next := make(map[string]zapcore.Level, len(levels))
	for name, level := range levels {
		next[name] = parseLevel(level)
	}
	levelsMu.Lock()
	components = next
	levelsMu.Unlock()
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Named returns a child of the global logger for one component.
func Named(name string) *zap.Logger {
	return root.Named(name).WithOptions(filterBy(zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		levelsMu.RLock()
		lvl, ok := components[name]
		levelsMu.RUnlock()
		if !ok {
			return global.Enabled(l)
		}
		return l >= lvl
	})))
}

func filterBy(enab zapcore.LevelEnabler) zap.Option {
	return zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return filteredCore{Core: c, enab: enab}
	})
}

// filteredCore drops entries its enabler rejects.
type filteredCore struct {
	zapcore.Core
	enab zapcore.LevelEnabler
}

func (c filteredCore) Enabled(l zapcore.Level) bool {
	return c.enab.Enabled(l) && c.Core.Enabled(l)
}

func (c filteredCore) With(fields []zapcore.Field) zapcore.Core {
	return filteredCore{Core: c.Core.With(fields), enab: c.enab}
}

func (c filteredCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.enab.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = root.Sync()
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}
