// Package log is the structured logging layer of coffeestats, built on zerolog.
//
// Components obtain a named Logger once and attach context with With:
//
//	logger := log.GetLoggerWithName("cluster").With(log.ComponentKey, "kmeans")
//	logger.Info("Training started", log.SamplesKey, 15, log.FeaturesKey, 4)
//
// Fields are passed as alternating key/value pairs. Diagnostics go to stderr so
// the analytical report on stdout stays clean.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the key/value logging interface used by every package.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out loggers sharing one sink and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

// ToLogLevel parses a level name. Unknown names map to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	l.zl.Error().Fields(fields).Msg(msg)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	return &zerologLogger{zl: l.zl.With().Fields(fields).Logger()}
}

// ZerologProvider is the zerolog-backed LoggerProvider.
type ZerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider writes console-formatted logs to stderr at the given level.
func NewZerologProvider(level zerolog.Level) *ZerologProvider {
	return NewZerologProviderWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level)
}

// NewZerologProviderWithWriter writes to w, which may be a plain io.Writer for JSON lines.
func NewZerologProviderWithWriter(w io.Writer, level zerolog.Level) *ZerologProvider {
	return &ZerologProvider{base: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{zl: p.base}
}

func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.base.With().Str(NameKey, name).Logger()}
}

// Zerolog exposes the underlying zerolog.Logger for event-style logging.
func (p *ZerologProvider) Zerolog() *zerolog.Logger {
	return &p.base
}

var (
	mu             sync.RWMutex
	globalProvider = NewZerologProvider(zerolog.InfoLevel)
)

// SetupLogger replaces the global provider with a stderr provider at level.
func SetupLogger(level string) {
	SetProvider(NewZerologProvider(ToLogLevel(level)))
}

// SetProvider installs p as the global provider.
func SetProvider(p *ZerologProvider) {
	mu.Lock()
	defer mu.Unlock()
	globalProvider = p
}

func provider() *ZerologProvider {
	mu.RLock()
	defer mu.RUnlock()
	return globalProvider
}

// GetLogger returns the global zerolog.Logger for event-style logging.
func GetLogger() *zerolog.Logger {
	return provider().Zerolog()
}

// GetLoggerWithName returns a key/value Logger tagged with name.
func GetLoggerWithName(name string) Logger {
	return provider().GetLoggerWithName(name)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	l := GetLogger()
	l.Error().Err(err).Msg(msg)
}
