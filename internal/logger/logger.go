package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 5
	defaultMaxBackups = 3
	defaultMaxAgeDays = 14
)

var log = zerolog.New(io.Discard)

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Options controls where and how much a process logs.
type Options struct {
	// Level is the minimum level written.
	Level LogLevel
	// File is a rotating log file path. Empty disables file output.
	File string
	// Console enables the human-readable writer on stderr.
	Console bool
	// Process is attached to every entry so shared log directories stay readable.
	Process string
}

// Init initializes the logger based on the given options
func Init(opts Options) {
	var writers []io.Writer

	if opts.Console {
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		if IsService() {
			output.TimeFormat = ""
			output.FormatTimestamp = func(_ interface{}) string {
				return ""
			}
		}
		writers = append(writers, output)
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    defaultMaxSizeMB,
				MaxBackups: defaultMaxBackups,
				MaxAge:     defaultMaxAgeDays,
			})
		}
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	ctx := zerolog.New(out).With().Timestamp()
	if opts.Process != "" {
		ctx = ctx.Str("process", opts.Process)
	}
	log = ctx.Logger()

	SetLogLevel(opts.Level)
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// ParseLevel maps a configured level name to a LogLevel.
func ParseLevel(name string) (LogLevel, bool) {
	switch name {
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "warning", "warn":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	default:
		return InfoLevel, false
	}
}

// IsService checks if the application is running detached from a terminal
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}

	return os.Getppid() == 1
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

// FatalWithCode logs a fatal message with a specific error code and exits the program
func FatalWithCode(err errors.Error) *LogEvent {
	return &LogEvent{log.Fatal().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// component is a Logger that tags every entry with a component name.
type component struct {
	name string
}

// Default returns a Logger backed by the package-level logger.
func Default() Logger {
	return component{}
}

func (c component) With(name string) Logger {
	return component{name: name}
}

func (c component) tag(e *zerolog.Event) *LogEvent {
	if c.name != "" {
		e = e.Str("component", c.name)
	}

	return &LogEvent{e}
}

func (c component) Debug() *LogEvent { return c.tag(log.Debug()) }
func (c component) Info() *LogEvent  { return c.tag(log.Info()) }
func (c component) Warn() *LogEvent  { return c.tag(log.Warn()) }
func (c component) Error() *LogEvent { return c.tag(log.Error()) }

func (c component) ErrorWithCode(err errors.Error) *LogEvent {
	return c.tag(log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap()))
}
