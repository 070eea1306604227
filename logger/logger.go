package logger

import (
	"fmt"
	"log"
	"os"
	"path"
	"regexp"
	"runtime"

	"github.com/fatih/color"
)

const (
	callerTmpl  = "%s:%d"
	knownFrames = 2
)

var modulePathRegex = regexp.MustCompile("budget.*$")

// The Logger interface defines the levels a logging can occur at.
type Logger interface {
	Debug(msg string, ctx *LogContext)
	Error(msg string, ctx *LogContext)
	Fatal(msg string, ctx *LogContext)
	Info(msg string, ctx *LogContext)
	Warn(msg string, ctx *LogContext)

	LogLevel() LogLevel
}

// The SkipLogger interface defines a Logger that scrolls back
// the number of frames provided in order to ascertain the call site.
type SkipLogger interface {
	AddSkip(i int) SkipLogger
	Skip() int
	Logger
}

type LogLevel int

const (
	LogLevelUnk LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// NewLogLevel parses val into a LogLevel, returning LogLevelUnk for unknown values.
func NewLogLevel(val string) LogLevel {
	switch val {
	case "DEBUG":
		return LogLevelDebug
	case "INFO":
		return LogLevelInfo
	case "WARN":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	case "FATAL":
		return LogLevelFatal
	default:
		return LogLevelUnk
	}
}

func (ll LogLevel) String() string {
	switch ll {
	case LogLevelDebug:
		return "[DEBUG]"
	case LogLevelInfo:
		return "[INFO]"
	case LogLevelWarn:
		return "[WARN]"
	case LogLevelError:
		return "[ERROR]"
	case LogLevelFatal:
		return "[FATAL]"
	default:
		return "[UNK]"
	}
}

// AppLogger implements Logger using the std lib log pkg.
type AppLogger struct {
	skip int
	env  string
	l    *log.Logger
	ll   LogLevel
}

// New constructs an *AppLogger.
//
// Logs are printed to os.Stdout by default.
// The default environment is DEVELOPMENT.
// The default log level is INFO.
func New(opts ...LoggerOptFn) *AppLogger {
	l := &AppLogger{
		env: "DEVELOPMENT",
		l:   log.New(os.Stdout, "", log.LstdFlags),
		ll:  LogLevelInfo,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// AddSkip replaces the current number of frames to scroll back
// when logging a message.
func (l *AppLogger) AddSkip(i int) SkipLogger {
	newl := *l
	newl.skip = i
	return &newl
}

// Debug writes a debug log.
func (l *AppLogger) Debug(msg string, ctx *LogContext) {
	if l.ll > LogLevelDebug {
		return
	}

	l.log(color.WhiteString, LogLevelDebug, msg, ctx)
}

// Error writes an error log.
func (l *AppLogger) Error(msg string, ctx *LogContext) {
	if l.ll > LogLevelError {
		return
	}

	l.log(color.RedString, LogLevelError, msg, ctx)
}

// Fatal writes a fatal log.
// Unlike log.Fatal, it does not exit the process.
func (l *AppLogger) Fatal(msg string, ctx *LogContext) {
	if l.ll > LogLevelFatal {
		return
	}

	l.log(color.MagentaString, LogLevelFatal, msg, ctx)
}

// Info writes an info log.
func (l *AppLogger) Info(msg string, ctx *LogContext) {
	if l.ll > LogLevelInfo {
		return
	}

	l.log(color.BlueString, LogLevelInfo, msg, ctx)
}

// Warn writes a warning log.
func (l *AppLogger) Warn(msg string, ctx *LogContext) {
	if l.ll > LogLevelWarn {
		return
	}

	l.log(color.YellowString, LogLevelWarn, msg, ctx)
}

// LogLevel returns the LogLevel set for the AppLogger.
func (l *AppLogger) LogLevel() LogLevel { return l.ll }

// Skip returns the current amount of frames to scroll back
// when logging a message.
func (l *AppLogger) Skip() int { return l.skip }

// log prints the message, including any context if available.
func (l *AppLogger) log(colorizer func(string, ...any) string, level LogLevel, msg string, ctx *LogContext) {
	var caller string
	if ctx != nil && ctx.Caller != "" {
		caller = ctx.Caller
	} else {
		_, file, line, _ := runtime.Caller(knownFrames + l.skip)
		caller = fmt.Sprintf(callerTmpl, immediateFilepath(file), line)
	}

	msg = colorizer("%s %s '%s'", level, caller, msg)
	if ctx == nil {
		l.l.Println(msg)
		return
	}

	l.l.Println(msg, "log_context:", ctx)
}

// immediateFilepath trims file down to the module-relative path
// or, outside the module, the file and the directory it is in, e.g.:
//
//	/home/dev/my-project/main.go => my-project/main.go
func immediateFilepath(file string) string {
	if match := modulePathRegex.FindString(file); match != "" {
		return match
	}

	dir, name := path.Split(file)
	return path.Base(dir) + string(os.PathSeparator) + name
}
