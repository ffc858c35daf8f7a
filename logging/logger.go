package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crytic/tokengas/logging/colors"
	"github.com/rs/zerolog"
)

// Logger describes a custom logging object that can log events to any arbitrary channel and can handle specialized
// output to console as well. Each component receives its own sub-logger so that log lines are "grep-able" by the
// service that emitted them.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// multiLogger describes a logger that will be used to output logs to any arbitrary channel(s) in either structured
	// or unstructured format.
	multiLogger zerolog.Logger

	// consoleLogger describes a logger that will be used to output unstructured, colorized output to the console.
	consoleLogger zerolog.Logger

	// context holds the key-value pairs attached by NewSubLogger, re-applied whenever the writers change.
	context []string

	// writers describes a list of io.Writer objects where log output will go.
	writers []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// consoleDestination is where console logs are written. Console output goes to stderr so that reports written to stdout
// stay machine-readable.
var consoleDestination io.Writer = os.Stderr

// NewLogger will create a new Logger object with a specific log level. The Logger can output to console, if enabled,
// and output logs to any number of arbitrary io.Writer channels
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	// Both base loggers start disabled so that a Logger is always usable, even with no outputs.
	baseMultiLogger := zerolog.New(io.Discard).Level(zerolog.Disabled)
	baseConsoleLogger := zerolog.New(io.Discard).Level(zerolog.Disabled)

	if len(writers) > 0 {
		baseMultiLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}

	if consoleEnabled {
		consoleWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: consoleDestination}, level)
		baseConsoleLogger = zerolog.New(consoleWriter).Level(level)
	}

	return &Logger{
		level:         level,
		multiLogger:   baseMultiLogger,
		consoleLogger: baseConsoleLogger,
		writers:       writers,
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some key
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	context := make([]string, 0, len(l.context)+2)
	context = append(context, l.context...)
	context = append(context, key, value)

	return &Logger{
		level:         l.level,
		multiLogger:   l.multiLogger.With().Str(key, value).Logger(),
		consoleLogger: l.consoleLogger.With().Str(key, value).Logger(),
		context:       context,
		writers:       l.writers,
	}
}

// AddWriter will add a writer to the list of channels where log output will be sent.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat) {
	// Check to see if the writer is already in the array of writers
	for _, w := range l.writers {
		if isSameWriter(w, writer) {
			return
		}
	}

	// Unstructured output is wrapped in a console writer without ANSI coloring
	if format == UNSTRUCTURED {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: true}
	}

	l.writers = append(l.writers, writer)
	l.rebuildMultiLogger()
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. If the writer does not exist, this
// function is a no-op
func (l *Logger) RemoveWriter(writer io.Writer) {
	for i, w := range l.writers {
		if isSameWriter(w, writer) {
			l.writers = append(l.writers[:i], l.writers[i+1:]...)
			l.rebuildMultiLogger()
			return
		}
	}
}

// isSameWriter reports whether w is the provided writer, or an unstructured console wrapper around it.
func isSameWriter(w io.Writer, writer io.Writer) bool {
	if cw, ok := w.(zerolog.ConsoleWriter); ok {
		return cw.Out == writer
	}
	return w == writer
}

// rebuildMultiLogger recreates the multi logger after its writers changed, restoring any sub-logger context.
func (l *Logger) rebuildMultiLogger() {
	if len(l.writers) == 0 {
		l.multiLogger = zerolog.New(io.Discard).Level(zerolog.Disabled)
		return
	}
	ctx := zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp()
	for i := 0; i+1 < len(l.context); i += 2 {
		ctx = ctx.Str(l.context[i], l.context[i+1])
	}
	l.multiLogger = ctx.Logger()
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.multiLogger = l.multiLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Trace logs at trace level.
func (l *Logger) Trace(args ...any) { l.logAt(zerolog.TraceLevel, args...) }

// Debug logs at debug level.
func (l *Logger) Debug(args ...any) { l.logAt(zerolog.DebugLevel, args...) }

// Info logs at info level.
func (l *Logger) Info(args ...any) { l.logAt(zerolog.InfoLevel, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(args ...any) { l.logAt(zerolog.WarnLevel, args...) }

// Error logs at error level. Stack traces of the attached error are only emitted when debugging.
func (l *Logger) Error(args ...any) { l.logAt(zerolog.ErrorLevel, args...) }

// Panic logs at panic level, then panics with the uncolored message.
func (l *Logger) Panic(args ...any) { l.logAt(zerolog.PanicLevel, args...) }

// logAt sends args to the console and multi-channel loggers as a single event of the given level.
func (l *Logger) logAt(level zerolog.Level, args ...any) {
	consoleLog := l.consoleLogger.WithLevel(level)
	multiLog := l.multiLogger.WithLevel(level)
	withStack := level == zerolog.PanicLevel || l.level <= zerolog.DebugLevel

	consoleMsg, multiMsg, err, info := buildMsgs(args...)
	chainError(consoleLog, multiLog, err, withStack)
	chainStructuredLogInfoAndMsgs(consoleLog, multiLog, info, consoleMsg, multiMsg)
	if level == zerolog.PanicLevel {
		panic(multiMsg)
	}
}

// buildMsgs describes a function that takes in a variadic list of arguments of any type and returns two strings and,
// optionally, an error and a StructuredLogInfo object. The first string will be a colorized-string that can be used for
// console logging while the second string will be a non-colorized one that can be used for file/structured logging.
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	if len(args) == 0 {
		return "", "", nil, nil
	}

	colorCtx := colors.Reset
	consoleOutput := make([]string, 0, len(args))
	fileOutput := make([]string, 0, len(args))
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// Switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Only one structured log info can be provided for each log message
			info = t
		case error:
			// Only one error can be provided for each log message
			err = t
		default:
			consoleOutput = append(consoleOutput, colorCtx(t))
			fileOutput = append(fileOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(consoleOutput, ""), strings.Join(fileOutput, ""), err, info
}

// chainError attaches err to both events. If withStack is true, a stack trace is added to both events as well.
func chainError(consoleLog *zerolog.Event, multiLog *zerolog.Event, err error, withStack bool) {
	// Err is a no-op for a nil error
	consoleLog.Err(err)
	multiLog.Err(err)

	if withStack {
		consoleLog.Stack()
		multiLog.Stack()
	}
}

// chainStructuredLogInfoAndMsgs chains any StructuredLogInfo provided to it, adds the associated messages, and sends
// out the logs to their respective channels.
func chainStructuredLogInfoAndMsgs(consoleLog *zerolog.Event, multiLog *zerolog.Event, info StructuredLogInfo, consoleMsg string, multiMsg string) {
	if info != nil {
		consoleLog.Any("info", info)
		multiLog.Any("info", info)
	}

	consoleLog.Msg(consoleMsg)
	multiLog.Msg(multiMsg)
}

// levelColors maps levels to the color of their console label. Info is shown as an arrow instead of a label.
var levelColors = map[zerolog.Level]colors.ColorFunc{
	zerolog.TraceLevel: colors.CyanBold,
	zerolog.DebugLevel: colors.BlueBold,
	zerolog.WarnLevel:  colors.YellowBold,
	zerolog.ErrorLevel: colors.RedBold,
	zerolog.FatalLevel: colors.RedBold,
	zerolog.PanicLevel: colors.RedBold,
}

// setupDefaultFormatting will update the console logger's formatting to the tokengas standard
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	// Get rid of the timestamp for console output
	writer.FormatTimestamp = func(i interface{}) string {
		return ""
	}

	writer.FormatLevel = func(i any) string {
		levelStr, _ := i.(string)
		parsedLevel, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}
		if parsedLevel == zerolog.InfoLevel {
			return colors.GreenBold(colors.LEFT_ARROW)
		}
		if colorize, ok := levelColors[parsedLevel]; ok {
			return colorize(levelStr)
		}
		return levelStr
	}

	// Above debug level, the service keys are noise on the console
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module", RUN_ID_KEY}
	}

	return writer
}
