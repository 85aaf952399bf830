package contract

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the process-wide structured logger. It writes to stderr so that
// stdout stays reserved for reports and the MCP protocol.
var Logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "changescore",
		ReportTimestamp: false,
	})
	l.SetLevel(log.InfoLevel)
	return l
}

// ConfigureLogger sets the level of the process-wide logger.
// Unknown levels fall back to info.
func ConfigureLogger(level string) {
	Logger.SetLevel(ParseLogLevel(level))
}

// SetLogOutput redirects the process-wide logger, mainly for tests.
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// ParseLogLevel converts a string to a log level.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// LogDebug logs a debug message with optional key-value pairs.
func LogDebug(msg string, keyvals ...any) {
	Logger.Debug(msg, keyvals...)
}

// LogInfo logs an info message with optional key-value pairs.
func LogInfo(msg string, keyvals ...any) {
	Logger.Info(msg, keyvals...)
}

// LogWarn logs a warning together with the error that caused it.
func LogWarn(msg string, err error, keyvals ...any) {
	Logger.Warn(msg, append(keyvals, "err", err)...)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.Error(msg, "err", err)
	os.Exit(1)
}
