package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// PrintfAdapter exposes an slog.Logger through the printf-style interface
// embedded stores expect (badger's Logger: Errorf, Warningf, Infof, Debugf).
type PrintfAdapter struct {
	logger *slog.Logger
}

// NewPrintfAdapter wraps logger. If logger is nil, slog.Default() is used.
func NewPrintfAdapter(logger *slog.Logger) *PrintfAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrintfAdapter{logger: logger}
}

// Errorf logs at error level.
func (a *PrintfAdapter) Errorf(format string, args ...interface{}) {
	a.logger.Error(line(format, args...))
}

// Warningf logs at warn level.
func (a *PrintfAdapter) Warningf(format string, args ...interface{}) {
	a.logger.Warn(line(format, args...))
}

// Infof logs at info level.
func (a *PrintfAdapter) Infof(format string, args ...interface{}) {
	a.logger.Info(line(format, args...))
}

// Debugf logs at debug level.
func (a *PrintfAdapter) Debugf(format string, args ...interface{}) {
	a.logger.Debug(line(format, args...))
}

// Logger returns the underlying slog.Logger.
func (a *PrintfAdapter) Logger() *slog.Logger {
	return a.logger
}

// badger terminates most of its messages with a newline
func line(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
