/*
Package xlog wraps github.com/lunny/log with the leveled calls this module
needs to report spec.md §7's per-spectrum recoverable conditions (logged at
INFO, spectrum skipped, loop continues) without aborting the run, while
still supporting a Fatal path for the configuration/database/I-O error
classes that must abort. Matches the teacher's own style of passing a log
sink explicitly (annotate.Task.Run takes a *os.File) rather than reaching
for a package-level logger singleton.
*/
package xlog

import (
	"fmt"
	"io"
	"os"

	llog "github.com/lunny/log"
)

// Logger is a thin leveled wrapper around *lunny/log.Logger, constructed
// once per run and passed down explicitly to every package that needs it.
type Logger struct {
	l *llog.Logger
}

// New builds a Logger writing to stderr with lunny/log's standard
// date/time/shortfile prefix.
func New() *Logger {
	return NewWriter(os.Stderr)
}

// NewWriter builds a Logger writing to an arbitrary sink, used by tests.
func NewWriter(w io.Writer) *Logger {
	return &Logger{l: llog.New(w, "", llog.Ldate|llog.Ltime|llog.Lshortfile)}
}

// Info logs a per-spectrum recoverable condition (spec.md §7.3) or general
// progress message.
func (lg *Logger) Info(format string, args ...any) {
	lg.l.Info(fmt.Sprintf(format, args...))
}

// Warn logs a calibration failure or other degraded-but-continuing
// condition (spec.md §7.4).
func (lg *Logger) Warn(format string, args ...any) {
	lg.l.Warn(fmt.Sprintf(format, args...))
}

// Error logs a non-fatal error worth the operator's attention.
func (lg *Logger) Error(format string, args ...any) {
	lg.l.Error(fmt.Sprintf(format, args...))
}

// Fatal logs a fatal configuration, database-construction, or I/O error
// (spec.md §7.1, §7.2, §7.5) and terminates the process with a non-zero
// exit code.
func (lg *Logger) Fatal(format string, args ...any) {
	lg.l.Fatal(fmt.Sprintf(format, args...))
}
