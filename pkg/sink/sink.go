// Package sink implements the dual-sink write path: every accepted sample
// goes to a volatile diagnostic stream and to a durable session file, with
// independent failure handling per sink.
package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/itohio/gotsl/pkg/sample"
	"github.com/itohio/gotsl/pkg/session"
)

// Logger writes samples to both sinks. The durable file is opened in
// append mode, written, and closed again for every single sample: an
// abrupt power loss loses at most the in-flight line and never truncates
// previously committed ones. Do not batch these writes.
type Logger struct {
	diag     io.Writer
	dir      string
	filename string
	healthy  bool
}

// New creates a Logger for the session file dir/filename mirroring to diag.
// A nil diag drops diagnostic output.
func New(diag io.Writer, dir, filename string) *Logger {
	if diag == nil {
		diag = io.Discard
	}
	return &Logger{
		diag:     diag,
		dir:      dir,
		filename: filename,
	}
}

// FormatLine renders a sample as a CSV line: elapsed milliseconds and the
// reading with 4 decimal places. The same line goes to both sinks.
func FormatLine(s sample.Sample) string {
	return fmt.Sprintf("%d,%.4f", s.Elapsed.Milliseconds(), s.Force)
}

// Init writes the session-start marker to the durable sink and verifies the
// file can be reopened for reading. The result is the one-shot sink health:
// it is captured here and never re-evaluated, answering "was the card
// usable at boot", not "is it usable now".
func (l *Logger) Init(index int) bool {
	l.healthy = false

	if err := l.appendLine(session.StartMarker(index)); err != nil {
		fmt.Fprintln(l.diag, "SD initialization failed!")
		return false
	}

	// Confirm openability for the startup banner
	f, err := os.Open(l.Path())
	if err != nil {
		fmt.Fprintln(l.diag, "SD initialization failed!")
		return false
	}
	f.Close()

	l.healthy = true
	return true
}

// Healthy returns the sink health captured at Init.
func (l *Logger) Healthy() bool {
	return l.healthy
}

// Filename returns the session file name.
func (l *Logger) Filename() string {
	return l.filename
}

// Path returns the full path of the session file.
func (l *Logger) Path() string {
	return filepath.Join(l.dir, l.filename)
}

// Log writes one sample to both sinks. The diagnostic write is
// fire-and-forget. A durable write failure drops the sample from the
// durable sink only: no retry, no health re-check, the run continues.
func (l *Logger) Log(s sample.Sample) {
	line := FormatLine(s)

	fmt.Fprintln(l.diag, line)

	// Failure drops this sample only; previously committed lines are safe
	// because the file is never held open between samples.
	_ = l.appendLine(line)
}

// appendLine opens the session file in append mode, writes line followed by
// a newline, and closes the file.
func (l *Logger) appendLine(line string) error {
	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}

	_, werr := f.WriteString(line + "\n")
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("failed to write session file: %w", werr)
	}
	return cerr
}
