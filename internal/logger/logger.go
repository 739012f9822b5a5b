// Package logger is UrbanBot's process-wide log. Debug and Info lines
// appear only with --verbose; warnings and errors are always written
// so degraded answers leave a trace.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level orders message severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects the log, os.Stderr by default.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// enabled reports whether l is written under the current verbosity.
func enabled(l Level) bool {
	return verbose || l >= LevelWarn
}

func Debug(format string, args ...any) { Entry{}.log(LevelDebug, format, args) }
func Info(format string, args ...any)  { Entry{}.log(LevelInfo, format, args) }
func Warn(format string, args ...any)  { Entry{}.log(LevelWarn, format, args) }
func Error(format string, args ...any) { Entry{}.log(LevelError, format, args) }

// Section writes a "=== name ===" divider in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Entry is a logger bound to a request id and key=value fields.
// The zero Entry logs untagged lines.
type Entry struct {
	request string
	fields  []string
}

// WithRequest tags every line with [id].
func WithRequest(id string) Entry {
	return Entry{request: id}
}

// With returns a copy that appends key=value to every line.
func (e Entry) With(key string, value any) Entry {
	fields := make([]string, len(e.fields), len(e.fields)+1)
	copy(fields, e.fields)
	e.fields = append(fields, fmt.Sprintf("%s=%v", key, value))
	return e
}

func (e Entry) Debug(format string, args ...any) { e.log(LevelDebug, format, args) }
func (e Entry) Info(format string, args ...any)  { e.log(LevelInfo, format, args) }
func (e Entry) Warn(format string, args ...any)  { e.log(LevelWarn, format, args) }
func (e Entry) Error(format string, args ...any) { e.log(LevelError, format, args) }

func (e Entry) log(l Level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled(l) {
		return
	}

	var b strings.Builder
	b.WriteString("[" + l.String() + "] ")
	if e.request != "" {
		b.WriteString("[" + e.request + "] ")
	}
	fmt.Fprintf(&b, format, args...)
	for _, f := range e.fields {
		b.WriteByte(' ')
		b.WriteString(f)
	}
	b.WriteByte('\n')
	io.WriteString(output, b.String())
}
