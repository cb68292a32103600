// Package wpslog is a thin, structured-logging wrapper used throughout the
// stack in place of ad hoc fmt.Println calls. It keeps the small set of
// severity categories the rest of the codebase cares about — error, info,
// receive, transmit, decoded, and debug — as named helpers over a charmbracelet/log
// logger, rather than the color-coded text stream an older tty-oriented
// tool would print.
package wpslog

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Category mirrors the small set of message classes the stack logs, kept
// separate from log.Level so callers can tag a message's domain (receive
// vs transmit vs decode) independent of its severity.
type Category uint8

const (
	CategoryInfo Category = iota
	CategoryReceive
	CategoryTransmit
	CategoryDecoded
	CategoryDebug
	CategoryError
)

func (c Category) String() string {
	switch c {
	case CategoryReceive:
		return "rx"
	case CategoryTransmit:
		return "tx"
	case CategoryDecoded:
		return "decoded"
	case CategoryDebug:
		return "debug"
	case CategoryError:
		return "error"
	default:
		return "info"
	}
}

// Logger wraps a charmbracelet/log.Logger with the category field and a
// strftime-formatted timestamp layout the application config supplies.
type Logger struct {
	*log.Logger
	timeFormat *strftime.Strftime
}

// Options configures a new Logger.
type Options struct {
	Writer          io.Writer
	Level           log.Level
	ReportTimestamp bool
	TimeFormat      string // strftime pattern; "" uses "%Y-%m-%d %H:%M:%S"
}

// New builds a Logger over opts.Writer (os.Stderr if nil).
func New(opts Options) (*Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	pattern := opts.TimeFormat
	if pattern == "" {
		pattern = "%Y-%m-%d %H:%M:%S"
	}
	tf, err := strftime.New(pattern)
	if err != nil {
		return nil, err
	}

	l := log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		ReportTimestamp: opts.ReportTimestamp,
	})
	return &Logger{Logger: l, timeFormat: tf}, nil
}

// Event logs one message under category at the given severity, attaching a
// strftime-formatted timestamp field alongside whatever key/value pairs the
// caller supplies.
func (l *Logger) Event(level log.Level, cat Category, msg string, kvs ...interface{}) {
	ts := l.timeFormat.FormatString(time.Now())
	args := append([]interface{}{"category", cat.String(), "ts", ts}, kvs...)
	l.Logger.Log(level, msg, args...)
}

// Info/Receive/Transmit/Decoded/Debug/Error are the category-specific
// shorthands used throughout the stack in place of a bare fmt.Printf.
func (l *Logger) Info(msg string, kvs ...interface{}) {
	l.Event(log.InfoLevel, CategoryInfo, msg, kvs...)
}

func (l *Logger) Receive(msg string, kvs ...interface{}) {
	l.Event(log.InfoLevel, CategoryReceive, msg, kvs...)
}

func (l *Logger) Transmit(msg string, kvs ...interface{}) {
	l.Event(log.InfoLevel, CategoryTransmit, msg, kvs...)
}

func (l *Logger) Decoded(msg string, kvs ...interface{}) {
	l.Event(log.InfoLevel, CategoryDecoded, msg, kvs...)
}

func (l *Logger) Debug(msg string, kvs ...interface{}) {
	l.Event(log.DebugLevel, CategoryDebug, msg, kvs...)
}

func (l *Logger) Error(msg string, kvs ...interface{}) {
	l.Event(log.ErrorLevel, CategoryError, msg, kvs...)
}
