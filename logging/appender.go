package logging

import (
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Appender is an output sink for log lines. This mirrors the subset of
// zapcore.WriteSyncer that the engine's logging actually needs.
type Appender interface {
	io.Writer
	Sync() error
}

type writerAppender struct {
	io.Writer
}

func (writerAppender) Sync() error { return nil }

// NewStdoutAppender creates a new appender that prints to stdout.
func NewStdoutAppender() Appender {
	return writerAppender{os.Stdout}
}

// NewWriterAppender creates a new appender that prints to the given writer.
func NewWriterAppender(w io.Writer) Appender {
	return writerAppender{w}
}

// NewFileAppender creates an Appender that writes to filename with log
// rotation enabled, so a long-running batch computation doesn't grow a
// single log file without bound. The returned io.Closer should be closed
// once the computation finishes.
func NewFileAppender(filename string) (Appender, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename: filename,
		MaxSize:  100, // megabytes
		MaxAge:   7,   // days
	}
	return writerAppender{rotator}, rotator
}
