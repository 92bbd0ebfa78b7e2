// Package writer defines the output sink the renderer streams into, together
// with the in-memory and file-backed implementations and adapters for
// host-supplied sinks.
package writer

import (
	"io"
	"strconv"

	"github.com/goliatone/go-teng/pkg/failure"
)

// Writer is the capability a renderer needs from an output sink. Every write
// returns the number of bytes accepted. WriteSlice writes s[start:end] without
// the caller copying it first. Flush finalises buffering and must be safe to
// call repeatedly.
type Writer interface {
	Write(s string) (int, error)
	WriteBytes(p []byte) (int, error)
	WriteSlice(s string, start, end int) (int, error)
	Flush() error
}

// CheckRange validates a half-open [start, end) range into s.
func CheckRange(s string, start, end int) error {
	if start < 0 || start > end || end > len(s) {
		return failure.New(failure.KindRangeError, "writer.WriteSlice",
			"range ["+strconv.Itoa(start)+", "+strconv.Itoa(end)+") outside source of length "+strconv.Itoa(len(s)))
	}
	return nil
}

// Guard wraps a host-supplied Writer. Out of range slices fail with
// failure.ErrRangeError before reaching the sink, and sink errors that are not
// already *failure.Error surface as failure.ErrWriteError. Built-in writers
// are returned as is.
func Guard(w Writer) Writer {
	switch w.(type) {
	case nil:
		return nil
	case *Buffer, *File, *ioWriter, *guarded:
		return w
	}
	return &guarded{w: w}
}

type guarded struct {
	w Writer
}

func (g *guarded) Write(s string) (int, error) {
	n, err := g.w.Write(s)
	return n, sinkError("writer.Write", err)
}

func (g *guarded) WriteBytes(p []byte) (int, error) {
	n, err := g.w.WriteBytes(p)
	return n, sinkError("writer.WriteBytes", err)
}

func (g *guarded) WriteSlice(s string, start, end int) (int, error) {
	if err := CheckRange(s, start, end); err != nil {
		return 0, err
	}
	n, err := g.w.WriteSlice(s, start, end)
	return n, sinkError("writer.WriteSlice", err)
}

func (g *guarded) Flush() error {
	return sinkError("writer.Flush", g.w.Flush())
}

func sinkError(op string, err error) error {
	if err == nil {
		return nil
	}
	if failure.KindOf(err) != failure.KindUnknown {
		return err
	}
	return failure.Wrap(failure.KindWriteError, op, err, "")
}

// Stream exposes w as an io.Writer.
func Stream(w Writer) io.Writer {
	return streamWriter{w: w}
}

type streamWriter struct {
	w Writer
}

func (s streamWriter) Write(p []byte) (int, error) {
	return s.w.WriteBytes(p)
}

func (s streamWriter) WriteString(str string) (int, error) {
	return s.w.Write(str)
}
