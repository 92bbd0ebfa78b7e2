package writer

import (
	"io"

	"github.com/goliatone/go-teng/pkg/failure"
)

// FromIO adapts an io.Writer host sink. Flush forwards to the sink's
// Flush() error method when it has one (bufio.Writer, gzip.Writer, ...), or
// else to Sync() error (*os.File). Sink failures are reported as
// failure.ErrWriteError.
func FromIO(w io.Writer) Writer {
	return &ioWriter{w: w}
}

type ioWriter struct {
	w io.Writer
}

func (iw *ioWriter) Write(s string) (int, error) {
	n, err := io.WriteString(iw.w, s)
	if err != nil {
		return n, failure.Wrap(failure.KindWriteError, "writer.Write", err, "")
	}
	return n, nil
}

func (iw *ioWriter) WriteBytes(p []byte) (int, error) {
	n, err := iw.w.Write(p)
	if err != nil {
		return n, failure.Wrap(failure.KindWriteError, "writer.WriteBytes", err, "")
	}
	return n, nil
}

func (iw *ioWriter) WriteSlice(s string, start, end int) (int, error) {
	if err := CheckRange(s, start, end); err != nil {
		return 0, err
	}
	return iw.Write(s[start:end])
}

func (iw *ioWriter) Flush() error {
	var err error
	switch sink := iw.w.(type) {
	case interface{ Flush() error }:
		err = sink.Flush()
	case interface{ Sync() error }:
		err = sink.Sync()
	}
	if err != nil {
		return failure.Wrap(failure.KindWriteError, "writer.Flush", err, "")
	}
	return nil
}
