package writer

import (
	"bufio"
	"os"

	"github.com/goliatone/go-teng/pkg/failure"
)

// File writes to a file opened at construction. Output is buffered; Flush
// drains the buffer and syncs the file to storage.
type File struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	dirty  bool
	closed bool
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, failure.Wrap(failure.KindIoError, "writer.Create", err, "")
	}
	return &File{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file path given to Create.
func (fw *File) Path() string {
	return fw.path
}

func (fw *File) Write(s string) (int, error) {
	if err := fw.checkOpen("writer.File.Write"); err != nil {
		return 0, err
	}
	fw.dirty = true
	n, err := fw.w.WriteString(s)
	if err != nil {
		return n, failure.Wrap(failure.KindIoError, "writer.File.Write", err, "")
	}
	return n, nil
}

func (fw *File) WriteBytes(p []byte) (int, error) {
	if err := fw.checkOpen("writer.File.WriteBytes"); err != nil {
		return 0, err
	}
	fw.dirty = true
	n, err := fw.w.Write(p)
	if err != nil {
		return n, failure.Wrap(failure.KindIoError, "writer.File.WriteBytes", err, "")
	}
	return n, nil
}

func (fw *File) WriteSlice(s string, start, end int) (int, error) {
	if err := CheckRange(s, start, end); err != nil {
		return 0, err
	}
	return fw.Write(s[start:end])
}

// Flush drains buffered output and syncs the file. It is a no-op when
// nothing was written since the last successful flush.
func (fw *File) Flush() error {
	if !fw.dirty {
		return nil
	}
	if err := fw.checkOpen("writer.File.Flush"); err != nil {
		return err
	}
	if err := fw.w.Flush(); err != nil {
		return failure.Wrap(failure.KindIoError, "writer.File.Flush", err, "")
	}
	if err := fw.f.Sync(); err != nil {
		return failure.Wrap(failure.KindIoError, "writer.File.Flush", err, "")
	}
	fw.dirty = false
	return nil
}

// Close flushes pending output and closes the file. Closing twice is a no-op.
func (fw *File) Close() error {
	if fw.closed {
		return nil
	}
	flushErr := fw.Flush()
	fw.closed = true
	if err := fw.f.Close(); err != nil && flushErr == nil {
		return failure.Wrap(failure.KindIoError, "writer.File.Close", err, "")
	}
	return flushErr
}

// Discard drops buffered output, truncates the file and closes it, so a
// failed render leaves an empty file rather than a partial page. Discarding
// twice, or after Close, is a no-op.
func (fw *File) Discard() error {
	if fw.closed {
		return nil
	}
	fw.closed = true
	fw.w.Reset(fw.f)
	truncErr := fw.f.Truncate(0)
	if err := fw.f.Close(); err != nil && truncErr == nil {
		truncErr = err
	}
	if truncErr != nil {
		return failure.Wrap(failure.KindIoError, "writer.File.Discard", truncErr, "")
	}
	return nil
}

func (fw *File) checkOpen(op string) error {
	if fw.closed {
		return failure.New(failure.KindIoError, op, "file "+fw.path+" is closed")
	}
	return nil
}
