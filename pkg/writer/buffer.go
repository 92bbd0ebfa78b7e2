package writer

import (
	"bytes"
)

// Buffer collects output in memory.
type Buffer struct {
	buf bytes.Buffer
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Write(s string) (int, error) {
	return b.buf.WriteString(s)
}

func (b *Buffer) WriteBytes(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *Buffer) WriteSlice(s string, start, end int) (int, error) {
	if err := CheckRange(s, start, end); err != nil {
		return 0, err
	}
	return b.buf.WriteString(s[start:end])
}

// Flush is a no-op.
func (b *Buffer) Flush() error {
	return nil
}

// Snapshot returns the bytes written so far.
func (b *Buffer) Snapshot() string {
	return b.buf.String()
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return b.buf.Len()
}

// Reset discards the buffered output.
func (b *Buffer) Reset() {
	b.buf.Reset()
}
