package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/datasource"
	"github.com/goliatone/go-teng/pkg/errlog"
	"github.com/goliatone/go-teng/pkg/writer"
)

// MustLoadTree reads a data fixture (json, yaml, toml or msgpack by
// extension) into a tree that is released when the test ends.
func MustLoadTree(t *testing.T, path string) *data.Root {
	t.Helper()

	root, err := LoadTree(path)
	if err != nil {
		t.Fatalf("load tree: %v", err)
	}
	t.Cleanup(root.Release)
	return root
}

// LoadTree returns a tree without requiring testing.T, for setup code that
// runs outside a test function.
func LoadTree(path string) (*data.Root, error) {
	if path == "" {
		return nil, errors.New("testsupport: tree path is required")
	}
	root, err := datasource.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: %w", err)
	}
	return root, nil
}

// MustDecodeTree builds a tree from an inline document.
func MustDecodeTree(t *testing.T, format datasource.Format, raw string) *data.Root {
	t.Helper()

	root, err := datasource.Decode(format, []byte(raw))
	if err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	t.Cleanup(root.Release)
	return root
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return raw
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, raw []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// LogLines flattens an error log into its line format.
func LogLines(log *errlog.Log) []string {
	if log == nil || log.Len() == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(log.Dump(), "\n"), "\n")
}

// Recorder is a host Writer that records everything written to it. Setting
// FailAfter makes every write after that many successful ones fail with Err.
type Recorder struct {
	FailAfter int
	Err       error

	b       strings.Builder
	writes  int
	flushes int
}

var _ writer.Writer = (*Recorder)(nil)

// NewFailingRecorder returns a Recorder whose writes fail after n successes.
func NewFailingRecorder(n int, err error) *Recorder {
	if err == nil {
		err = errors.New("sink closed")
	}
	return &Recorder{FailAfter: n, Err: err}
}

func (r *Recorder) Write(s string) (int, error) {
	if err := r.admit(); err != nil {
		return 0, err
	}
	return r.b.WriteString(s)
}

func (r *Recorder) WriteBytes(p []byte) (int, error) {
	if err := r.admit(); err != nil {
		return 0, err
	}
	return r.b.Write(p)
}

func (r *Recorder) WriteSlice(s string, start, end int) (int, error) {
	if err := writer.CheckRange(s, start, end); err != nil {
		return 0, err
	}
	return r.Write(s[start:end])
}

func (r *Recorder) Flush() error {
	r.flushes++
	return nil
}

// String returns the recorded output.
func (r *Recorder) String() string { return r.b.String() }

// Writes counts successful writes.
func (r *Recorder) Writes() int { return r.writes }

// Flushes counts Flush calls.
func (r *Recorder) Flushes() int { return r.flushes }

func (r *Recorder) admit() error {
	if r.Err != nil && r.writes >= r.FailAfter {
		return r.Err
	}
	r.writes++
	return nil
}
