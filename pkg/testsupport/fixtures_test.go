package testsupport_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-teng/pkg/datasource"
	"github.com/goliatone/go-teng/pkg/errlog"
	"github.com/goliatone/go-teng/pkg/testsupport"
)

func TestRecorder_FailsAfterLimit(t *testing.T) {
	sentinel := errors.New("disk full")
	rec := testsupport.NewFailingRecorder(2, sentinel)

	if _, err := rec.Write("a"); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := rec.WriteSlice("xbcx", 1, 3); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if _, err := rec.WriteBytes([]byte("d")); !errors.Is(err, sentinel) {
		t.Fatalf("third write: want %v, got %v", sentinel, err)
	}
	if _, err := rec.WriteSlice("abc", 2, 1); err == nil {
		t.Fatalf("inverted range should fail")
	}
	if rec.String() != "abc" || rec.Writes() != 2 {
		t.Fatalf("recorded %q in %d writes", rec.String(), rec.Writes())
	}
}

func TestRecorder_DefaultError(t *testing.T) {
	rec := testsupport.NewFailingRecorder(0, nil)
	if _, err := rec.Write("x"); err == nil {
		t.Fatalf("expected the default error")
	}
	if err := rec.Flush(); err != nil || rec.Flushes() != 1 {
		t.Fatalf("flush: %v after %d", err, rec.Flushes())
	}
}

func TestLogLines(t *testing.T) {
	if got := testsupport.LogLines(errlog.New()); got != nil {
		t.Fatalf("empty log: got %v", got)
	}

	log := errlog.New()
	log.Add(errlog.LevelWarning, errlog.Position{Filename: "a.html", Line: 1, Column: 2}, "first")
	log.Add(errlog.LevelError, errlog.Position{Filename: "a.html", Line: 3, Column: 4}, "second")

	want := []string{
		"warning:a.html:1:2: first",
		"error:a.html:3:4: second",
	}
	if diff := cmp.Diff(want, testsupport.LogLines(log)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestMustDecodeTree(t *testing.T) {
	root := testsupport.MustDecodeTree(t, datasource.FormatJSON, `{"a": 1}`)
	if root.Released() {
		t.Fatalf("tree released before cleanup")
	}
	if _, err := testsupport.LoadTree(""); err == nil {
		t.Fatalf("empty path should fail")
	}
}
