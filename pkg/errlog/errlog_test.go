package errlog_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-teng/pkg/errlog"
)

func TestLog_PushKeepsOrder(t *testing.T) {
	log := errlog.New()
	first := errlog.NewEntry(errlog.LevelWarning, errlog.Position{Filename: "page.html", Line: 3, Column: 7}, "unknown variable")
	second := errlog.NewEntry(errlog.LevelError, errlog.Position{Filename: "page.html", Line: 9, Column: 1}, "bad call")
	log.Push(first)
	log.Push(second)
	log.Add(errlog.LevelDebug, errlog.Position{}, "done")

	want := []errlog.Entry{first, second, {Level: errlog.LevelDebug, Message: "done"}}
	if diff := cmp.Diff(want, log.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if log.Len() != 3 {
		t.Fatalf("len: want 3, got %d", log.Len())
	}
}

func TestLog_EntriesIsACopy(t *testing.T) {
	log := errlog.New()
	log.Add(errlog.LevelError, errlog.Position{Filename: "a", Line: 1, Column: 1}, "original")

	entries := log.Entries()
	entries[0].Message = "tampered"

	if got := log.Entries()[0].Message; got != "original" {
		t.Fatalf("log storage was mutated through Entries: %q", got)
	}
}

func TestLog_Dump(t *testing.T) {
	var log errlog.Log
	log.Add(errlog.LevelWarning, errlog.Position{Filename: "page.html", Line: 3, Column: 7}, "unknown variable")
	log.Add(errlog.LevelFatal, errlog.Position{Filename: "<string>", Line: 1, Column: 2}, "cannot parse")

	want := "warning:page.html:3:7: unknown variable\nfatal:<string>:1:2: cannot parse\n"
	if got := log.Dump(); got != want {
		t.Fatalf("dump mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestLog_Max(t *testing.T) {
	log := errlog.New()
	if _, ok := log.Max(); ok {
		t.Fatalf("empty log has no max")
	}
	log.Add(errlog.LevelDiag, errlog.Position{}, "a")
	log.Add(errlog.LevelError, errlog.Position{}, "b")
	log.Add(errlog.LevelWarning, errlog.Position{}, "c")

	if got, ok := log.Max(); !ok || got != errlog.LevelError {
		t.Fatalf("max: want error, got %s (ok=%v)", got, ok)
	}
}

func TestLevel_OrderAndNames(t *testing.T) {
	levels := []errlog.Level{errlog.LevelDebug, errlog.LevelDiag, errlog.LevelWarning, errlog.LevelError, errlog.LevelFatal}
	for i := 1; i < len(levels); i++ {
		if levels[i-1] >= levels[i] {
			t.Fatalf("levels must increase in severity: %s >= %s", levels[i-1], levels[i])
		}
	}
	for _, level := range levels {
		parsed, ok := errlog.ParseLevel(level.String())
		if !ok || parsed != level {
			t.Fatalf("parse %q: got %s (ok=%v)", level.String(), parsed, ok)
		}
	}
	if _, ok := errlog.ParseLevel("loud"); ok {
		t.Fatalf("unknown level should not parse")
	}
}

func TestEntry_LogLineEscapesLineBreaks(t *testing.T) {
	e := errlog.NewEntry(errlog.LevelError, errlog.Position{Filename: "page.html", Line: 2, Column: 4}, "line one\nline two\r\n")

	want := `error:page.html:2:4: line one\nline two\r\n`
	if got := e.LogLine(); got != want {
		t.Fatalf("log line mismatch\nwant: %q\n got: %q", want, got)
	}
	if e.Message != "line one\nline two\r\n" {
		t.Fatalf("message must stay verbatim: %q", e.Message)
	}

	log := errlog.New()
	log.Push(e)
	log.Add(errlog.LevelWarning, errlog.Position{}, "next")
	if lines := strings.Split(strings.TrimSuffix(log.Dump(), "\n"), "\n"); len(lines) != 2 {
		t.Fatalf("dump should keep one line per entry, got %q", lines)
	}
}
