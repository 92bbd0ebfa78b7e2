package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// execute runs the root command with flags reset to their defaults, since
// cobra keeps parsed values between executions.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRender_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte("<h1>{{ udf.upper(title) }}</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.yaml"), []byte("title: release notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.html")

	if _, err := execute(t, "--root", dir, "-t", "page", "-d", filepath.Join(dir, "data.yaml"), "-o", out); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "<h1>RELEASE NOTES</h1>" {
		t.Fatalf("output: %q", got)
	}
}

func TestRender_StatusBecomesExitCode(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "-s", "{{ x|nosuchfilter }}", "-o", filepath.Join(dir, "out.html"))

	var se statusError
	if !errors.As(err, &se) {
		t.Fatalf("want statusError, got %v", err)
	}
	if se.status != 2 {
		t.Fatalf("status: want 2 (template error), got %d", se.status)
	}
}

func TestRender_RejectsBadFlags(t *testing.T) {
	_, err := execute(t, "-s", "x", "--min-log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "loud") {
		t.Fatalf("want level error, got %v", err)
	}

	_, err = execute(t, "-s", "x", "-d", "data.ini")
	var se statusError
	if err == nil || errors.As(err, &se) {
		t.Fatalf("unknown data format should fail before rendering, got %v", err)
	}
}

func TestFunctions_ListsStockNames(t *testing.T) {
	out, err := execute(t, "functions")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, name := range []string{"sanitize", "upper", "truncate"} {
		if !strings.Contains(out, name+"\n") {
			t.Fatalf("missing %s in %q", name, out)
		}
	}
}

func TestRender_FailedRenderLeavesEmptyOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.html")
	_, err := execute(t, "-s", `partial{{ udf.truncate("abc", -1) }}`, "-o", out)

	var se statusError
	if !errors.As(err, &se) || se.status != 3 {
		t.Fatalf("want function error status 3, got %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("failed render must not commit output, got %q", got)
	}
}
