package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-teng/pkg/failure"
)

func TestError_Format(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *failure.Error
		want string
	}{
		{"full", failure.New(failure.KindTypeMismatch, "data.AsString", "want string, have integer"), "data.AsString: type mismatch: want string, have integer"},
		{"no op", failure.New(failure.KindReleased, "", ""), "released"},
		{"wrapped cause", failure.Wrap(failure.KindIoError, "writer.Flush", errors.New("disk full"), ""), "writer.Flush: io error: disk full"},
		{"unknown kind", failure.New(failure.Kind(200), "x", "y"), "x: unknown: y"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error(): want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestError_MatchesSentinels(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("render: %w", failure.Wrap(failure.KindCallableFailure, "udf.x", cause, "boom"))

	if !errors.Is(err, failure.ErrCallableFailure) {
		t.Fatalf("want callable failure sentinel to match")
	}
	if errors.Is(err, failure.ErrTypeMismatch) {
		t.Fatalf("different kinds must not match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause should stay reachable")
	}
	if got := failure.KindOf(err); got != failure.KindCallableFailure {
		t.Fatalf("KindOf: got %s", got)
	}
	if got := failure.MessageOf(err); got != "boom" {
		t.Fatalf("MessageOf: got %q", got)
	}
}

func TestHelpers_ForeignErrors(t *testing.T) {
	plain := errors.New("plain")
	if got := failure.KindOf(plain); got != failure.KindUnknown {
		t.Fatalf("KindOf: got %s", got)
	}
	if got := failure.MessageOf(plain); got != "plain" {
		t.Fatalf("MessageOf: got %q", got)
	}
	if got := failure.MessageOf(nil); got != "" {
		t.Fatalf("MessageOf(nil): got %q", got)
	}
}
