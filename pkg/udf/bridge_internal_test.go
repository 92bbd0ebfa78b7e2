package udf

import (
	"errors"
	"testing"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/failure"
)

func TestHostMarshaller_RegexUnsupported(t *testing.T) {
	var m hostMarshaller
	if err := m.VisitRegex("^a+$"); !errors.Is(err, failure.ErrUnsupportedValue) {
		t.Fatalf("want UnsupportedValue, got %v", err)
	}
}

func TestCall_PassesBridgeFailuresThrough(t *testing.T) {
	unsupported := func([]data.Value) (data.Value, error) {
		var m hostMarshaller
		return data.Undefined(), m.VisitRegex("x")
	}
	_, err := call("re", unsupported, nil)
	if failure.KindOf(err) != failure.KindUnsupportedValue {
		t.Fatalf("want UnsupportedValue to pass through, got %v", err)
	}
}
