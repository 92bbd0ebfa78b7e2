package builtin_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/failure"
	"github.com/goliatone/go-teng/pkg/udf"
	"github.com/goliatone/go-teng/pkg/udf/builtin"
)

func TestRegister_InstallsEveryBuiltin(t *testing.T) {
	reg := udf.NewRegistry()
	installed, err := builtin.Register(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if diff := cmp.Diff(builtin.Names(), installed); diff != "" {
		t.Fatalf("installed mismatch (-want +got):\n%s", diff)
	}

	again, err := builtin.Register(reg)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second register should install nothing, got %v", again)
	}
}

func TestRegister_KeepsExistingNames(t *testing.T) {
	reg := udf.NewRegistry()
	reg.Register("upper", func([]data.Value) (data.Value, error) { return data.String("mine"), nil })

	if _, err := builtin.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := reg.Invoke("upper", []data.Value{data.String("x")})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !got.Equal(data.String("mine")) {
		t.Fatalf("existing registration was replaced")
	}
}

func TestBuiltins_ThroughRegistry(t *testing.T) {
	reg := udf.NewRegistry()
	if _, err := builtin.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name string
		fn   string
		args []data.Value
		want data.Value
	}{
		{"sanitize drops script", "sanitize", []data.Value{data.String(`<b>hi</b><script>alert(1)</script>`)}, data.String("<b>hi</b>")},
		{"plaintext", "plaintext", []data.Value{data.String("<p>Hello <em>world</em></p>")}, data.String("Hello world")},
		{"upper", "upper", []data.Value{data.String("ada")}, data.String("ADA")},
		{"upper turkish", "upper", []data.Value{data.String("istanbul"), data.String("tr")}, data.String("İSTANBUL")},
		{"lower", "lower", []data.Value{data.String("LOVELACE")}, data.String("lovelace")},
		{"title", "title", []data.Value{data.String("hello world")}, data.String("Hello World")},
		{"nfc", "nfc", []data.Value{data.String("e\u0301")}, data.String("\u00e9")},
		{"runelen", "runelen", []data.Value{data.String("héllo")}, data.Integer(5)},
		{"truncate short", "truncate", []data.Value{data.String("abc"), data.Integer(5)}, data.String("abc")},
		{"truncate suffix", "truncate", []data.Value{data.String("héllo world"), data.Integer(5), data.String("…")}, data.String("héll…")},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := reg.Invoke(tc.fn, tc.args)
			if err != nil {
				t.Fatalf("invoke: %v", err)
			}
			if !got.Equal(tc.want) {
				gs, _ := got.AsString()
				ws, _ := tc.want.AsString()
				t.Fatalf("want %q (%s), got %q (%s)", ws, tc.want.Kind(), gs, got.Kind())
			}
		})
	}
}

func TestBuiltins_Failures(t *testing.T) {
	reg := udf.NewRegistry()
	if _, err := builtin.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		fn   string
		args []data.Value
	}{
		{"upper", []data.Value{data.String("x"), data.String("not a tag!")}},
		{"truncate", []data.Value{data.String("x"), data.Integer(-1)}},
		{"runelen", []data.Value{data.Integer(3)}},
	}
	for _, tc := range cases {
		if _, err := reg.Invoke(tc.fn, tc.args); !errors.Is(err, failure.ErrCallableFailure) {
			t.Fatalf("%s: want CallableFailure, got %v", tc.fn, err)
		}
	}
}
