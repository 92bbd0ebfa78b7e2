package udf

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/failure"
)

// HostFunc is a function in host-native form. See the package documentation
// for the value mapping.
type HostFunc func(args []any) (any, error)

// Bridge adapts fn to a Function. Arguments are marshalled in order; regex
// arguments fail with failure.ErrUnsupportedValue before fn runs. Results
// outside {nil, string, integer, float} fail with failure.ErrInvalidReturnType.
// Errors returned by fn fail with failure.ErrCallableFailure.
func Bridge(fn HostFunc) Function {
	return func(args []data.Value) (data.Value, error) {
		hostArgs := make([]any, len(args))
		for i, arg := range args {
			converted, err := ToHost(arg)
			if err != nil {
				return data.Undefined(), fmt.Errorf("argument %d: %w", i, err)
			}
			hostArgs[i] = converted
		}

		out, err := fn(hostArgs)
		if err != nil {
			return data.Undefined(), failure.Wrap(failure.KindCallableFailure, "udf.Bridge", err, err.Error())
		}
		return FromHost(out)
	}
}

// ToHost converts v to its host-native form.
func ToHost(v data.Value) (any, error) {
	var m hostMarshaller
	if err := v.Visit(&m); err != nil {
		return nil, err
	}
	return m.out, nil
}

type hostMarshaller struct {
	out any
}

func (m *hostMarshaller) VisitUndefined() error {
	m.out = nil
	return nil
}

func (m *hostMarshaller) VisitString(s string) error {
	m.out = s
	return nil
}

func (m *hostMarshaller) VisitStringRef(b []byte) error {
	m.out = string(b)
	return nil
}

func (m *hostMarshaller) VisitInteger(i int64) error {
	m.out = i
	return nil
}

func (m *hostMarshaller) VisitReal(f float64) error {
	m.out = f
	return nil
}

func (m *hostMarshaller) VisitFragment(f data.Fragment) error {
	m.out = FragmentView{f: f}
	return nil
}

func (m *hostMarshaller) VisitList(l data.FragmentList) error {
	m.out = ListView{l: l}
	return nil
}

func (m *hostMarshaller) VisitRegex(string) error {
	return failure.New(failure.KindUnsupportedValue, "udf.ToHost", "regex values cannot cross the function boundary")
}

// FromHost converts a host result back into a Value.
func FromHost(x any) (data.Value, error) {
	switch v := x.(type) {
	case nil:
		return data.Undefined(), nil
	case string:
		return data.String(v), nil
	case int:
		return data.Integer(int64(v)), nil
	case int8:
		return data.Integer(int64(v)), nil
	case int16:
		return data.Integer(int64(v)), nil
	case int32:
		return data.Integer(int64(v)), nil
	case int64:
		return data.Integer(v), nil
	case uint:
		return fromUnsigned(v)
	case uint8:
		return fromUnsigned(v)
	case uint16:
		return fromUnsigned(v)
	case uint32:
		return fromUnsigned(v)
	case uint64:
		return fromUnsigned(v)
	case float32:
		return data.Real(float64(v)), nil
	case float64:
		return data.Real(v), nil
	case data.Value:
		switch v.Kind() {
		case data.KindUndefined, data.KindString, data.KindInteger, data.KindReal:
			return v, nil
		case data.KindStringRef:
			s, _ := v.AsString()
			return data.String(s), nil
		}
		return data.Undefined(), invalidReturn(fmt.Sprintf("value of kind %s", v.Kind()))
	}
	return data.Undefined(), invalidReturn(fmt.Sprintf("%T", x))
}

func fromUnsigned[T uint | uint8 | uint16 | uint32 | uint64](v T) (data.Value, error) {
	n, err := safecast.Conv[int64](v)
	if err != nil {
		return data.Undefined(), failure.Wrap(failure.KindInvalidReturnType, "udf.FromHost", err,
			fmt.Sprintf("integer result %d does not fit int64", v))
	}
	return data.Integer(n), nil
}

func invalidReturn(shape string) error {
	return failure.New(failure.KindInvalidReturnType, "udf.FromHost",
		"result type must be one of {int, float, string, nil}, got "+shape)
}
