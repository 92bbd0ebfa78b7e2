package udf

import (
	"errors"
	"fmt"
	"reflect"

	"fortio.org/safecast"
)

var (
	typeOfError        = reflect.TypeOf((*error)(nil)).Elem()
	typeOfFragmentView = reflect.TypeOf(FragmentView{})
	typeOfListView     = reflect.TypeOf(ListView{})
)

// Wrap adapts a typed Go function to a HostFunc. Parameters may be string,
// any signed integer, float32, float64, FragmentView, ListView or an
// interface type; the last parameter may be variadic. The function must
// return one value, optionally followed by an error.
//
//	udf.Wrap(func(s string, n int64) (string, error) { ... })
//	udf.Wrap(func(parts ...any) any { ... })
func Wrap(fn any) (HostFunc, error) {
	if fn == nil {
		return nil, errors.New("handler is nil")
	}
	if host, ok := fn.(HostFunc); ok {
		return host, nil
	}
	if host, ok := fn.(func([]any) (any, error)); ok {
		return host, nil
	}

	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler must be a function, got %T", fn)
	}
	switch {
	case rt.NumOut() == 1:
	case rt.NumOut() == 2 && rt.Out(1) == typeOfError:
	default:
		return nil, fmt.Errorf("handler %s must return one value and an optional error", rt)
	}
	for i := 0; i < rt.NumIn(); i++ {
		param := rt.In(i)
		if rt.IsVariadic() && i == rt.NumIn()-1 {
			param = param.Elem()
		}
		if !supportedParam(param) {
			return nil, fmt.Errorf("handler %s: unsupported parameter type %s", rt, param)
		}
	}

	return func(args []any) (any, error) {
		in, err := bindArgs(rt, args)
		if err != nil {
			return nil, err
		}
		out := rv.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}, nil
}

func supportedParam(t reflect.Type) bool {
	switch t {
	case typeOfFragmentView, typeOfListView:
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Interface,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func bindArgs(rt reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := rt.NumIn()
	if rt.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("expects at least %d arguments, got %d", fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("expects %d arguments, got %d", fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var param reflect.Type
		if i >= fixed {
			param = rt.In(rt.NumIn() - 1).Elem()
		} else {
			param = rt.In(i)
		}
		v, err := bindArg(param, arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func bindArg(param reflect.Type, arg any) (reflect.Value, error) {
	if param.Kind() == reflect.Interface {
		if arg == nil {
			return reflect.Zero(param), nil
		}
		v := reflect.ValueOf(arg)
		if !v.Type().Implements(param) {
			return reflect.Value{}, fmt.Errorf("%T does not implement %s", arg, param)
		}
		return v.Convert(param), nil
	}

	switch param.Kind() {
	case reflect.String:
		if s, ok := arg.(string); ok {
			return reflect.ValueOf(s).Convert(param), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, ok := arg.(int64); ok {
			return bindInt(param, n)
		}
	case reflect.Float32, reflect.Float64:
		switch n := arg.(type) {
		case float64:
			return reflect.ValueOf(n).Convert(param), nil
		case int64:
			return reflect.ValueOf(float64(n)).Convert(param), nil
		}
	case reflect.Struct:
		if arg != nil && reflect.TypeOf(arg) == param {
			return reflect.ValueOf(arg), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("want %s, have %s", param, describe(arg))
}

func bindInt(param reflect.Type, n int64) (reflect.Value, error) {
	var (
		v   any
		err error
	)
	switch param.Kind() {
	case reflect.Int:
		v, err = safecast.Conv[int](n)
	case reflect.Int8:
		v, err = safecast.Conv[int8](n)
	case reflect.Int16:
		v, err = safecast.Conv[int16](n)
	case reflect.Int32:
		v, err = safecast.Conv[int32](n)
	default:
		v = n
	}
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%d does not fit %s: %w", n, param, err)
	}
	return reflect.ValueOf(v).Convert(param), nil
}

func describe(arg any) string {
	if arg == nil {
		return "undefined"
	}
	return fmt.Sprintf("%T", arg)
}
