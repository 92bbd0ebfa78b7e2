package pongo

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/failure"
	"github.com/goliatone/go-teng/pkg/udf"
)

const (
	udfNamespace   = "udf"
	keyContentType = "_contentType"
	keyEncoding    = "_encoding"
	// keyScope carries the render scope to the for tag.
	keyScope = "_scope"
)

func reservedName(name string) bool {
	switch name {
	case udfNamespace, keyContentType, keyEncoding, keyScope:
		return true
	}
	return false
}

// scope is the per-render state shared by the template context and the
// functions exposed to it. Maps and slices handed to pongo2 are remembered by
// address so that function arguments can be traced back to the tree.
type scope struct {
	registry *udf.Registry

	frags map[uintptr]data.Fragment
	lists map[uintptr]listEntry

	mu       sync.Mutex
	failures []callFailure
}

type listEntry struct {
	list data.FragmentList
	size int
}

type callFailure struct {
	name string
	err  error
}

func newScope(reg *udf.Registry) *scope {
	return &scope{
		registry: reg,
		frags:    make(map[uintptr]data.Fragment),
		lists:    make(map[uintptr]listEntry),
	}
}

func (s *scope) fragment(f data.Fragment) map[string]any {
	out := make(map[string]any, f.Size())
	s.frags[reflect.ValueOf(out).Pointer()] = f
	for name, v := range f.Iterate() {
		out[name] = s.value(v)
	}
	return out
}

func (s *scope) list(l data.FragmentList) []any {
	// One spare slot keeps the backing array non-nil for empty lists.
	out := make([]any, 0, l.Size()+1)
	for _, item := range l.Iterate() {
		out = append(out, s.fragment(item))
	}
	s.lists[reflect.ValueOf(out).Pointer()] = listEntry{list: l, size: len(out)}
	return out
}

func (s *scope) value(v data.Value) any {
	switch v.Kind() {
	case data.KindString, data.KindStringRef:
		str, _ := v.AsString()
		return str
	case data.KindInteger:
		n, _ := v.AsInteger()
		return n
	case data.KindReal:
		f, _ := v.AsReal()
		return f
	case data.KindFragment:
		if f, err := v.AsFragment(); err == nil {
			return s.fragment(f)
		}
	case data.KindList:
		if l, err := v.AsList(); err == nil {
			return s.list(l)
		}
	}
	return nil
}

// argument maps a pongo2 call argument back to a Value.
func (s *scope) argument(pv *pongo2.Value) (data.Value, error) {
	if pv == nil || pv.IsNil() {
		return data.Undefined(), nil
	}
	switch x := pv.Interface().(type) {
	case string:
		return data.String(x), nil
	case bool:
		return data.String(strconv.FormatBool(x)), nil
	case int:
		return data.Integer(int64(x)), nil
	case int64:
		return data.Integer(x), nil
	case float64:
		return data.Real(x), nil
	case map[string]any:
		if f, ok := s.frags[reflect.ValueOf(x).Pointer()]; ok {
			return f.Ref(), nil
		}
	case []any:
		if cap(x) > 0 {
			entry, ok := s.lists[reflect.ValueOf(x).Pointer()]
			if ok && entry.size == len(x) {
				return entry.list.Ref(), nil
			}
		}
	default:
		if v, err := udf.FromHost(x); err == nil {
			return v, nil
		}
	}
	return data.Undefined(), failure.New(failure.KindUnsupportedValue, "render.argument",
		fmt.Sprintf("value of type %T is not part of the data tree", pv.Interface()))
}

// result maps a function result to the value pongo2 prints.
func result(v data.Value) *pongo2.Value {
	switch v.Kind() {
	case data.KindString, data.KindStringRef:
		str, _ := v.AsString()
		return pongo2.AsValue(str)
	case data.KindInteger:
		n, _ := v.AsInteger()
		return pongo2.AsValue(n)
	case data.KindReal:
		f, _ := v.AsReal()
		return pongo2.AsValue(f)
	}
	return pongo2.AsValue(nil)
}

// namespace builds the udf global: one pongo2-callable per registered name.
func (s *scope) namespace() map[string]any {
	names := s.registry.Names()
	out := make(map[string]any, len(names))
	for _, name := range names {
		out[name] = s.callable(name)
	}
	return out
}

func (s *scope) callable(name string) func(...*pongo2.Value) (*pongo2.Value, error) {
	return func(in ...*pongo2.Value) (*pongo2.Value, error) {
		args := make([]data.Value, len(in))
		for i, pv := range in {
			v, err := s.argument(pv)
			if err != nil {
				return nil, s.fail(name, fmt.Errorf("argument %d: %w", i, err))
			}
			args[i] = v
		}
		out, err := s.registry.Invoke(name, args)
		if err != nil {
			return nil, s.fail(name, err)
		}
		return result(out), nil
	}
}

func (s *scope) fail(name string, err error) error {
	s.mu.Lock()
	s.failures = append(s.failures, callFailure{name: name, err: err})
	s.mu.Unlock()
	return fmt.Errorf("udf.%s: %s", name, failure.MessageOf(err))
}

func (s *scope) firstFailure() (callFailure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) == 0 {
		return callFailure{}, false
	}
	return s.failures[0], true
}

// validIdentifier mirrors the key check pongo2 applies to execution contexts.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
