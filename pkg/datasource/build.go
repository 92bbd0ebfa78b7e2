// Package datasource fills data trees from host values and serialized
// documents (JSON, YAML, TOML, MessagePack).
package datasource

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"fortio.org/safecast"

	"github.com/goliatone/go-teng/pkg/data"
)

// Member is one key of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a mapping that keeps its keys in document order. Decoders return
// it for every mapping so that the tree sees variables in the order they were
// written.
type Object []Member

// Get returns the value of the last member named key.
func (o Object) Get(key string) (any, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Build adds the variables described by value to the root fragment of root.
//
// value must be a mapping (Object, or a Go map keyed by strings) or a slice
// of mappings, which are merged in order. Inside a mapping:
//
//   - nested mappings become fragments
//   - slices become fragment lists; mapping items become entries and scalar
//     items become entries holding data.ScalarKey
//   - strings, integers and floats keep their type
//   - booleans become "true" or "false"
//   - nil becomes undefined
//   - time.Time becomes an RFC 3339 string
//
// Slices directly inside slices are rejected. Go maps are walked in sorted
// key order.
func Build(root *data.Root, value any) error {
	if root == nil {
		return fmt.Errorf("datasource: nil root")
	}
	b := builder{}
	frag := root.Fragment()

	if entries, ok := mapping(value); ok {
		return b.fill(frag, entries, "")
	}
	items, ok := sequence(value)
	if !ok {
		return fmt.Errorf("datasource: root must be a mapping or a list of mappings, got %T", value)
	}
	for i, item := range items {
		entries, ok := mapping(item)
		if !ok {
			return fmt.Errorf("datasource: root item %d must be a mapping, got %T", i, item)
		}
		if err := b.fill(frag, entries, ""); err != nil {
			return err
		}
	}
	return nil
}

// New creates a root and fills it from value.
func New(value any) (*data.Root, error) {
	root := data.New()
	if err := Build(root, value); err != nil {
		root.Release()
		return nil, err
	}
	return root, nil
}

type builder struct{}

func (b builder) fill(f data.Fragment, entries Object, path string) error {
	for _, m := range entries {
		if err := b.add(f, m.Key, m.Value, join(path, m.Key)); err != nil {
			return err
		}
	}
	return nil
}

func (b builder) add(f data.Fragment, name string, value any, path string) error {
	if entries, ok := mapping(value); ok {
		return b.fill(f.AddFragment(name), entries, path)
	}
	if items, ok := sequence(value); ok {
		return b.list(f.AddFragmentList(name), items, path)
	}
	v, err := scalar(value)
	if err != nil {
		return fmt.Errorf("datasource: %s: %w", path, err)
	}
	f.AddValue(name, v)
	return nil
}

func (b builder) list(l data.FragmentList, items []any, path string) error {
	for i, item := range items {
		itemPath := path + "[" + strconv.Itoa(i) + "]"
		if entries, ok := mapping(item); ok {
			if err := b.fill(l.AppendFragment(), entries, itemPath); err != nil {
				return err
			}
			continue
		}
		if _, ok := sequence(item); ok {
			return fmt.Errorf("datasource: %s: nested lists are not supported", itemPath)
		}
		v, err := scalar(item)
		if err != nil {
			return fmt.Errorf("datasource: %s: %w", itemPath, err)
		}
		l.AppendFragment().AddValue(data.ScalarKey, v)
	}
	return nil
}

func scalar(value any) (data.Value, error) {
	switch v := value.(type) {
	case nil:
		return data.Undefined(), nil
	case string:
		return data.String(v), nil
	case []byte:
		return data.String(string(v)), nil
	case bool:
		return data.String(strconv.FormatBool(v)), nil
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
		return unsigned(v)
	case uint8:
		return unsigned(v)
	case uint16:
		return unsigned(v)
	case uint32:
		return unsigned(v)
	case uint64:
		return unsigned(v)
	case float32:
		return data.Real(float64(v)), nil
	case float64:
		return data.Real(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return data.Integer(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return data.Undefined(), fmt.Errorf("number %q: %w", v, err)
		}
		return data.Real(f), nil
	case time.Time:
		return data.String(v.Format(time.RFC3339)), nil
	case data.Value:
		if v.Kind().IsScalar() || v.IsUndefined() {
			return v, nil
		}
		return data.Undefined(), fmt.Errorf("value of kind %s cannot be copied into a tree", v.Kind())
	}
	return data.Undefined(), fmt.Errorf("unsupported value type %T", value)
}

func unsigned[T uint | uint8 | uint16 | uint32 | uint64](v T) (data.Value, error) {
	n, err := safecast.Conv[int64](v)
	if err != nil {
		return data.Undefined(), fmt.Errorf("integer %d does not fit int64: %w", v, err)
	}
	return data.Integer(n), nil
}

// mapping normalises the supported mapping shapes to an Object.
func mapping(value any) (Object, bool) {
	switch v := value.(type) {
	case Object:
		return v, true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Object, len(keys))
		for i, k := range keys {
			out[i] = Member{Key: k, Value: v[k]}
		}
		return out, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	out := make(Object, len(keys))
	for i, k := range keys {
		out[i] = Member{Key: k.String(), Value: rv.MapIndex(k).Interface()}
	}
	return out, true
}

// sequence normalises slices and arrays, excluding []byte.
func sequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []byte, nil:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
