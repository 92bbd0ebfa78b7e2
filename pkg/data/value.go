package data

import (
	"math"

	"github.com/goliatone/go-teng/pkg/failure"
)

// Kind is the active tag of a Value.
type Kind uint8

const (
	// KindUndefined is the zero Value: absence, distinct from "".
	KindUndefined Kind = iota
	KindString
	// KindStringRef is a borrowed byte view with string semantics.
	KindStringRef
	KindInteger
	KindReal
	KindFragment
	KindList
	// KindRegex is reserved. Values of this kind cannot be built or marshalled.
	KindRegex
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindString:    "string",
	KindStringRef: "string_ref",
	KindInteger:   "integer",
	KindReal:      "real",
	KindFragment:  "fragment",
	KindList:      "list",
	KindRegex:     "regex",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsScalar reports whether the kind carries a payload that does not point
// into a tree.
func (k Kind) IsScalar() bool {
	switch k {
	case KindString, KindStringRef, KindInteger, KindReal:
		return true
	default:
		return false
	}
}

// Value is a tagged union. The zero Value is undefined.
type Value struct {
	kind Kind
	str  string
	raw  []byte
	num  int64
	real float64
	node nodeID
	t    *tree
}

// Undefined returns the absence marker.
func Undefined() Value { return Value{} }

// String returns an owned string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// StringRef returns a Value borrowing b. The caller must not modify b while
// the Value is in use.
func StringRef(b []byte) Value { return Value{kind: KindStringRef, raw: b} }

// Integer returns a signed 64-bit integer Value.
func Integer(i int64) Value { return Value{kind: KindInteger, num: i} }

// Real returns a double precision Value.
func Real(f float64) Value { return Value{kind: KindReal, real: f} }

// Regex always fails: regular expression values are not supported yet.
func Regex(pattern string) (Value, error) {
	return Value{}, failure.New(failure.KindUnsupportedValue, "data.Regex", "regex values are not supported: "+pattern)
}

func fragmentRef(t *tree, id nodeID) Value { return Value{kind: KindFragment, t: t, node: id} }

func listRef(t *tree, id nodeID) Value { return Value{kind: KindList, t: t, node: id} }

// Kind returns the active tag.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is the absence marker.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

func (v Value) mismatch(op string, want Kind) error {
	return failure.New(failure.KindTypeMismatch, op, "want "+want.String()+", have "+v.kind.String())
}

// AsString returns the payload of a string or string_ref Value.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindStringRef:
		return string(v.raw), nil
	default:
		return "", v.mismatch("data.AsString", KindString)
	}
}

// AsInteger returns the payload of an integer Value.
func (v Value) AsInteger() (int64, error) {
	if v.kind != KindInteger {
		return 0, v.mismatch("data.AsInteger", KindInteger)
	}
	return v.num, nil
}

// AsReal returns the payload of a real Value.
func (v Value) AsReal() (float64, error) {
	if v.kind != KindReal {
		return 0, v.mismatch("data.AsReal", KindReal)
	}
	return v.real, nil
}

// AsFragment dereferences a fragment reference.
func (v Value) AsFragment() (Fragment, error) {
	if v.kind != KindFragment {
		return Fragment{}, v.mismatch("data.AsFragment", KindFragment)
	}
	if v.t == nil || v.t.released {
		return Fragment{}, failure.New(failure.KindReleased, "data.AsFragment", "tree was released")
	}
	return Fragment{t: v.t, id: v.node}, nil
}

// AsList dereferences a list reference.
func (v Value) AsList() (FragmentList, error) {
	if v.kind != KindList {
		return FragmentList{}, v.mismatch("data.AsList", KindList)
	}
	if v.t == nil || v.t.released {
		return FragmentList{}, failure.New(failure.KindReleased, "data.AsList", "tree was released")
	}
	return FragmentList{t: v.t, id: v.node}, nil
}

// Equal reports whether both Values carry the same tag and payload. Reals
// compare bit for bit; references compare by node identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindUndefined:
		return true
	case KindString:
		return v.str == o.str
	case KindStringRef:
		return string(v.raw) == string(o.raw)
	case KindInteger:
		return v.num == o.num
	case KindReal:
		return math.Float64bits(v.real) == math.Float64bits(o.real)
	case KindFragment, KindList:
		return v.t == o.t && v.node == o.node
	case KindRegex:
		return v.str == o.str
	}
	return false
}

// Visitor handles every Value kind. Implementations are checked by the
// compiler, so adding a kind breaks every consumer that does not handle it.
type Visitor interface {
	VisitUndefined() error
	VisitString(s string) error
	VisitStringRef(b []byte) error
	VisitInteger(i int64) error
	VisitReal(f float64) error
	VisitFragment(f Fragment) error
	VisitList(l FragmentList) error
	VisitRegex(pattern string) error
}

// Visit dispatches v to the matching Visitor method. References to a released
// tree fail with failure.ErrReleased before reaching the visitor.
func (v Value) Visit(vis Visitor) error {
	switch v.kind {
	case KindUndefined:
		return vis.VisitUndefined()
	case KindString:
		return vis.VisitString(v.str)
	case KindStringRef:
		return vis.VisitStringRef(v.raw)
	case KindInteger:
		return vis.VisitInteger(v.num)
	case KindReal:
		return vis.VisitReal(v.real)
	case KindFragment:
		f, err := v.AsFragment()
		if err != nil {
			return err
		}
		return vis.VisitFragment(f)
	case KindList:
		l, err := v.AsList()
		if err != nil {
			return err
		}
		return vis.VisitList(l)
	case KindRegex:
		return vis.VisitRegex(v.str)
	}
	return failure.New(failure.KindTypeMismatch, "data.Visit", "invalid kind "+v.kind.String())
}
