package udf

import (
	"iter"

	"github.com/goliatone/go-teng/pkg/data"
)

// FragmentView is the read-only form of a Fragment handed to host functions.
// Nested values are returned already marshalled.
type FragmentView struct {
	f data.Fragment
}

// NewFragmentView wraps f.
func NewFragmentView(f data.Fragment) FragmentView {
	return FragmentView{f: f}
}

// Get returns the host form of the variable name.
func (v FragmentView) Get(name string) (any, bool) {
	value, ok := v.f.Lookup(name)
	if !ok {
		return nil, false
	}
	out, err := ToHost(value)
	if err != nil {
		return nil, false
	}
	return out, true
}

// Has reports whether name is bound.
func (v FragmentView) Has(name string) bool { return v.f.Contains(name) }

// Len returns the number of direct children.
func (v FragmentView) Len() int { return v.f.Size() }

// Names returns the bound names in insertion order.
func (v FragmentView) Names() []string { return v.f.Names() }

// All yields (name, host value) pairs in insertion order.
func (v FragmentView) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for name, value := range v.f.Iterate() {
			out, err := ToHost(value)
			if err != nil {
				continue
			}
			if !yield(name, out) {
				return
			}
		}
	}
}

// String renders the fragment in the debug format.
func (v FragmentView) String() string { return v.f.Dump() }

// ListView is the read-only form of a FragmentList handed to host functions.
type ListView struct {
	l data.FragmentList
}

// NewListView wraps l.
func NewListView(l data.FragmentList) ListView {
	return ListView{l: l}
}

// Len returns the number of entries.
func (v ListView) Len() int { return v.l.Size() }

// At returns the entry at index.
func (v ListView) At(index int) (FragmentView, error) {
	f, err := v.l.Get(index)
	if err != nil {
		return FragmentView{}, err
	}
	return FragmentView{f: f}, nil
}

// All yields entries in order.
func (v ListView) All() iter.Seq2[int, FragmentView] {
	return func(yield func(int, FragmentView) bool) {
		for i, f := range v.l.Iterate() {
			if !yield(i, FragmentView{f: f}) {
				return
			}
		}
	}
}

// String renders the list in the debug format.
func (v ListView) String() string { return v.l.Dump() }
