package data

import (
	"iter"
)

// Fragment is an ordered record of named Values. Names are unique: adding a
// name that already exists replaces its Value and keeps the position of the
// first insertion. Empty names are accepted; validating name grammar is left
// to the renderer.
//
// A Fragment is a handle into its root's arena and is valid until the root is
// released.
type Fragment struct {
	t  *tree
	id nodeID
}

func (f Fragment) node(op string) *fragmentNode {
	f.t.checkLive(op)
	return &f.t.frags[f.id]
}

// view returns the node for read access, or false once the tree is released.
func (f Fragment) view() (*fragmentNode, bool) {
	if !f.Valid() {
		return nil, false
	}
	return &f.t.frags[f.id], true
}

func (f Fragment) set(name string, v Value) {
	n := f.node("data.Fragment.add")
	if pos, ok := n.index[name]; ok {
		n.entries[pos].value = v
		return
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	n.index[name] = len(n.entries)
	n.entries = append(n.entries, entry{name: name, value: v})
}

// AddString adds a string variable.
func (f Fragment) AddString(name, value string) { f.set(name, String(value)) }

// AddStringRef adds a variable borrowing value.
func (f Fragment) AddStringRef(name string, value []byte) { f.set(name, StringRef(value)) }

// AddInteger adds an integer variable.
func (f Fragment) AddInteger(name string, value int64) { f.set(name, Integer(value)) }

// AddReal adds a real variable.
func (f Fragment) AddReal(name string, value float64) { f.set(name, Real(value)) }

// AddUndefined adds a variable holding the absence marker.
func (f Fragment) AddUndefined(name string) { f.set(name, Undefined()) }

// AddValue adds a scalar or undefined v under name. Reference and regex
// Values are rejected: nested children are only created through AddFragment
// and AddFragmentList so each node has exactly one parent.
func (f Fragment) AddValue(name string, v Value) bool {
	if v.kind != KindUndefined && !v.kind.IsScalar() {
		return false
	}
	f.set(name, v)
	return true
}

// AddFragment adds an empty nested Fragment and returns its handle.
func (f Fragment) AddFragment(name string) Fragment {
	f.t.checkLive("data.Fragment.AddFragment")
	id := f.t.newFragment()
	f.set(name, fragmentRef(f.t, id))
	return Fragment{t: f.t, id: id}
}

// AddFragmentList adds an empty nested FragmentList and returns its handle.
func (f Fragment) AddFragmentList(name string) FragmentList {
	f.t.checkLive("data.Fragment.AddFragmentList")
	id := f.t.newList()
	f.set(name, listRef(f.t, id))
	return FragmentList{t: f.t, id: id}
}

// Lookup returns the Value bound to name. Missing names, and every name of a
// released tree, yield Undefined and false.
func (f Fragment) Lookup(name string) (Value, bool) {
	n, live := f.view()
	if !live {
		return Undefined(), false
	}
	pos, ok := n.index[name]
	if !ok {
		return Undefined(), false
	}
	return n.entries[pos].value, true
}

// Contains reports whether name is bound.
func (f Fragment) Contains(name string) bool {
	n, live := f.view()
	if !live {
		return false
	}
	_, ok := n.index[name]
	return ok
}

// Size returns the number of direct children, zero after release.
func (f Fragment) Size() int {
	n, live := f.view()
	if !live {
		return 0
	}
	return len(n.entries)
}

// Names returns the bound names in insertion order.
func (f Fragment) Names() []string {
	n, live := f.view()
	if !live {
		return nil
	}
	names := make([]string, len(n.entries))
	for i, e := range n.entries {
		names[i] = e.name
	}
	return names
}

// Iterate yields (name, Value) pairs in insertion order. Children added
// during iteration are not visited; iteration stops when the tree is
// released.
func (f Fragment) Iterate() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		n, live := f.view()
		if !live {
			return
		}
		count := len(n.entries)
		for i := 0; i < count; i++ {
			n, live = f.view()
			if !live {
				return
			}
			e := n.entries[i]
			if !yield(e.name, e.value) {
				return
			}
		}
	}
}

// Ref returns a Value referencing f.
func (f Fragment) Ref() Value {
	f.t.checkLive("data.Fragment.Ref")
	return fragmentRef(f.t, f.id)
}

// Valid reports whether the handle points into a live tree.
func (f Fragment) Valid() bool {
	return f.t != nil && !f.t.released
}
