package data

import (
	"iter"
	"strconv"

	"github.com/goliatone/go-teng/pkg/failure"
)

// ScalarKey names the single variable of a list entry created by one of the
// Append scalar helpers.
const ScalarKey = "_this"

// FragmentList is an ordered sequence of Fragments owned by the list.
type FragmentList struct {
	t  *tree
	id nodeID
}

func (l FragmentList) node(op string) *listNode {
	l.t.checkLive(op)
	return &l.t.lists[l.id]
}

func (l FragmentList) view() (*listNode, bool) {
	if !l.Valid() {
		return nil, false
	}
	return &l.t.lists[l.id], true
}

// AppendFragment appends an empty Fragment and returns its handle.
func (l FragmentList) AppendFragment() Fragment {
	l.t.checkLive("data.FragmentList.AppendFragment")
	id := l.t.newFragment()
	n := l.node("data.FragmentList.AppendFragment")
	n.items = append(n.items, id)
	return Fragment{t: l.t, id: id}
}

// AppendString appends an entry holding value under ScalarKey.
func (l FragmentList) AppendString(value string) Fragment {
	f := l.AppendFragment()
	f.AddString(ScalarKey, value)
	return f
}

// AppendInteger appends an entry holding value under ScalarKey.
func (l FragmentList) AppendInteger(value int64) Fragment {
	f := l.AppendFragment()
	f.AddInteger(ScalarKey, value)
	return f
}

// AppendReal appends an entry holding value under ScalarKey.
func (l FragmentList) AppendReal(value float64) Fragment {
	f := l.AppendFragment()
	f.AddReal(ScalarKey, value)
	return f
}

// Get returns the entry at index.
func (l FragmentList) Get(index int) (Fragment, error) {
	n, live := l.view()
	if !live {
		return Fragment{}, failure.New(failure.KindReleased, "data.FragmentList.Get", "tree was released")
	}
	if index < 0 || index >= len(n.items) {
		return Fragment{}, failure.New(failure.KindIndexOutOfRange, "data.FragmentList.Get",
			"index "+strconv.Itoa(index)+" with size "+strconv.Itoa(len(n.items)))
	}
	return Fragment{t: l.t, id: n.items[index]}, nil
}

// Size returns the number of entries, zero after release.
func (l FragmentList) Size() int {
	n, live := l.view()
	if !live {
		return 0
	}
	return len(n.items)
}

// Iterate yields entries with their index in order. Iteration stops when the
// tree is released.
func (l FragmentList) Iterate() iter.Seq2[int, Fragment] {
	return func(yield func(int, Fragment) bool) {
		n, live := l.view()
		if !live {
			return
		}
		count := len(n.items)
		for i := 0; i < count; i++ {
			if n, live = l.view(); !live {
				return
			}
			if !yield(i, Fragment{t: l.t, id: n.items[i]}) {
				return
			}
		}
	}
}

// Ref returns a Value referencing l.
func (l FragmentList) Ref() Value {
	l.t.checkLive("data.FragmentList.Ref")
	return listRef(l.t, l.id)
}

// Valid reports whether the handle points into a live tree.
func (l FragmentList) Valid() bool {
	return l.t != nil && !l.t.released
}

// Scalar returns the wrapped scalar of an entry built by an Append scalar
// helper. ok is false for record entries.
func Scalar(f Fragment) (Value, bool) {
	if f.Size() != 1 {
		return Undefined(), false
	}
	v, ok := f.Lookup(ScalarKey)
	if !ok || !v.Kind().IsScalar() {
		return Undefined(), false
	}
	return v, true
}
