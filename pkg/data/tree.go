package data

import (
	"github.com/goliatone/go-teng/pkg/failure"
)

type nodeID int32

const rootID nodeID = 0

type entry struct {
	name  string
	value Value
}

type fragmentNode struct {
	entries []entry
	index   map[string]int
}

type listNode struct {
	items []nodeID
}

// tree is the arena shared by every handle of one root.
type tree struct {
	frags    []fragmentNode
	lists    []listNode
	released bool
}

func (t *tree) newFragment() nodeID {
	t.frags = append(t.frags, fragmentNode{})
	return nodeID(len(t.frags) - 1)
}

func (t *tree) newList() nodeID {
	t.lists = append(t.lists, listNode{})
	return nodeID(len(t.lists) - 1)
}

func (t *tree) checkLive(op string) {
	if t == nil || t.released {
		panic(failure.New(failure.KindReleased, op, "tree was released"))
	}
}

// Root owns one data tree. The root Fragment has no name.
type Root struct {
	t *tree
}

// New creates an empty tree.
func New() *Root {
	t := &tree{}
	t.newFragment()
	return &Root{t: t}
}

// Fragment returns the unnamed root Fragment.
func (r *Root) Fragment() Fragment {
	return Fragment{t: r.t, id: rootID}
}

// Release ends the tree lifetime and drops the arena. Reference Values taken
// from the tree fail to dereference afterwards.
func (r *Root) Release() {
	if r == nil || r.t == nil || r.t.released {
		return
	}
	r.t.released = true
	r.t.frags = nil
	r.t.lists = nil
}

// Released reports whether Release was called.
func (r *Root) Released() bool {
	return r == nil || r.t == nil || r.t.released
}

// Dump renders the whole tree in the debug format.
func (r *Root) Dump() string {
	return r.Fragment().Dump()
}
