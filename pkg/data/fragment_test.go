package data_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/failure"
)

type pair struct {
	Name  string
	Value data.Value
}

func collect(f data.Fragment) []pair {
	var out []pair
	for name, v := range f.Iterate() {
		out = append(out, pair{Name: name, Value: v})
	}
	return out
}

func TestFragment_IterateKeepsInsertionOrder(t *testing.T) {
	cases := []struct {
		name  string
		build func(f data.Fragment) []pair
	}{
		{
			name:  "empty",
			build: func(data.Fragment) []pair { return nil },
		},
		{
			name: "scalars",
			build: func(f data.Fragment) []pair {
				f.AddString("b", "two")
				f.AddInteger("a", 1)
				f.AddReal("c", 2.5)
				return []pair{
					{"b", data.String("two")},
					{"a", data.Integer(1)},
					{"c", data.Real(2.5)},
				}
			},
		},
		{
			name: "mixed children",
			build: func(f data.Fragment) []pair {
				f.AddUndefined("u")
				child := f.AddFragment("child")
				list := f.AddFragmentList("list")
				f.AddStringRef("raw", []byte("bytes"))
				return []pair{
					{"u", data.Undefined()},
					{"child", child.Ref()},
					{"list", list.Ref()},
					{"raw", data.StringRef([]byte("bytes"))},
				}
			},
		},
		{
			name: "many",
			build: func(f data.Fragment) []pair {
				var want []pair
				for i := 20; i > 0; i-- {
					name := "k" + strconv.Itoa(i)
					f.AddInteger(name, int64(i))
					want = append(want, pair{name, data.Integer(int64(i))})
				}
				return want
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := data.New()
			want := tc.build(root.Fragment())

			got := collect(root.Fragment())
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("iterate mismatch (-want +got):\n%s", diff)
			}
			if size := root.Fragment().Size(); size != len(want) {
				t.Fatalf("size: want %d, got %d", len(want), size)
			}
		})
	}
}

func TestFragment_MissingNames(t *testing.T) {
	root := data.New()
	frag := root.Fragment()
	frag.AddString("present", "x")

	for _, name := range []string{"absent", "", "Present", "present.child"} {
		if frag.Contains(name) {
			t.Fatalf("contains(%q) should be false", name)
		}
		v, ok := frag.Lookup(name)
		if ok {
			t.Fatalf("lookup(%q) should miss", name)
		}
		if !v.IsUndefined() {
			t.Fatalf("lookup(%q) should yield undefined, got %s", name, v.Kind())
		}
	}
}

func TestFragment_DuplicateNameLastWinsInPlace(t *testing.T) {
	root := data.New()
	frag := root.Fragment()
	frag.AddString("a", "first")
	frag.AddInteger("b", 2)
	frag.AddInteger("a", 3)

	want := []pair{
		{"a", data.Integer(3)},
		{"b", data.Integer(2)},
	}
	if diff := cmp.Diff(want, collect(frag)); diff != "" {
		t.Fatalf("duplicate handling mismatch (-want +got):\n%s", diff)
	}
	if frag.Size() != 2 {
		t.Fatalf("size: want 2, got %d", frag.Size())
	}
}

func TestFragment_EmptyNameAccepted(t *testing.T) {
	root := data.New()
	root.Fragment().AddString("", "anonymous")

	v, ok := root.Fragment().Lookup("")
	if !ok {
		t.Fatalf("empty name should be stored")
	}
	if s, _ := v.AsString(); s != "anonymous" {
		t.Fatalf("unexpected value %q", s)
	}
}

func TestFragment_AddValueRejectsReferences(t *testing.T) {
	root := data.New()
	frag := root.Fragment()
	child := frag.AddFragment("child")

	if frag.AddValue("alias", child.Ref()) {
		t.Fatalf("reference values must not be re-parented")
	}
	if !frag.AddValue("n", data.Integer(7)) {
		t.Fatalf("scalar values should be accepted")
	}
	if frag.Contains("alias") {
		t.Fatalf("rejected value must not be stored")
	}
}

func TestScenario_NameAndItems(t *testing.T) {
	root := data.New()
	frag := root.Fragment()
	frag.AddString("name", "Ada")
	items := frag.AddFragmentList("items")
	items.AppendFragment().AddInteger("id", 1)
	items.AppendFragment().AddInteger("id", 2)

	want := []pair{
		{"name", data.String("Ada")},
		{"items", items.Ref()},
	}
	if diff := cmp.Diff(want, collect(frag)); diff != "" {
		t.Fatalf("root mismatch (-want +got):\n%s", diff)
	}

	v, _ := frag.Lookup("items")
	list, err := v.AsList()
	if err != nil {
		t.Fatalf("as list: %v", err)
	}
	if list.Size() != 2 {
		t.Fatalf("list size: want 2, got %d", list.Size())
	}
	second, err := list.Get(1)
	if err != nil {
		t.Fatalf("get(1): %v", err)
	}
	id, _ := second.Lookup("id")
	if n, err := id.AsInteger(); err != nil || n != 2 {
		t.Fatalf("get(1).id: want 2, got %d (%v)", n, err)
	}
}

func TestFragmentList_GetOutOfRange(t *testing.T) {
	root := data.New()
	list := root.Fragment().AddFragmentList("items")
	list.AppendFragment()

	for _, idx := range []int{1, 5, -1} {
		_, err := list.Get(idx)
		if !errors.Is(err, failure.ErrIndexOutOfRange) {
			t.Fatalf("get(%d): want IndexOutOfRange, got %v", idx, err)
		}
	}
}

func TestFragmentList_ScalarEntries(t *testing.T) {
	root := data.New()
	list := root.Fragment().AddFragmentList("tags")
	list.AppendString("go")
	list.AppendInteger(7)
	list.AppendReal(0.5)
	list.AppendFragment().AddString("title", "record")

	want := []data.Value{data.String("go"), data.Integer(7), data.Real(0.5)}
	var got []data.Value
	for idx, item := range list.Iterate() {
		v, ok := data.Scalar(item)
		if idx == 3 {
			if ok {
				t.Fatalf("record entry reported as scalar")
			}
			continue
		}
		if !ok {
			t.Fatalf("entry %d should be scalar", idx)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scalar entries mismatch (-want +got):\n%s", diff)
	}
}

func TestRoot_ReleaseInvalidatesReferences(t *testing.T) {
	root := data.New()
	child := root.Fragment().AddFragment("child")
	list := root.Fragment().AddFragmentList("list")
	fragRef, listRef := child.Ref(), list.Ref()

	root.Release()

	if _, err := fragRef.AsFragment(); !errors.Is(err, failure.ErrReleased) {
		t.Fatalf("fragment ref after release: want Released, got %v", err)
	}
	if _, err := listRef.AsList(); !errors.Is(err, failure.ErrReleased) {
		t.Fatalf("list ref after release: want Released, got %v", err)
	}
	if child.Valid() || list.Valid() {
		t.Fatalf("handles should be invalid after release")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("building on a released tree should panic")
		}
	}()
	child.AddString("late", "x")
}

func TestRoot_ReleasedAccessorsReadEmpty(t *testing.T) {
	root := data.New()
	frag := root.Fragment()
	frag.AddString("name", "Ada")
	list := frag.AddFragmentList("items")
	list.AppendInteger(1)

	root.Release()

	if v, ok := frag.Lookup("name"); ok || !v.IsUndefined() {
		t.Fatalf("Lookup after release: got %v, %v", v, ok)
	}
	if v, ok := frag.Lookup("missing"); ok || !v.IsUndefined() {
		t.Fatalf("Lookup missing after release: got %v, %v", v, ok)
	}
	if frag.Contains("name") || frag.Size() != 0 || frag.Names() != nil {
		t.Fatalf("fragment should read empty after release")
	}
	for name := range frag.Iterate() {
		t.Fatalf("Iterate after release yielded %q", name)
	}
	if list.Size() != 0 {
		t.Fatalf("list size after release: %d", list.Size())
	}
	if _, err := list.Get(0); !errors.Is(err, failure.ErrReleased) {
		t.Fatalf("Get after release: want Released, got %v", err)
	}
}

func TestRoot_ReleaseDuringIterationStops(t *testing.T) {
	root := data.New()
	frag := root.Fragment()
	frag.AddInteger("a", 1)
	frag.AddInteger("b", 2)
	frag.AddInteger("c", 3)
	list := frag.AddFragmentList("items")
	list.AppendInteger(1)
	list.AppendInteger(2)

	var seen []string
	for name := range frag.Iterate() {
		seen = append(seen, name)
		root.Release()
	}
	if diff := cmp.Diff([]string{"a"}, seen); diff != "" {
		t.Fatalf("visited names mismatch (-want +got):\n%s", diff)
	}

	other := data.New()
	items := other.Fragment().AddFragmentList("items")
	items.AppendInteger(1)
	items.AppendInteger(2)
	visits := 0
	for range items.Iterate() {
		visits++
		other.Release()
	}
	if visits != 1 {
		t.Fatalf("list iteration after release: %d visits", visits)
	}
}
