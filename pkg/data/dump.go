package data

import (
	"strconv"
	"strings"
)

// Dump renders the Fragment in the stable debug format: one line per
// variable, two spaces of indent per level, nested fragments in braces and
// lists in brackets.
func (f Fragment) Dump() string {
	var b strings.Builder
	d := &dumper{b: &b}
	d.fragmentBody(f)
	return b.String()
}

// Dump renders the list in the debug format used by Fragment.Dump.
func (l FragmentList) Dump() string {
	var b strings.Builder
	d := &dumper{b: &b}
	d.listBody(l)
	return b.String()
}

type dumper struct {
	b     *strings.Builder
	depth int
}

func (d *dumper) indent() {
	for i := 0; i < d.depth; i++ {
		d.b.WriteString("  ")
	}
}

func (d *dumper) fragmentBody(f Fragment) {
	for name, v := range f.Iterate() {
		d.indent()
		d.b.WriteString(name)
		d.b.WriteString(": ")
		if err := v.Visit(d); err != nil {
			d.b.WriteString("<")
			d.b.WriteString(err.Error())
			d.b.WriteString(">\n")
		}
	}
}

func (d *dumper) listBody(l FragmentList) {
	for _, item := range l.Iterate() {
		d.indent()
		d.b.WriteString("{\n")
		d.depth++
		d.fragmentBody(item)
		d.depth--
		d.indent()
		d.b.WriteString("}\n")
	}
}

func (d *dumper) VisitUndefined() error {
	d.b.WriteString("undefined\n")
	return nil
}

func (d *dumper) VisitString(s string) error {
	d.b.WriteString(strconv.Quote(s))
	d.b.WriteByte('\n')
	return nil
}

func (d *dumper) VisitStringRef(raw []byte) error {
	return d.VisitString(string(raw))
}

func (d *dumper) VisitInteger(i int64) error {
	d.b.WriteString(strconv.FormatInt(i, 10))
	d.b.WriteByte('\n')
	return nil
}

func (d *dumper) VisitReal(f float64) error {
	d.b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	d.b.WriteByte('\n')
	return nil
}

func (d *dumper) VisitFragment(f Fragment) error {
	d.b.WriteString("{\n")
	d.depth++
	d.fragmentBody(f)
	d.depth--
	d.indent()
	d.b.WriteString("}\n")
	return nil
}

func (d *dumper) VisitList(l FragmentList) error {
	d.b.WriteString("[\n")
	d.depth++
	d.listBody(l)
	d.depth--
	d.indent()
	d.b.WriteString("]\n")
	return nil
}

func (d *dumper) VisitRegex(pattern string) error {
	d.b.WriteString("regex(")
	d.b.WriteString(strconv.Quote(pattern))
	d.b.WriteString(")\n")
	return nil
}
