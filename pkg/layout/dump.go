package layout

import (
	"fmt"
	"io"
	"strings"
)

// Walk visits b and everything below it depth first. Flows show their
// laid out items, so text masters are followed by their slaves. Walk stops
// at the first error fn returns.
func Walk(b Box, fn func(depth int, b Box) error) error {
	return walk(b, 0, fn)
}

func walk(b Box, depth int, fn func(int, Box) error) error {
	if err := fn(depth, b); err != nil {
		return err
	}
	var children []Box
	if f, ok := b.(*ClueFlow); ok {
		children = f.Items()
	} else {
		children = childrenOf(b)
	}
	for _, ch := range children {
		if err := walk(ch, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

var flagNames = []struct {
	f    Flags
	name string
}{
	{FlagSeparator, "sep"},
	{FlagNewLine, "nl"},
	{FlagSelected, "sel"},
	{FlagAllSelected, "allsel"},
	{FlagFixedWidth, "fixed"},
	{FlagAligned, "float"},
	{FlagPrinted, "printed"},
	{FlagHidden, "hidden"},
}

// Describe is the one line summary of a box written by Dump.
func Describe(b Box) string {
	o := b.Obj()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s x=%d y=%d w=%d a=%d d=%d", b.Kind(), o.X, o.Y, o.Width, o.Ascent, o.Descent)
	if o.Percent > 0 {
		fmt.Fprintf(&sb, " pct=%d", o.Percent)
	}

	switch b := b.(type) {
	case *TextMaster:
		fmt.Fprintf(&sb, " %q", b.Text())
	case *TextSlave:
		fmt.Fprintf(&sb, " %q", b.Text())
	case *Text:
		fmt.Fprintf(&sb, " %q", b.Text)
	case *Image:
		fmt.Fprintf(&sb, " src=%q", b.URL)
		if b.Alt != "" {
			fmt.Fprintf(&sb, " alt=%q", b.Alt)
		}
	case *Anchor:
		fmt.Fprintf(&sb, " name=%q", b.Name)
	case *Table:
		rows, cols := b.Size()
		fmt.Fprintf(&sb, " %dx%d %s cols=%v", rows, cols, b.state, b.columnOpt)
	case *TableCell:
		fmt.Fprintf(&sb, " slot=%d,%d span=%dx%d %s", b.row, b.col, b.RowSpan, b.ColSpan, b.Mode())
	}

	var names []string
	for _, fn := range flagNames {
		if o.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	if len(names) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(names, ","))
	}
	return sb.String()
}

// Dump writes the tree below b, one box per line, indented two spaces per
// level.
func Dump(w io.Writer, b Box) error {
	return Walk(b, func(depth int, b Box) error {
		_, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), Describe(b))
		return err
	})
}
