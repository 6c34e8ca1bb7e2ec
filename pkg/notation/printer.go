package notation

import (
	"fmt"
	"strings"

	"github.com/compozy/normorder/engine/operator"
)

// Layout selects how terms are joined when printing.
type Layout string

const (
	SingleLine Layout = "line"
	MultiLine  Layout = "multiline"
)

// Separator returns the string placed between two printed terms.
func (l Layout) Separator() string {
	if l == MultiLine {
		return " +\n"
	}
	return " + "
}

// ParseLayout maps a layout name to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch Layout(name) {
	case SingleLine, MultiLine:
		return Layout(name), nil
	default:
		return "", fmt.Errorf("unknown layout %q", name)
	}
}

// Format prints expr in the given layout. The empty expression prints as "".
func Format(expr operator.Expression, layout Layout) string {
	return strings.Join(TermStrings(expr), layout.Separator())
}

// TermStrings prints every term of expr on its own.
func TermStrings(expr operator.Expression) []string {
	out := make([]string, expr.Len())
	for i := range out {
		out[i] = expr.At(i).String()
	}
	return out
}
