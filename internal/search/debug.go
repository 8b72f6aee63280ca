package search

import (
	"fmt"
	"strings"

	"github.com/pstuifzand/doctree/internal/model"
)

// ExpressionString returns a pretty-printed representation of the filter expression
func ExpressionString(expr FilterExpr) string {
	return prettyPrintExpr(expr, 0)
}

func prettyPrintExpr(expr FilterExpr, indent int) string {
	pad := strings.Repeat("  ", indent)

	switch e := expr.(type) {
	case *AndExpr:
		return fmt.Sprintf("%s(and\n%s\n%s\n%s)", pad, prettyPrintExpr(e.left, indent+1), prettyPrintExpr(e.right, indent+1), pad)
	case *OrExpr:
		return fmt.Sprintf("%s(or\n%s\n%s\n%s)", pad, prettyPrintExpr(e.left, indent+1), prettyPrintExpr(e.right, indent+1), pad)
	case *NotExpr:
		return fmt.Sprintf("%s(not\n%s\n%s)", pad, prettyPrintExpr(e.expr, indent+1), pad)
	default:
		return pad + expr.String()
	}
}

// Explain says in one line why a node does or does not match expr
func Explain(t *model.Tree, id model.NodeID, expr FilterExpr) string {
	verdict := func(ok bool) string {
		if ok {
			return "matches"
		}
		return "does not match"
	}

	switch e := expr.(type) {
	case *TextExpr:
		return fmt.Sprintf("name %q %s text %q", t.Name(id), verdict(e.Matches(t, id)), e.term)
	case *DepthFilter:
		return fmt.Sprintf("depth %d %s %s%d", t.Depth(id), verdict(e.Matches(t, id)), e.op, e.value)
	case *ChildrenFilter:
		return fmt.Sprintf("%d children %s %s%d", t.Count(id), verdict(e.Matches(t, id)), e.op, e.value)
	case *KindFilter:
		return fmt.Sprintf("kind %s %s %s", t.Kind(id), verdict(e.Matches(t, id)), e.kind)
	case *ParentFilter:
		parent := t.Parent(id)
		if parent == model.NoNode {
			return "no parent"
		}
		return "parent: " + Explain(t, parent, e.inner)
	case *AndExpr:
		if !e.left.Matches(t, id) {
			return "left fails: " + Explain(t, id, e.left)
		}
		if !e.right.Matches(t, id) {
			return "right fails: " + Explain(t, id, e.right)
		}
		return fmt.Sprintf("both match: %s; %s", Explain(t, id, e.left), Explain(t, id, e.right))
	case *OrExpr:
		if e.left.Matches(t, id) {
			return "left matches: " + Explain(t, id, e.left)
		}
		return "right: " + Explain(t, id, e.right)
	case *NotExpr:
		return "inverted: " + Explain(t, id, e.expr)
	default:
		return fmt.Sprintf("%s %s", expr.String(), verdict(expr.Matches(t, id)))
	}
}
