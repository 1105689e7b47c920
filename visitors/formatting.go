package visitors

import (
	"strings"

	"github.com/bawdo/ksqltree/nodes"
)

// writer accumulates rendered SQL and keeps the first error; once an error
// is recorded further writes are ignored.
type writer struct {
	b   *baseVisitor
	sb  strings.Builder
	err error
}

func (b *baseVisitor) writer() *writer { return &writer{b: b} }

func (w *writer) str(s string) {
	if w.err == nil {
		w.sb.WriteString(s)
	}
}

func (w *writer) node(n nodes.Node) {
	if w.err != nil {
		return
	}
	s, err := w.b.visit(n)
	if err != nil {
		w.err = err
		return
	}
	w.sb.WriteString(s)
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) result() (string, error) {
	if w.err != nil {
		return "", w.err
	}
	return w.sb.String(), nil
}

// writeList writes "item1 sep item2 sep ...".
func writeList[T nodes.Node](w *writer, items []T, sep string) {
	for i, item := range items {
		if i > 0 {
			w.str(sep)
		}
		w.node(item)
	}
}

// compoundCheck reports operator expressions, which need parentheses when
// nested inside another operator.
type compoundCheck struct {
	nodes.DefaultVisitor[bool, struct{}]
}

func (compoundCheck) VisitComparisonExpression(*nodes.ComparisonExpression, struct{}) (bool, error) {
	return true, nil
}

func (compoundCheck) VisitLogicalBinaryExpression(*nodes.LogicalBinaryExpression, struct{}) (bool, error) {
	return true, nil
}

func (compoundCheck) VisitNotExpression(*nodes.NotExpression, struct{}) (bool, error) {
	return true, nil
}

func (compoundCheck) VisitArithmeticBinaryExpression(*nodes.ArithmeticBinaryExpression, struct{}) (bool, error) {
	return true, nil
}

var compound = compoundCheck{nodes.DefaultVisitor[bool, struct{}]{
	Fallback: func(nodes.Node, struct{}) (bool, error) { return false, nil },
}}

func isCompound(e nodes.Expression) bool {
	ok, _ := nodes.Accept[bool, struct{}](e, compound, struct{}{})
	return ok
}
