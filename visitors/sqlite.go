package visitors

import (
	"github.com/bawdo/ksqltree/internal/quoting"
	"github.com/bawdo/ksqltree/nodes"
)

// SQLiteVisitor generates SQLite-dialect SQL.
// Identifiers are quoted with double quotes: "table"."column" (ANSI SQL).
type SQLiteVisitor struct {
	*baseVisitor
}

var _ Formatter = (*SQLiteVisitor)(nil)

// NewSQLiteVisitor creates a SQLiteVisitor ready for use.
// Pass WithParams() to render literals as ? placeholders.
func NewSQLiteVisitor(opts ...Option) *SQLiteVisitor {
	v := &SQLiteVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:       v,
		dialect:     "sqlite",
		quoteIdent:  quoting.DoubleQuote,
		placeholder: func(_ int) string { return "?" },
	}
	v.applyOptions(opts)
	return v
}

// SQLite spells IS DISTINCT FROM as IS NOT.
func (v *SQLiteVisitor) VisitComparisonExpression(n *nodes.ComparisonExpression, ctx struct{}) (string, error) {
	if n.Operator() == nodes.OpIsDistinctFrom {
		return v.infix(n.Left(), "IS NOT", n.Right())
	}
	return v.baseVisitor.VisitComparisonExpression(n, ctx)
}
