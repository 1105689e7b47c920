package visitors

import (
	"github.com/bawdo/ksqltree/internal/quoting"
	"github.com/bawdo/ksqltree/nodes"
)

// MySQLVisitor generates MySQL-dialect SQL.
// Identifiers are quoted with backticks: `table`.`column`.
type MySQLVisitor struct {
	*baseVisitor
}

var _ Formatter = (*MySQLVisitor)(nil)

// NewMySQLVisitor creates a MySQLVisitor ready for use.
// Pass WithParams() to render literals as ? placeholders.
func NewMySQLVisitor(opts ...Option) *MySQLVisitor {
	v := &MySQLVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:       v,
		dialect:     "mysql",
		quoteIdent:  quoting.Backtick,
		placeholder: func(_ int) string { return "?" },
	}
	v.applyOptions(opts)
	return v
}

// MySQL treats backslash as an escape inside string literals.
func (v *MySQLVisitor) VisitStringLiteral(n *nodes.StringLiteral, ctx struct{}) (string, error) {
	if v.parameterize {
		return v.baseVisitor.VisitStringLiteral(n, ctx)
	}
	return "'" + quoting.EscapeString(n.Value()) + "'", nil
}

// MySQL has no IS DISTINCT FROM; the null-safe equality operator negated
// is equivalent.
func (v *MySQLVisitor) VisitComparisonExpression(n *nodes.ComparisonExpression, ctx struct{}) (string, error) {
	if n.Operator() != nodes.OpIsDistinctFrom {
		return v.baseVisitor.VisitComparisonExpression(n, ctx)
	}
	s, err := v.infix(n.Left(), "<=>", n.Right())
	if err != nil {
		return "", err
	}
	return "NOT (" + s + ")", nil
}

func (v *MySQLVisitor) VisitJoin(n *nodes.Join, ctx struct{}) (string, error) {
	if n.Type() == nodes.OuterJoin {
		return "", v.unsupported(n, "FULL OUTER JOIN")
	}
	return v.baseVisitor.VisitJoin(n, ctx)
}
