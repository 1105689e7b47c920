package nodes_test

import (
	"testing"

	"github.com/bawdo/ksqltree/internal/testutil"
	"github.com/bawdo/ksqltree/nodes"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// sampleNodes returns one node of every variant keyed by the sentinel the
// StubVisitor returns for it.
func sampleNodes(t *testing.T) map[string]nodes.Node {
	t.Helper()
	q := testutil.OrdersQuery(t, 10)
	name := nodes.MustQualifiedName("sink")
	col := nodes.Column("amount")
	one := nodes.NewIntegerLiteral(1)
	orders := must(nodes.NewTable(nodes.MustQualifiedName("orders")))
	elem := must(nodes.NewTableElement("id", "BIGINT"))

	return map[string]nodes.Node{
		"statements":              must(nodes.NewStatements([]nodes.Statement{q})),
		"create_table_as_select":  must(nodes.NewCreateTableAsSelect(name, q, false, nodes.Properties{})),
		"create_stream_as_select": must(nodes.NewCreateStreamAsSelect(name, q, false, nodes.Properties{}, col)),
		"create_table":            must(nodes.NewCreateTable(name, []*nodes.TableElement{elem}, false, nodes.Properties{})),
		"create_stream":           must(nodes.NewCreateStream(name, nil, false, nodes.Properties{})),
		"insert_into":             must(nodes.NewInsertInto(name, q, nil)),
		"drop_table":              must(nodes.NewDropTable(name, true, false)),
		"drop_stream":             must(nodes.NewDropStream(name, false, true)),
		"query":                   q,
		"select":                  q.Select(),
		"single_column":           must(nodes.NewSingleColumn(col, "amt")),
		"all_columns":             nodes.NewAllColumns(nodes.QualifiedName{}),
		"table":                   orders,
		"aliased_relation":        must(nodes.NewAliasedRelation(orders, "o")),
		"join":                    must(nodes.NewJoin(nodes.InnerJoin, orders, orders, nil)),
		"table_element":           elem,
		"string_literal":          nodes.NewStringLiteral("s"),
		"integer_literal":         one,
		"double_literal":          nodes.NewDoubleLiteral(1.5),
		"boolean_literal":         nodes.NewBooleanLiteral(true),
		"null_literal":            nodes.NewNullLiteral(),
		"column_reference":        col,
		"comparison":              must(nodes.NewComparisonExpression(nodes.OpEqual, col, one)),
		"logical_binary":          must(nodes.NewLogicalBinaryExpression(nodes.OpAnd, col, col)),
		"not":                     must(nodes.NewNotExpression(col)),
		"arithmetic_binary":       must(nodes.NewArithmeticBinaryExpression(nodes.OpAdd, col, one)),
		"function_call":           must(nodes.NewFunctionCall(nodes.MustQualifiedName("SUM"), []nodes.Expression{col})),
	}
}
