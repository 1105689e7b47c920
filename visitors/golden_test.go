package visitors

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/nodes"
)

func assertGolden(t *testing.T, name string, n nodes.Node) {
	t.Helper()
	sql, err := NewKSQLVisitor(WithPretty()).Format(n)
	require.NoError(t, err)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(sql))
}

func TestGoldenPrettyCTAS(t *testing.T) {
	assertGolden(t, "ctas_pretty", totalsCTAS(t))
}

func TestGoldenPrettyQuery(t *testing.T) {
	count := must(nodes.NewFunctionCall(name("COUNT"), []nodes.Expression{nodes.Column("ID")}))
	sel := must(nodes.NewSelect(true, []nodes.SelectItem{
		must(nodes.NewSingleColumn(nodes.Column("USER_ID"), "")),
		must(nodes.NewSingleColumn(count, "TOTAL")),
	}))
	limit := 10
	q := must(nodes.NewQuery(sel, table("ORDERS"), nodes.QueryClauses{
		GroupBy: []nodes.Expression{nodes.Column("USER_ID")},
		Having:  cmp(nodes.OpGreaterThan, count, nodes.NewIntegerLiteral(1)),
		Limit:   &limit,
	}))
	assertGolden(t, "query_pretty", q)
}
