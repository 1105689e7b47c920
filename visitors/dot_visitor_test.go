package visitors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/internal/testutil"
	"github.com/bawdo/ksqltree/nodes"
)

func dotOf(t *testing.T, n nodes.Node) string {
	t.Helper()
	dot, err := ToDotString(n, nil)
	require.NoError(t, err)
	return dot
}

func TestDotVisitTable(t *testing.T) {
	t.Parallel()
	dot := dotOf(t, table("ORDERS"))

	assert.True(t, strings.HasPrefix(dot, "digraph AST {\n"))
	assert.Contains(t, dot, `n0 [label="Table\nORDERS", fillcolor="#6CA6CD"];`)
	assert.True(t, strings.HasSuffix(dot, "}\n"))
}

func TestDotVisitAliasedRelation(t *testing.T) {
	t.Parallel()
	dot := dotOf(t, must(nodes.NewAliasedRelation(table("ORDERS"), "O")))
	assert.Contains(t, dot, `n0 [label="Alias\nO"`)
	assert.Contains(t, dot, `n1 [label="Table\nORDERS"`)
	assert.Contains(t, dot, "n0 -> n1;")
}

func TestDotVisitComparison(t *testing.T) {
	t.Parallel()
	dot := dotOf(t, cmp(nodes.OpGreaterThan, nodes.Column("AMOUNT"), nodes.NewIntegerLiteral(100)))
	assert.Contains(t, dot, `n0 [label=">", fillcolor="#FFB347"];`)
	assert.Contains(t, dot, `n1 [label="Column\nAMOUNT", fillcolor="#B0D4E8"];`)
	assert.Contains(t, dot, `n2 [label="100", fillcolor="#D3D3D3"];`)
	assert.Contains(t, dot, `n0 -> n1 [label="LEFT"];`)
	assert.Contains(t, dot, `n0 -> n2 [label="RIGHT"];`)
}

func TestDotEscapesStringLiterals(t *testing.T) {
	t.Parallel()
	dot := dotOf(t, nodes.NewStringLiteral(`say "hi"`))
	assert.Contains(t, dot, `label="'say \"hi\"'"`)
}

func TestDotVisitCreateTableAsSelect(t *testing.T) {
	t.Parallel()
	dot := dotOf(t, totalsCTAS(t))

	assert.Contains(t, dot, `n0 [label="CreateTableAsSelect\nTOTALS\nIF NOT EXISTS", fillcolor="#FF6961"];`)
	assert.Contains(t, dot, `n0 -> n1 [label="QUERY"];`)
	assert.Contains(t, dot, `[label="KAFKA_TOPIC"];`)
	assert.Contains(t, dot, `label="'totals'"`)
	assert.NotContains(t, dot, "subgraph")
}

func TestDotVisitQueryClauses(t *testing.T) {
	t.Parallel()
	limit := 5
	q := must(nodes.NewQuery(star(), table("ORDERS"), nodes.QueryClauses{
		Where:   cmp(nodes.OpEqual, nodes.Column("A"), nodes.NewIntegerLiteral(1)),
		GroupBy: []nodes.Expression{nodes.Column("A")},
		Limit:   &limit,
	}))
	dot := dotOf(t, q)
	assert.Contains(t, dot, `n0 [label="Query\nLIMIT 5"`)
	for _, edge := range []string{`[label="SELECT"]`, `[label="FROM"]`, `[label="WHERE"]`, `[label="GROUP BY[0]"]`, `[label="ITEM[0]"]`} {
		assert.Contains(t, dot, edge)
	}
}

func TestDotVisitEveryVariant(t *testing.T) {
	t.Parallel()
	elems := []*nodes.TableElement{must(nodes.NewTableElement("ID", "BIGINT"))}
	count := must(nodes.NewFunctionCall(name("COUNT"), []nodes.Expression{nodes.Column("ID")}))
	sum := must(nodes.NewArithmeticBinaryExpression(nodes.OpAdd, nodes.NewDoubleLiteral(1.5), nodes.NewNullLiteral()))
	or := must(nodes.NewLogicalBinaryExpression(nodes.OpOr,
		must(nodes.NewNotExpression(nodes.NewBooleanLiteral(true))),
		cmp(nodes.OpEqual, count, sum)))
	sel := must(nodes.NewSelect(true, []nodes.SelectItem{must(nodes.NewSingleColumn(count, "C"))}))
	join := must(nodes.NewJoin(nodes.InnerJoin, table("A"), table("B"), or))
	q := must(nodes.NewQuery(sel, join, nodes.QueryClauses{Having: or}))

	script := must(nodes.NewStatements([]nodes.Statement{
		must(nodes.NewCreateTable(name("T"), elems, false, nodes.Properties{})),
		must(nodes.NewCreateStream(name("S"), elems, true, nodes.Properties{})),
		must(nodes.NewCreateStreamAsSelect(name("S2"), q, false, nodes.Properties{}, nodes.Column("ID"))),
		must(nodes.NewInsertInto(name("S2"), q, nodes.Column("ID"))),
		must(nodes.NewDropTable(name("T"), true, true)),
		must(nodes.NewDropStream(name("S"), false, false)),
	}))
	dot := dotOf(t, script)

	for _, label := range []string{
		`label="Statements"`, `label="CreateTable\nT"`, `label="CreateStream\nS\nIF NOT EXISTS"`,
		`label="CreateStreamAsSelect\nS2"`, `label="InsertInto\nS2"`,
		`label="DropTable\nT\nIF EXISTS\nDELETE TOPIC"`, `label="DropStream\nS"`,
		`label="ID\nBIGINT"`, `label="Select\nDISTINCT"`, `label="SingleColumn\nAS C"`,
		`label="INNER JOIN"`, `label="OR"`, `label="NOT"`, `label="TRUE"`, `label="COUNT()"`,
		`label="+"`, `label="1.5"`, `label="NULL"`, `label="PARTITION BY"`, `label="STMT[5]"`,
	} {
		assert.Contains(t, dot, label)
	}
}

func TestDotPluginClusters(t *testing.T) {
	t.Parallel()
	props := testutil.Props(t, "KAFKA_TOPIC", "totals", "VALUE_FORMAT", "JSON")
	ctas := must(nodes.NewCreateTableAsSelect(name("TOTALS"), ordersQuery(), false, props))

	prov := NewPluginProvenance()
	prov.AddProperty("defaults", "#FF0000", "VALUE_FORMAT")
	dot, err := ToDotString(ctas, prov)
	require.NoError(t, err)

	assert.Contains(t, dot, "subgraph cluster_0_defaults {")
	assert.Contains(t, dot, `label="defaults";`)
	assert.Contains(t, dot, `color="#FF0000";`)
	assert.Contains(t, dot, `    n`) // clustered nodes are indented inside the subgraph
	cluster := dot[strings.Index(dot, "subgraph"):]
	assert.Contains(t, cluster, `label="'JSON'"`)
	assert.NotContains(t, cluster, `label="'totals'"`)
}

func TestDotNodeBookkeeping(t *testing.T) {
	t.Parallel()
	dv := NewDotVisitor()
	require.NoError(t, dv.Walk(cmp(nodes.OpEqual, nodes.Column("A"), nodes.Column("B"))))
	assert.Equal(t, 3, dv.NodeCount())
	assert.Equal(t, []string{"n1", "n2"}, dv.NodeIDsSince(1))
	assert.Nil(t, dv.NodeIDsSince(3))
}
