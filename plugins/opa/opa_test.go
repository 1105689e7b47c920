package opa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/internal/testutil"
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func aliased(name, alias string) nodes.Relation {
	t := must(nodes.NewTable(nodes.MustQualifiedName(name)))
	return must(nodes.NewAliasedRelation(t, alias))
}

func selectFrom(from nodes.Relation, items ...nodes.SelectItem) *nodes.Query {
	if len(items) == 0 {
		items = []nodes.SelectItem{nodes.NewAllColumns(nodes.QualifiedName{})}
	}
	sel := must(nodes.NewSelect(false, items))
	return must(nodes.NewQuery(sel, from, nodes.QueryClauses{}))
}

func column(dotted, alias string) *nodes.SingleColumn {
	return must(nodes.NewSingleColumn(nodes.Column(dotted), alias))
}

func tenantPolicy(ref plugins.SourceRef) ([]nodes.Expression, error) {
	switch ref.Name.String() {
	case "SECRETS":
		return nil, errors.New("access denied")
	case "USERS":
		col := must(nodes.NewColumnReference(must(nodes.NewQualifiedName(append(ref.Qualifier.Parts(), "TENANT_ID")...))))
		return []nodes.Expression{must(nodes.NewComparisonExpression(nodes.OpEqual, col, nodes.NewIntegerLiteral(42)))}, nil
	}
	return nil, nil
}

func transform(t *testing.T, o *OPA, q *nodes.Query) *nodes.Query {
	t.Helper()
	out, err := o.TransformQuery(q)
	require.NoError(t, err)
	return out
}

// --- PolicyFunc mode ---

func TestPolicyConditionsUseQualifier(t *testing.T) {
	t.Parallel()
	on := must(nodes.NewComparisonExpression(nodes.OpEqual, nodes.Column("O.USER_ID"), nodes.Column("U.ID")))
	join := must(nodes.NewJoin(nodes.InnerJoin, aliased("ORDERS", "O"), aliased("USERS", "U"), on))

	out := transform(t, New(tenantPolicy), selectFrom(join))
	testutil.AssertSQL(t, visitors.NewKSQLVisitor(), out,
		"SELECT * FROM ORDERS AS O INNER JOIN USERS AS U ON O.USER_ID = U.ID WHERE U.TENANT_ID = 42")
}

func TestPolicyNoConditionsReturnsInput(t *testing.T) {
	t.Parallel()
	in := selectFrom(aliased("ORDERS", "O"))
	assert.Same(t, in, transform(t, New(tenantPolicy), in))
	assert.Same(t, in, transform(t, New(nil), in))
}

func TestPolicyErrorRejectsQuery(t *testing.T) {
	t.Parallel()
	_, err := New(tenantPolicy).TransformQuery(selectFrom(aliased("SECRETS", "S")))
	assert.EqualError(t, err, "access denied")
}

func TestPolicyAppliesToEmbeddedQuery(t *testing.T) {
	t.Parallel()
	users := must(nodes.NewTable(nodes.MustQualifiedName("USERS")))
	ctas := must(nodes.NewCreateTableAsSelect(nodes.MustQualifiedName("ACTIVE"), selectFrom(users), false, nodes.Properties{}))

	out, err := plugins.Apply(ctas, New(tenantPolicy))
	require.NoError(t, err)
	got, ok := out.(*nodes.CreateTableAsSelect)
	require.True(t, ok)
	where, ok := got.Query().Where()
	require.True(t, ok)
	assert.Equal(t, "USERS.TENANT_ID = 42", must(visitors.Format(where)))
}

// --- Server mode ---

const cardMask = `{"result": {"orders": {"card": {"replace": {"value": "****"}}, "status": {"replace": {"value": "x"}}}}}`

func TestServerFiltersAndMasksColumns(t *testing.T) {
	t.Parallel()
	srv := newFakeServer(t, statusPaid, cardMask)
	o := NewFromServer(srv.URL, "ksql.orders.allow", nil)
	require.NotNil(t, o.Client())

	q := selectFrom(aliased("ORDERS", "O"), column("O.ID", ""), column("O.CARD", ""), column("STATUS", "S"))
	out := transform(t, o, q)
	testutil.AssertSQL(t, visitors.NewKSQLVisitor(), out,
		"SELECT O.ID, '****' AS CARD, 'x' AS S FROM ORDERS AS O WHERE O.STATUS = 'paid'")
}

func TestServerExpandsMaskedStar(t *testing.T) {
	t.Parallel()
	srv := newFakeServer(t, statusPaid, cardMask)
	var asked []string
	resolver := func(source nodes.QualifiedName) ([]string, error) {
		asked = append(asked, source.String())
		return []string{"ID", "CARD"}, nil
	}
	o := NewFromServer(srv.URL, "ksql.orders.allow", nil, WithColumnResolver(resolver))

	out := transform(t, o, selectFrom(aliased("ORDERS", "O")))
	testutil.AssertSQL(t, visitors.NewKSQLVisitor(), out,
		"SELECT O.ID, '****' AS CARD FROM ORDERS AS O WHERE O.STATUS = 'paid'")
	assert.Equal(t, []string{"ORDERS"}, asked)
}

func TestServerStarNeedsResolver(t *testing.T) {
	t.Parallel()
	srv := newFakeServer(t, statusPaid, cardMask)
	_, err := NewFromServer(srv.URL, "ksql.orders.allow", nil).TransformQuery(selectFrom(aliased("ORDERS", "O")))
	assert.ErrorIs(t, err, ErrResolverRequired)
}

func TestServerLeavesUnmaskedStar(t *testing.T) {
	t.Parallel()
	srv := newFakeServer(t, `{"result": {"queries": [[]]}}`, cardMask)
	q := selectFrom(aliased("PAYMENTS", "P"), nodes.NewAllColumns(nodes.MustQualifiedName("P")))

	out := transform(t, NewFromServer(srv.URL, "ksql.orders.allow", nil), q)
	assert.Same(t, q, out)
}

func TestServerMaskErrorsPropagate(t *testing.T) {
	t.Parallel()
	srv := newFakeServer(t, statusPaid, `not json`)
	_, err := NewFromServer(srv.URL, "ksql.orders.allow", nil).TransformQuery(selectFrom(aliased("ORDERS", "O")))
	assert.ErrorContains(t, err, "parse masks response")
}

func TestServerMasksOnlyMatchingColumnReferences(t *testing.T) {
	t.Parallel()
	srv := newFakeServer(t, statusPaid, cardMask)
	upper := must(nodes.NewFunctionCall(nodes.MustQualifiedName("UCASE"), []nodes.Expression{nodes.Column("O.CARD")}))
	q := selectFrom(aliased("ORDERS", "O"),
		must(nodes.NewSingleColumn(upper, "U")),
		column("X.CARD", ""),
		column("O.CARD", "C"),
		must(nodes.NewSingleColumn(nodes.NewIntegerLiteral(1), "ONE")),
	)

	out := transform(t, NewFromServer(srv.URL, "ksql.orders.allow", nil), q)
	testutil.AssertSQL(t, visitors.NewKSQLVisitor(), out,
		"SELECT UCASE(O.CARD) AS U, X.CARD, '****' AS C, 1 AS ONE FROM ORDERS AS O WHERE O.STATUS = 'paid'")
}

func TestMaskVisitorLeavesUnmaskedItems(t *testing.T) {
	t.Parallel()
	refs := []plugins.SourceRef{{Name: nodes.MustQualifiedName("ORDERS"), Qualifier: nodes.MustQualifiedName("O")}}
	masks := Masks{"ORDERS": {"CARD": {Replace: &ReplaceAction{Value: "****"}}}}
	v := newMaskVisitor(New(nil), refs, masks)

	got, err := nodes.Accept[[]nodes.SelectItem, struct{}](column("O.ID", ""), v, struct{}{})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = nodes.Accept[[]nodes.SelectItem, struct{}](column("CARD", ""), v, struct{}{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "'****' AS CARD", must(visitors.Format(got[0])))
}
