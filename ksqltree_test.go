package ksqltree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree"
	"github.com/bawdo/ksqltree/nodes"
)

func TestSimpleImportStyle(t *testing.T) {
	t.Parallel()
	where, err := ksqltree.Compare(nodes.OpGreaterThan, ksqltree.Col("AMOUNT"), ksqltree.Int(100))
	require.NoError(t, err)

	query, err := ksqltree.From("ORDERS").Where(where).Build()
	require.NoError(t, err)

	ctas, err := ksqltree.CreateTableAs("TOTALS", query).
		With("KAFKA_TOPIC", ksqltree.String("totals")).
		Build()
	require.NoError(t, err)

	sql, err := ksqltree.Format(ctas)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE TOTALS WITH (KAFKA_TOPIC='totals') AS SELECT * FROM ORDERS WHERE AMOUNT > 100", sql)
	cas, ok := ctas.(nodes.CreateAsSelect)
	require.True(t, ok)
	assert.True(t, cas.Sink().IsTable())
	assert.Equal(t, "TOTALS", cas.Sink().Name())
}

func TestParameterisedQuery(t *testing.T) {
	t.Parallel()
	where, err := ksqltree.Compare(nodes.OpEqual, ksqltree.Col("STATUS"), ksqltree.String("paid"))
	require.NoError(t, err)

	sql, params, err := ksqltree.From("ORDERS").Where(where).ToSQL(ksqltree.NewPostgresVisitor(ksqltree.WithParams()))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "ORDERS" WHERE "STATUS" = $1`, sql)
	assert.Equal(t, []any{"paid"}, params)
}

func TestInterningSharesEqualStatements(t *testing.T) {
	t.Parallel()
	a, err := ksqltree.From("ORDERS").At(ksqltree.NodeLocation{Line: 1, Column: 1}).Build()
	require.NoError(t, err)
	b, err := ksqltree.From("ORDERS").At(ksqltree.NodeLocation{Line: 9, Column: 3}).Build()
	require.NoError(t, err)

	in := ksqltree.NewInterner(0)
	first, seen := in.Intern(a)
	assert.False(t, seen)
	second, seen := in.Intern(b)
	assert.True(t, seen)
	assert.Same(t, first, second)
}

func TestInvalidNameIsReportedAtBuild(t *testing.T) {
	t.Parallel()
	_, err := ksqltree.From("").Build()
	assert.Error(t, err)
}
