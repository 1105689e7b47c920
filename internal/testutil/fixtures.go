package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/nodes"
)

// OrdersQuery builds SELECT * FROM orders WHERE amount > threshold.
func OrdersQuery(t testing.TB, threshold int64) *nodes.Query {
	t.Helper()
	sel, err := nodes.NewSelect(false, []nodes.SelectItem{nodes.NewAllColumns(nodes.QualifiedName{})})
	require.NoError(t, err)
	from, err := nodes.NewTable(nodes.MustQualifiedName("orders"))
	require.NoError(t, err)
	where, err := nodes.NewComparisonExpression(nodes.OpGreaterThan,
		nodes.Column("amount"), nodes.NewIntegerLiteral(threshold))
	require.NoError(t, err)
	q, err := nodes.NewQuery(sel, from, nodes.QueryClauses{Where: where})
	require.NoError(t, err)
	return q
}

// Props builds a property bag of string literals from key/value pairs.
func Props(t testing.TB, kv ...string) nodes.Properties {
	t.Helper()
	require.Zero(t, len(kv)%2, "Props needs key/value pairs")
	entries := make([]nodes.Property, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		entries = append(entries, nodes.Property{Key: kv[i], Value: nodes.NewStringLiteral(kv[i+1])})
	}
	p, err := nodes.NewProperties(entries...)
	require.NoError(t, err)
	return p
}
