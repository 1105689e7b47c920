package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/nodes"
)

// SQLRenderer is satisfied by every dialect visitor.
type SQLRenderer interface {
	Format(n nodes.Node) (string, error)
}

// AssertSQL renders node with v and compares it with the expected string.
func AssertSQL(t testing.TB, v SQLRenderer, node nodes.Node, expected string) {
	t.Helper()
	got, err := v.Format(node)
	require.NoError(t, err)
	require.Equal(t, expected, got)
}
