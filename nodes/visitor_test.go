package nodes_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/internal/testutil"
	"github.com/bawdo/ksqltree/nodes"
)

func TestAcceptRoutesEveryVariant(t *testing.T) {
	t.Parallel()
	for want, n := range sampleNodes(t) {
		sv := &testutil.StubVisitor{}
		got, err := nodes.Accept[string, any](n, sv, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, []string{want}, sv.Calls, "only the %s method should run", want)
	}
}

func TestAcceptNilNode(t *testing.T) {
	t.Parallel()
	_, err := nodes.Accept[string, any](nil, &testutil.StubVisitor{}, nil)
	assert.ErrorIs(t, err, nodes.ErrNilNode)
}

func TestAcceptPassesContext(t *testing.T) {
	t.Parallel()
	v := nodes.DefaultVisitor[int, int]{
		Fallback: func(_ nodes.Node, ctx int) (int, error) { return ctx * 2, nil },
	}
	got, err := nodes.Accept[int, int](nodes.NewNullLiteral(), v, 21)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestDefaultVisitorWithoutFallback(t *testing.T) {
	t.Parallel()
	loc := nodes.NodeLocation{Line: 2, Column: 5}
	_, err := nodes.Accept[string, any](nodes.NewNullLiteral(nodes.At(loc)), nodes.DefaultVisitor[string, any]{}, nil)
	require.ErrorIs(t, err, nodes.ErrUnsupportedNode)
	assert.Contains(t, err.Error(), "NullLiteral")
	assert.Contains(t, err.Error(), "Line: 2, Col: 5")
}

// literalCounter overrides only the literal methods it cares about; every
// other variant reaches the fallback.
type literalCounter struct {
	nodes.DefaultVisitor[int, struct{}]
}

func (literalCounter) VisitIntegerLiteral(n *nodes.IntegerLiteral, _ struct{}) (int, error) {
	return int(n.Value()), nil
}

func TestDefaultVisitorPartialOverride(t *testing.T) {
	t.Parallel()
	var fallbacks int
	v := literalCounter{nodes.DefaultVisitor[int, struct{}]{
		Fallback: func(nodes.Node, struct{}) (int, error) {
			fallbacks++
			return -1, nil
		},
	}}

	got, err := nodes.Accept[int, struct{}](nodes.NewIntegerLiteral(7), v, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Zero(t, fallbacks)

	got, err = nodes.Accept[int, struct{}](nodes.NewStringLiteral("x"), v, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, -1, got)
	assert.Equal(t, 1, fallbacks)
}

func TestVisitorErrorIsNotWrapped(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("unsupported for analysis")
	v := nodes.DefaultVisitor[string, any]{
		Fallback: func(nodes.Node, any) (string, error) { return "", sentinel },
	}
	for _, n := range sampleNodes(t) {
		_, err := nodes.Accept[string, any](n, v, nil)
		assert.Same(t, sentinel, err)
	}
}
