package nodes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/internal/testutil"
	"github.com/bawdo/ksqltree/nodes"
)

func TestCreateStreamAsSelectSinkAndPartition(t *testing.T) {
	t.Parallel()
	q := testutil.OrdersQuery(t, 1)
	key := nodes.Column("customer_id")
	n, err := nodes.NewCreateStreamAsSelect(nodes.MustQualifiedName("big_orders"), q, false, testutil.Props(t, "VALUE_FORMAT", "AVRO"), key)
	require.NoError(t, err)

	sink := n.Sink()
	assert.Equal(t, "big_orders", sink.Name())
	assert.False(t, sink.IsTable())

	expr, ok := n.PartitionBy()
	require.True(t, ok)
	assert.Same(t, key, expr)

	var cas nodes.CreateAsSelect = n
	assert.Equal(t, "big_orders", cas.Name().String())
}

func TestCreateStreamAsSelectPartitionAffectsEquality(t *testing.T) {
	t.Parallel()
	q := testutil.OrdersQuery(t, 1)
	name := nodes.MustQualifiedName("s")
	a := must(nodes.NewCreateStreamAsSelect(name, q, false, nodes.Properties{}, nodes.Column("a")))
	b := must(nodes.NewCreateStreamAsSelect(name, q, false, nodes.Properties{}, nodes.Column("a")))
	c := must(nodes.NewCreateStreamAsSelect(name, q, false, nodes.Properties{}, nil))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(a))
}

func TestTableAndStreamVariantsAreDistinct(t *testing.T) {
	t.Parallel()
	q := testutil.OrdersQuery(t, 1)
	name := nodes.MustQualifiedName("s")
	table := must(nodes.NewCreateTableAsSelect(name, q, false, nodes.Properties{}))
	stream := must(nodes.NewCreateStreamAsSelect(name, q, false, nodes.Properties{}, nil))

	assert.False(t, table.Equal(stream))
	assert.False(t, stream.Equal(table))
	assert.NotEqual(t, table.Hash(), stream.Hash())

	dropT := must(nodes.NewDropTable(name, false, false))
	dropS := must(nodes.NewDropStream(name, false, false))
	assert.False(t, dropT.Equal(dropS))
	assert.NotEqual(t, dropT.Hash(), dropS.Hash())
}

func TestCreateStreamAsSelectRequiresFields(t *testing.T) {
	t.Parallel()
	_, err := nodes.NewCreateStreamAsSelect(nodes.QualifiedName{}, testutil.OrdersQuery(t, 1), false, nodes.Properties{}, nil)
	assert.ErrorIs(t, err, nodes.ErrMissingName)
	_, err = nodes.NewCreateStreamAsSelect(nodes.MustQualifiedName("s"), nil, false, nodes.Properties{}, nil)
	assert.ErrorIs(t, err, nodes.ErrMissingQuery)
}

func TestCreateTableDefinition(t *testing.T) {
	t.Parallel()
	id := must(nodes.NewTableElement("id", "BIGINT"))
	name := must(nodes.NewTableElement("name", "VARCHAR"))
	elems := []*nodes.TableElement{id, name}
	n := must(nodes.NewCreateTable(nodes.MustQualifiedName("users"), elems, true, testutil.Props(t, "KAFKA_TOPIC", "users")))

	elems[0] = name
	got := n.Elements()
	require.Len(t, got, 2)
	assert.Same(t, id, got[0])
	assert.True(t, n.NotExists())
	assert.Equal(t, "CreateTable{name=users, elements=[id BIGINT, name VARCHAR], notExists=true, properties={KAFKA_TOPIC='users'}}", n.String())

	_, err := nodes.NewTableElement("", "INT")
	assert.ErrorIs(t, err, nodes.ErrMissingColumn)
	_, err = nodes.NewCreateStream(nodes.MustQualifiedName("s"), []*nodes.TableElement{nil}, false, nodes.Properties{})
	assert.ErrorIs(t, err, nodes.ErrMissingColumn)
}

func TestInsertInto(t *testing.T) {
	t.Parallel()
	q := testutil.OrdersQuery(t, 1)
	n := must(nodes.NewInsertInto(nodes.MustQualifiedName("archive"), q, nil))
	_, ok := n.PartitionBy()
	assert.False(t, ok)
	assert.Equal(t, "archive", n.Target().String())

	_, err := nodes.NewInsertInto(nodes.MustQualifiedName("archive"), nil, nil)
	assert.ErrorIs(t, err, nodes.ErrMissingQuery)
}

func TestDropStatements(t *testing.T) {
	t.Parallel()
	n := must(nodes.NewDropStream(nodes.MustQualifiedName("s"), true, true))
	assert.True(t, n.IfExists())
	assert.True(t, n.DeleteTopic())
	assert.Equal(t, "DropStream{name=s, ifExists=true, deleteTopic=true}", n.String())

	_, err := nodes.NewDropTable(nodes.QualifiedName{}, false, false)
	assert.ErrorIs(t, err, nodes.ErrMissingName)
}

func TestStatementsList(t *testing.T) {
	t.Parallel()
	q := testutil.OrdersQuery(t, 1)
	drop := must(nodes.NewDropTable(nodes.MustQualifiedName("t"), false, false))
	list := []nodes.Statement{q, drop}
	n := must(nodes.NewStatements(list))
	list[0] = drop

	assert.Equal(t, 2, n.Len())
	assert.Same(t, q, n.List()[0])

	_, err := nodes.NewStatements([]nodes.Statement{nil})
	assert.ErrorIs(t, err, nodes.ErrMissingStatement)

	other := must(nodes.NewStatements([]nodes.Statement{testutil.OrdersQuery(t, 1), drop}))
	assert.True(t, n.Equal(other))
	assert.Equal(t, n.Hash(), other.Hash())
}
