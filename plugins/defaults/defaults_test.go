package defaults

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/internal/testutil"
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

func ctas(t *testing.T, name string, props nodes.Properties) *nodes.CreateTableAsSelect {
	t.Helper()
	n, err := nodes.NewCreateTableAsSelect(nodes.MustQualifiedName(strings.Split(name, ".")...),
		testutil.OrdersQuery(t, 10), false, props)
	require.NoError(t, err)
	return n
}

func TestFillsMissingProperties(t *testing.T) {
	t.Parallel()
	d := New(
		WithProperty("VALUE_FORMAT", nodes.NewStringLiteral("JSON")),
		WithProperty("PARTITIONS", nodes.NewIntegerLiteral(4)),
	)
	out, err := d.TransformCreateTableAsSelect(ctas(t, "TOTALS", testutil.Props(t, "KAFKA_TOPIC", "totals")))
	require.NoError(t, err)

	assert.Equal(t, []string{"KAFKA_TOPIC", "VALUE_FORMAT", "PARTITIONS"}, out.Properties().Keys())
	testutil.AssertSQL(t, visitors.NewKSQLVisitor(), out,
		"CREATE TABLE TOTALS WITH (KAFKA_TOPIC='totals', VALUE_FORMAT='JSON', PARTITIONS=4) AS SELECT * FROM `orders` WHERE `amount` > 10")
}

func TestNeverOverridesUserProperties(t *testing.T) {
	t.Parallel()
	d := New(WithProperty("VALUE_FORMAT", nodes.NewStringLiteral("JSON")))
	in := ctas(t, "TOTALS", testutil.Props(t, "VALUE_FORMAT", "AVRO"))
	out, err := d.TransformCreateTableAsSelect(in)
	require.NoError(t, err)
	assert.Same(t, in, out)
}

func TestTopicFromSinkName(t *testing.T) {
	t.Parallel()
	d := New(WithTopicFromName())
	out, err := d.TransformCreateTableAsSelect(ctas(t, "ANALYTICS.TOTALS", nodes.Properties{}))
	require.NoError(t, err)

	topic, ok := out.Properties().Get(TopicProperty)
	require.True(t, ok)
	assert.Equal(t, "'TOTALS'", topic.String())
	assert.True(t, out.Sink().Properties().Equal(out.Properties()))
}

func TestExplicitTopicDefaultWinsOverName(t *testing.T) {
	t.Parallel()
	d := New(WithTopicFromName(), WithProperty(TopicProperty, nodes.NewStringLiteral("shared")))
	out, err := d.TransformCreateTableAsSelect(ctas(t, "TOTALS", nodes.Properties{}))
	require.NoError(t, err)
	topic, _ := out.Properties().Get(TopicProperty)
	assert.Equal(t, "'shared'", topic.String())
	assert.Equal(t, []string{TopicProperty}, d.Keys())
}

func TestLaterOptionReplacesValue(t *testing.T) {
	t.Parallel()
	d := New(
		WithProperty("A", nodes.NewIntegerLiteral(1)),
		WithProperty("B", nodes.NewIntegerLiteral(2)),
		WithProperty("A", nodes.NewIntegerLiteral(3)),
	)
	assert.Equal(t, []string{"A", "B"}, d.Keys())
	out, err := d.TransformCreateTableAsSelect(ctas(t, "T", nodes.Properties{}))
	require.NoError(t, err)
	a, _ := out.Properties().Get("A")
	assert.Equal(t, "3", a.String())
}

func TestFillsStreams(t *testing.T) {
	t.Parallel()
	in, err := nodes.NewCreateStreamAsSelect(nodes.MustQualifiedName("CLICKS"), testutil.OrdersQuery(t, 1), false,
		nodes.Properties{}, nodes.Column("id"))
	require.NoError(t, err)

	out, err := New(WithTopicFromName()).TransformCreateStreamAsSelect(in)
	require.NoError(t, err)
	topic, ok := out.Properties().Get(TopicProperty)
	require.True(t, ok)
	assert.Equal(t, "'CLICKS'", topic.String())
	_, ok = out.PartitionBy()
	assert.True(t, ok)
}

func TestLeavesOtherStatementsAlone(t *testing.T) {
	t.Parallel()
	drop, err := nodes.NewDropTable(nodes.MustQualifiedName("T"), false, false)
	require.NoError(t, err)
	out, err := plugins.Apply(drop, New(WithTopicFromName()))
	require.NoError(t, err)
	assert.Same(t, drop, out)
}

// --- Config files ---

func TestLoadKeepsFileOrderAndTypes(t *testing.T) {
	t.Parallel()
	d, err := Load(strings.NewReader(`
topic_from_name: true
properties:
  VALUE_FORMAT: JSON
  PARTITIONS: 4
  RETENTION_RATIO: 0.5
  WRAP_SINGLE_VALUE: false
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"VALUE_FORMAT", "PARTITIONS", "RETENTION_RATIO", "WRAP_SINGLE_VALUE", TopicProperty}, d.Keys())

	out, err := d.TransformCreateTableAsSelect(ctas(t, "T", nodes.Properties{}))
	require.NoError(t, err)
	testutil.AssertSQL(t, visitors.NewKSQLVisitor(), out,
		"CREATE TABLE T WITH (VALUE_FORMAT='JSON', PARTITIONS=4, RETENTION_RATIO=0.5, WRAP_SINGLE_VALUE=FALSE, KAFKA_TOPIC='T')"+
			" AS SELECT * FROM `orders` WHERE `amount` > 10")
}

func TestLoadEmptyDocument(t *testing.T) {
	t.Parallel()
	d, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, d.Keys())
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"unknown field":   "colour: blue\n",
		"list properties": "properties:\n  - A\n",
		"nested value":    "properties:\n  A:\n    B: 1\n",
		"null value":      "properties:\n  A: ~\n",
		"duplicate key":   "properties:\n  A: 1\n  A: 2\n",
	}
	for label, doc := range cases {
		doc := doc
		t.Run(label, func(t *testing.T) {
			t.Parallel()
			_, err := Load(strings.NewReader(doc))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("properties:\n  VALUE_FORMAT: AVRO\n"), 0o600))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"VALUE_FORMAT"}, d.Keys())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
