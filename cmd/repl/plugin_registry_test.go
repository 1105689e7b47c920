package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/internal/testutil"
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/plugins/defaults"
	"github.com/bawdo/ksqltree/visitors"
)

func defaultsEntry(name string, props ...nodes.Property) pluginEntry {
	var opts []defaults.Option
	for _, p := range props {
		opts = append(opts, defaults.WithProperty(p.Key, p.Value))
	}
	return pluginEntry{
		name:    name,
		factory: func() plugins.Transformer { return defaults.New(opts...) },
		status:  func() string { return name },
		color:   "#6699CC",
	}
}

func TestRegistryKeepsFirstEnableOrder(t *testing.T) {
	t.Parallel()
	var r pluginRegistry
	r.enable(defaultsEntry("a"))
	r.enable(defaultsEntry("b"))
	r.enable(pluginEntry{name: "a", factory: func() plugins.Transformer { return plugins.BaseTransformer{} }, status: func() string { return "again" }})

	assert.Equal(t, []string{"a", "b"}, r.enabledNames())
	entry, ok := r.lookup("a")
	require.True(t, ok)
	assert.Equal(t, "again", entry.status())
	assert.Len(t, r.transformers(), 2)
}

func TestRegistryDisableRunsHook(t *testing.T) {
	t.Parallel()
	var r pluginRegistry
	offs := 0
	entry := defaultsEntry("a")
	entry.off = func() { offs++ }
	r.enable(entry)
	r.enable(defaultsEntry("b"))

	assert.False(t, r.disable("missing"))
	assert.True(t, r.disable("a"))
	assert.Equal(t, 1, offs)
	assert.Equal(t, []string{"b"}, r.enabledNames())

	r.enable(entry)
	r.disableAll()
	assert.Equal(t, 2, offs)
	assert.Empty(t, r.enabledNames())
}

func TestRegistryTraceAttributesProperties(t *testing.T) {
	t.Parallel()
	var r pluginRegistry
	r.enable(defaultsEntry("format", nodes.Property{Key: "VALUE_FORMAT", Value: nodes.NewStringLiteral("JSON")}))
	r.enable(defaultsEntry("partitions", nodes.Property{Key: "PARTITIONS", Value: nodes.NewIntegerLiteral(3)}))

	ctas, err := nodes.NewCreateTableAsSelect(nodes.MustQualifiedName("TOTALS"), testutil.OrdersQuery(t, 100), false,
		testutil.Props(t, "KAFKA_TOPIC", "totals"))
	require.NoError(t, err)

	out, prov, err := r.trace(ctas)
	require.NoError(t, err)
	assert.Equal(t, []string{"KAFKA_TOPIC", "VALUE_FORMAT", "PARTITIONS"}, propertyKeys(out).Keys())

	dot, err := visitors.ToDotString(out, prov)
	require.NoError(t, err)
	assert.Contains(t, dot, `label="format";`)
	assert.Contains(t, dot, `label="partitions";`)
}

func TestPropertyKeysIgnoresQueries(t *testing.T) {
	t.Parallel()
	assert.Zero(t, propertyKeys(testutil.OrdersQuery(t, 1)).Len())
}
