package managers

import (
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

// InsertManager provides a fluent API for building INSERT INTO ... SELECT
// statements that feed an existing stream.
type InsertManager struct {
	treeManager
	target      nodes.QualifiedName
	query       *nodes.Query
	partitionBy nodes.Expression
	opts        []nodes.Option
}

// NewInsertManager creates an InsertManager targeting the dotted name.
func NewInsertManager(target string, query *nodes.Query) *InsertManager {
	m := &InsertManager{query: query}
	qn, err := nodes.ParseQualifiedName(target)
	if err != nil {
		m.fail(err)
	}
	m.target = qn
	return m
}

// PartitionBy sets the repartitioning expression.
func (m *InsertManager) PartitionBy(expr nodes.Expression) *InsertManager {
	m.partitionBy = expr
	return m
}

// At records where the statement was parsed.
func (m *InsertManager) At(loc nodes.NodeLocation) *InsertManager {
	m.opts = append(m.opts, nodes.At(loc))
	return m
}

// Use registers transformer plugins applied by Build.
func (m *InsertManager) Use(ts ...plugins.Transformer) *InsertManager {
	m.addTransformer(ts...)
	return m
}

// Build assembles the statement and runs the transformer pipeline over it.
func (m *InsertManager) Build() (*nodes.InsertInto, error) {
	if m.err != nil {
		return nil, m.err
	}
	ins, err := nodes.NewInsertInto(m.target, m.query, m.partitionBy, m.opts...)
	if err != nil {
		return nil, err
	}
	out, err := m.apply(ins)
	if err != nil {
		return nil, err
	}
	return out.(*nodes.InsertInto), nil
}

// ToSQL builds the statement and renders it with v.
func (m *InsertManager) ToSQL(v visitors.Formatter) (string, []any, error) {
	ins, err := m.Build()
	if err != nil {
		return "", nil, err
	}
	return toSQL(v, ins)
}
