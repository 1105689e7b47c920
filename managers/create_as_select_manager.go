package managers

import (
	"errors"
	"fmt"

	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

// ErrPartitionByTable is returned when PARTITION BY is requested for a
// table; tables are keyed by their GROUP BY.
var ErrPartitionByTable = errors.New("managers: PARTITION BY requires a stream")

// CreateAsSelectManager provides a fluent API for building CREATE TABLE AS
// SELECT and CREATE STREAM AS SELECT statements.
type CreateAsSelectManager struct {
	treeManager
	stream      bool
	name        nodes.QualifiedName
	query       *nodes.Query
	notExists   bool
	props       []nodes.Property
	partitionBy nodes.Expression
	opts        []nodes.Option
}

// NewCreateTableAsSelectManager starts a CREATE TABLE AS SELECT for the
// dotted sink name.
func NewCreateTableAsSelectManager(name string, query *nodes.Query) *CreateAsSelectManager {
	return newCreateAsSelectManager(false, name, query)
}

// NewCreateStreamAsSelectManager starts a CREATE STREAM AS SELECT for the
// dotted sink name.
func NewCreateStreamAsSelectManager(name string, query *nodes.Query) *CreateAsSelectManager {
	return newCreateAsSelectManager(true, name, query)
}

func newCreateAsSelectManager(stream bool, name string, query *nodes.Query) *CreateAsSelectManager {
	m := &CreateAsSelectManager{stream: stream, query: query}
	qn, err := nodes.ParseQualifiedName(name)
	if err != nil {
		m.fail(err)
	}
	m.name = qn
	return m
}

// IsStream reports whether the manager builds a stream.
func (m *CreateAsSelectManager) IsStream() bool { return m.stream }

// IfNotExists requests IF NOT EXISTS semantics.
func (m *CreateAsSelectManager) IfNotExists() *CreateAsSelectManager {
	m.notExists = true
	return m
}

// With sets a WITH property. Setting a key again replaces its value and
// keeps its position.
func (m *CreateAsSelectManager) With(key string, value nodes.Expression) *CreateAsSelectManager {
	for i, p := range m.props {
		if p.Key == key {
			m.props[i].Value = value
			return m
		}
	}
	m.props = append(m.props, nodes.Property{Key: key, Value: value})
	return m
}

// PartitionBy sets the repartitioning expression. Only streams accept it.
func (m *CreateAsSelectManager) PartitionBy(expr nodes.Expression) *CreateAsSelectManager {
	if !m.stream {
		m.fail(fmt.Errorf("%s: %w", m.name, ErrPartitionByTable))
		return m
	}
	m.partitionBy = expr
	return m
}

// At records where the statement was parsed.
func (m *CreateAsSelectManager) At(loc nodes.NodeLocation) *CreateAsSelectManager {
	m.opts = append(m.opts, nodes.At(loc))
	return m
}

// Use registers transformer plugins applied by Build.
func (m *CreateAsSelectManager) Use(ts ...plugins.Transformer) *CreateAsSelectManager {
	m.addTransformer(ts...)
	return m
}

// Build assembles the statement and runs the transformer pipeline over it.
// The result is a *nodes.CreateTableAsSelect or *nodes.CreateStreamAsSelect.
func (m *CreateAsSelectManager) Build() (nodes.Statement, error) {
	stmt, err := m.statement()
	if err != nil {
		return nil, err
	}
	return m.apply(stmt)
}

func (m *CreateAsSelectManager) statement() (nodes.Statement, error) {
	if m.err != nil {
		return nil, m.err
	}
	props, err := nodes.NewProperties(m.props...)
	if err != nil {
		return nil, err
	}
	if m.stream {
		csas, err := nodes.NewCreateStreamAsSelect(m.name, m.query, m.notExists, props, m.partitionBy, m.opts...)
		if err != nil {
			return nil, err
		}
		return csas, nil
	}
	ctas, err := nodes.NewCreateTableAsSelect(m.name, m.query, m.notExists, props, m.opts...)
	if err != nil {
		return nil, err
	}
	return ctas, nil
}

// ToSQL builds the statement and renders it with v.
func (m *CreateAsSelectManager) ToSQL(v visitors.Formatter) (string, []any, error) {
	stmt, err := m.Build()
	if err != nil {
		return "", nil, err
	}
	return toSQL(v, stmt)
}
