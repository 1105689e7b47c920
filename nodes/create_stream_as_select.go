package nodes

import "fmt"

// CreateStreamAsSelect is
//
//	CREATE STREAM [IF NOT EXISTS] name [WITH (props)] AS query [PARTITION BY expr]
type CreateStreamAsSelect struct {
	base
	name        QualifiedName
	query       *Query
	notExists   bool
	properties  Properties
	partitionBy Expression
}

var _ CreateAsSelect = (*CreateStreamAsSelect)(nil)

// NewCreateStreamAsSelect builds the statement. partitionBy may be nil.
func NewCreateStreamAsSelect(name QualifiedName, query *Query, notExists bool, properties Properties, partitionBy Expression, opts ...Option) (*CreateStreamAsSelect, error) {
	if err := checkCreateAsSelect("create stream as select", name, query); err != nil {
		return nil, err
	}
	return &CreateStreamAsSelect{
		base:        newBase(opts),
		name:        name,
		query:       query,
		notExists:   notExists,
		properties:  properties,
		partitionBy: partitionBy,
	}, nil
}

func (n *CreateStreamAsSelect) Name() QualifiedName    { return n.name }
func (n *CreateStreamAsSelect) Query() *Query          { return n.query }
func (n *CreateStreamAsSelect) NotExists() bool        { return n.notExists }
func (n *CreateStreamAsSelect) Properties() Properties { return n.properties }

func (n *CreateStreamAsSelect) Sink() Sink {
	return NewSink(n.name.Suffix(), false, n.properties)
}

func (n *CreateStreamAsSelect) PartitionBy() (Expression, bool) {
	return n.partitionBy, n.partitionBy != nil
}

// WithQuery returns a copy of n reading from query. The location is kept.
func (n *CreateStreamAsSelect) WithQuery(query *Query) (*CreateStreamAsSelect, error) {
	if query == nil {
		return nil, fmt.Errorf("create stream as select %s: %w", n.name, ErrMissingQuery)
	}
	cp := *n
	cp.query = query
	return &cp, nil
}

// WithProperties returns a copy of n carrying properties. The location is kept.
func (n *CreateStreamAsSelect) WithProperties(properties Properties) *CreateStreamAsSelect {
	cp := *n
	cp.properties = properties
	return &cp
}

func (n *CreateStreamAsSelect) statementNode()      {}
func (n *CreateStreamAsSelect) accept(d dispatcher) { d.createStreamAsSelect(n) }

func (n *CreateStreamAsSelect) Equal(other Node) bool {
	o, ok := other.(*CreateStreamAsSelect)
	if !ok || o == nil {
		return false
	}
	return n.name.Equal(o.name) &&
		n.query.Equal(o.query) &&
		n.notExists == o.notExists &&
		n.properties.Equal(o.properties) &&
		equalOptional(n.partitionBy, o.partitionBy)
}

func (n *CreateStreamAsSelect) Hash() uint64 {
	return newHasher("CreateStreamAsSelect").
		u64(n.name.Hash()).
		node(n.query).
		boolean(n.notExists).
		u64(n.properties.Hash()).
		node(n.partitionBy).
		sum()
}

func (n *CreateStreamAsSelect) String() string {
	s := fmt.Sprintf("CreateStreamAsSelect{name=%s, query=%s, notExists=%t, properties=%s",
		n.name, n.query, n.notExists, n.properties)
	if n.partitionBy != nil {
		s += fmt.Sprintf(", partitionBy=%s", n.partitionBy)
	}
	return s + "}"
}
