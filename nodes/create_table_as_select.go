package nodes

import "fmt"

// CreateAsSelect is implemented by statements that create a sink and
// populate it from a query.
type CreateAsSelect interface {
	Statement
	Name() QualifiedName
	Query() *Query
	NotExists() bool
	Properties() Properties
	// Sink derives the output descriptor from the statement's own fields.
	Sink() Sink
	// PartitionBy returns the repartitioning expression, when the variant
	// supports one and it was given.
	PartitionBy() (Expression, bool)
}

// CreateTableAsSelect is
//
//	CREATE TABLE [IF NOT EXISTS] name [WITH (props)] AS query
type CreateTableAsSelect struct {
	base
	name       QualifiedName
	query      *Query
	notExists  bool
	properties Properties
}

var _ CreateAsSelect = (*CreateTableAsSelect)(nil)

// NewCreateTableAsSelect builds the statement. notExists requests
// IF NOT EXISTS semantics. Pass At(loc) to record where it was parsed.
func NewCreateTableAsSelect(name QualifiedName, query *Query, notExists bool, properties Properties, opts ...Option) (*CreateTableAsSelect, error) {
	if err := checkCreateAsSelect("create table as select", name, query); err != nil {
		return nil, err
	}
	return &CreateTableAsSelect{
		base:       newBase(opts),
		name:       name,
		query:      query,
		notExists:  notExists,
		properties: properties,
	}, nil
}

// checkCreateAsSelect validates the required fields. Properties needs no
// check: a bag can only be built through NewProperties, which rejects
// missing values.
func checkCreateAsSelect(what string, name QualifiedName, query *Query) error {
	if name.IsZero() {
		return fmt.Errorf("%s: %w", what, ErrMissingName)
	}
	if query == nil {
		return fmt.Errorf("%s %s: %w", what, name, ErrMissingQuery)
	}
	return nil
}

func (n *CreateTableAsSelect) Name() QualifiedName    { return n.name }
func (n *CreateTableAsSelect) Query() *Query          { return n.query }
func (n *CreateTableAsSelect) NotExists() bool        { return n.notExists }
func (n *CreateTableAsSelect) Properties() Properties { return n.properties }

func (n *CreateTableAsSelect) Sink() Sink {
	return NewSink(n.name.Suffix(), true, n.properties)
}

// PartitionBy is always absent: tables are keyed by their GROUP BY.
func (n *CreateTableAsSelect) PartitionBy() (Expression, bool) { return nil, false }

// WithQuery returns a copy of n reading from query. The location is kept.
func (n *CreateTableAsSelect) WithQuery(query *Query) (*CreateTableAsSelect, error) {
	if query == nil {
		return nil, fmt.Errorf("create table as select %s: %w", n.name, ErrMissingQuery)
	}
	cp := *n
	cp.query = query
	return &cp, nil
}

// WithProperties returns a copy of n carrying properties. The location is kept.
func (n *CreateTableAsSelect) WithProperties(properties Properties) *CreateTableAsSelect {
	cp := *n
	cp.properties = properties
	return &cp
}

func (n *CreateTableAsSelect) statementNode()      {}
func (n *CreateTableAsSelect) accept(d dispatcher) { d.createTableAsSelect(n) }

func (n *CreateTableAsSelect) Equal(other Node) bool {
	o, ok := other.(*CreateTableAsSelect)
	if !ok || o == nil {
		return false
	}
	if n == o {
		return true
	}
	return n.name.Equal(o.name) &&
		n.query.Equal(o.query) &&
		n.notExists == o.notExists &&
		n.properties.Equal(o.properties)
}

func (n *CreateTableAsSelect) Hash() uint64 {
	return newHasher("CreateTableAsSelect").
		u64(n.name.Hash()).
		node(n.query).
		boolean(n.notExists).
		u64(n.properties.Hash()).
		sum()
}

func (n *CreateTableAsSelect) String() string {
	return fmt.Sprintf("CreateTableAsSelect{name=%s, query=%s, notExists=%t, properties=%s}",
		n.name, n.query, n.notExists, n.properties)
}
