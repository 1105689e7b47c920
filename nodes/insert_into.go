package nodes

import "fmt"

// InsertInto is
//
//	INSERT INTO target query [PARTITION BY expr]
type InsertInto struct {
	base
	target      QualifiedName
	query       *Query
	partitionBy Expression
}

func NewInsertInto(target QualifiedName, query *Query, partitionBy Expression, opts ...Option) (*InsertInto, error) {
	if target.IsZero() {
		return nil, fmt.Errorf("insert into: %w", ErrMissingName)
	}
	if query == nil {
		return nil, fmt.Errorf("insert into %s: %w", target, ErrMissingQuery)
	}
	return &InsertInto{base: newBase(opts), target: target, query: query, partitionBy: partitionBy}, nil
}

func (n *InsertInto) Target() QualifiedName { return n.target }
func (n *InsertInto) Query() *Query         { return n.query }

func (n *InsertInto) PartitionBy() (Expression, bool) {
	return n.partitionBy, n.partitionBy != nil
}

// WithQuery returns a copy of n reading from query. The location is kept.
func (n *InsertInto) WithQuery(query *Query) (*InsertInto, error) {
	if query == nil {
		return nil, fmt.Errorf("insert into %s: %w", n.target, ErrMissingQuery)
	}
	cp := *n
	cp.query = query
	return &cp, nil
}

func (n *InsertInto) statementNode()      {}
func (n *InsertInto) accept(d dispatcher) { d.insertInto(n) }

func (n *InsertInto) Equal(other Node) bool {
	o, ok := other.(*InsertInto)
	return ok && o != nil &&
		n.target.Equal(o.target) &&
		n.query.Equal(o.query) &&
		equalOptional(n.partitionBy, o.partitionBy)
}

func (n *InsertInto) Hash() uint64 {
	return newHasher("InsertInto").u64(n.target.Hash()).node(n.query).node(n.partitionBy).sum()
}

func (n *InsertInto) String() string {
	if n.partitionBy == nil {
		return fmt.Sprintf("InsertInto{target=%s, query=%s}", n.target, n.query)
	}
	return fmt.Sprintf("InsertInto{target=%s, query=%s, partitionBy=%s}", n.target, n.query, n.partitionBy)
}
