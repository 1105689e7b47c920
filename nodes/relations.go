package nodes

import "fmt"

// Table is a named stream or table used as a source.
type Table struct {
	base
	name QualifiedName
}

func NewTable(name QualifiedName, opts ...Option) (*Table, error) {
	if name.IsZero() {
		return nil, fmt.Errorf("table: %w", ErrMissingName)
	}
	return &Table{base: newBase(opts), name: name}, nil
}

func (n *Table) Name() QualifiedName { return n.name }
func (n *Table) relationNode()       {}
func (n *Table) accept(d dispatcher) { d.table(n) }

func (n *Table) Equal(other Node) bool {
	o, ok := other.(*Table)
	return ok && o != nil && n.name.Equal(o.name)
}

func (n *Table) Hash() uint64   { return newHasher("Table").u64(n.name.Hash()).sum() }
func (n *Table) String() string { return fmt.Sprintf("Table{name=%s}", n.name) }

// AliasedRelation renames a relation for the rest of the query.
type AliasedRelation struct {
	base
	relation Relation
	alias    string
}

func NewAliasedRelation(relation Relation, alias string, opts ...Option) (*AliasedRelation, error) {
	if relation == nil {
		return nil, fmt.Errorf("alias %s: %w", alias, ErrMissingRelation)
	}
	if alias == "" {
		return nil, ErrMissingAlias
	}
	return &AliasedRelation{base: newBase(opts), relation: relation, alias: alias}, nil
}

func (n *AliasedRelation) Relation() Relation  { return n.relation }
func (n *AliasedRelation) Alias() string       { return n.alias }
func (n *AliasedRelation) relationNode()       {}
func (n *AliasedRelation) accept(d dispatcher) { d.aliasedRelation(n) }

func (n *AliasedRelation) Equal(other Node) bool {
	o, ok := other.(*AliasedRelation)
	return ok && o != nil && n.alias == o.alias && n.relation.Equal(o.relation)
}

func (n *AliasedRelation) Hash() uint64 {
	return newHasher("AliasedRelation").node(n.relation).str(n.alias).sum()
}

func (n *AliasedRelation) String() string {
	return fmt.Sprintf("AliasedRelation{relation=%s, alias=%s}", n.relation, n.alias)
}

// JoinType is the kind of a Join.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	OuterJoin
)

func (t JoinType) String() string {
	switch t {
	case LeftJoin:
		return "LEFT"
	case OuterJoin:
		return "FULL OUTER"
	default:
		return "INNER"
	}
}

// Join combines two relations. Criteria is optional.
type Join struct {
	base
	joinType    JoinType
	left, right Relation
	criteria    Expression
}

func NewJoin(joinType JoinType, left, right Relation, criteria Expression, opts ...Option) (*Join, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("%s join: %w", joinType, ErrMissingRelation)
	}
	return &Join{base: newBase(opts), joinType: joinType, left: left, right: right, criteria: criteria}, nil
}

func (n *Join) Type() JoinType  { return n.joinType }
func (n *Join) Left() Relation  { return n.left }
func (n *Join) Right() Relation { return n.right }

// Criteria returns the ON condition, if any.
func (n *Join) Criteria() (Expression, bool) { return n.criteria, n.criteria != nil }

func (n *Join) relationNode()       {}
func (n *Join) accept(d dispatcher) { d.join(n) }

func (n *Join) Equal(other Node) bool {
	o, ok := other.(*Join)
	return ok && o != nil &&
		n.joinType == o.joinType &&
		n.left.Equal(o.left) &&
		n.right.Equal(o.right) &&
		equalOptional(n.criteria, o.criteria)
}

func (n *Join) Hash() uint64 {
	return newHasher("Join").u64(uint64(n.joinType)).node(n.left).node(n.right).node(n.criteria).sum()
}

func (n *Join) String() string {
	if n.criteria == nil {
		return fmt.Sprintf("Join{type=%s, left=%s, right=%s}", n.joinType, n.left, n.right)
	}
	return fmt.Sprintf("Join{type=%s, left=%s, right=%s, criteria=%s}", n.joinType, n.left, n.right, n.criteria)
}
