package nodes

import (
	"fmt"
	"strings"
)

// Select is the projection list of a query.
type Select struct {
	base
	distinct bool
	items    []SelectItem
}

func NewSelect(distinct bool, items []SelectItem, opts ...Option) (*Select, error) {
	if len(items) == 0 {
		return nil, ErrEmptySelect
	}
	cp := make([]SelectItem, len(items))
	for i, it := range items {
		if it == nil {
			return nil, fmt.Errorf("select item %d: %w", i, ErrMissingExpression)
		}
		cp[i] = it
	}
	return &Select{base: newBase(opts), distinct: distinct, items: cp}, nil
}

func (n *Select) Distinct() bool { return n.distinct }

// Items returns a copy of the select list.
func (n *Select) Items() []SelectItem {
	cp := make([]SelectItem, len(n.items))
	copy(cp, n.items)
	return cp
}

func (n *Select) accept(d dispatcher) { d.selectNode(n) }

func (n *Select) Equal(other Node) bool {
	o, ok := other.(*Select)
	return ok && o != nil && n.distinct == o.distinct && equalSlices(n.items, o.items)
}

func (n *Select) Hash() uint64 {
	return hashSlice(newHasher("Select").boolean(n.distinct), n.items).sum()
}

func (n *Select) String() string {
	items := make([]string, len(n.items))
	for i, it := range n.items {
		items[i] = it.String()
	}
	return fmt.Sprintf("Select{distinct=%t, items=[%s]}", n.distinct, strings.Join(items, ", "))
}

// SingleColumn is one projected expression with an optional alias.
type SingleColumn struct {
	base
	expr  Expression
	alias string
}

func NewSingleColumn(expr Expression, alias string, opts ...Option) (*SingleColumn, error) {
	if expr == nil {
		return nil, fmt.Errorf("select column: %w", ErrMissingExpression)
	}
	return &SingleColumn{base: newBase(opts), expr: expr, alias: alias}, nil
}

func (n *SingleColumn) Expression() Expression { return n.expr }

// Alias returns the AS name, if one was given.
func (n *SingleColumn) Alias() (string, bool) { return n.alias, n.alias != "" }

func (n *SingleColumn) selectItemNode()     {}
func (n *SingleColumn) accept(d dispatcher) { d.singleColumn(n) }

func (n *SingleColumn) Equal(other Node) bool {
	o, ok := other.(*SingleColumn)
	return ok && o != nil && n.alias == o.alias && n.expr.Equal(o.expr)
}

func (n *SingleColumn) Hash() uint64 {
	return newHasher("SingleColumn").node(n.expr).str(n.alias).sum()
}

func (n *SingleColumn) String() string {
	if n.alias == "" {
		return n.expr.String()
	}
	return n.expr.String() + " AS " + n.alias
}

// AllColumns is "*" or "prefix.*".
type AllColumns struct {
	base
	prefix QualifiedName
}

// NewAllColumns builds a star. Pass the zero QualifiedName for a bare "*".
func NewAllColumns(prefix QualifiedName, opts ...Option) *AllColumns {
	return &AllColumns{base: newBase(opts), prefix: prefix}
}

func (n *AllColumns) Prefix() (QualifiedName, bool) { return n.prefix, !n.prefix.IsZero() }
func (n *AllColumns) selectItemNode()               {}
func (n *AllColumns) accept(d dispatcher)           { d.allColumns(n) }

func (n *AllColumns) Equal(other Node) bool {
	o, ok := other.(*AllColumns)
	return ok && o != nil && n.prefix.Equal(o.prefix)
}

func (n *AllColumns) Hash() uint64 { return newHasher("AllColumns").u64(n.prefix.Hash()).sum() }

func (n *AllColumns) String() string {
	if n.prefix.IsZero() {
		return "*"
	}
	return n.prefix.String() + ".*"
}

// QueryClauses holds the optional clauses of a Query.
type QueryClauses struct {
	Where   Expression
	GroupBy []Expression
	Having  Expression
	Limit   *int
}

// Query is a SELECT. A query is itself a statement.
type Query struct {
	base
	sel      *Select
	from     Relation
	where    Expression
	groupBy  []Expression
	having   Expression
	limit    int
	hasLimit bool
}

func NewQuery(sel *Select, from Relation, clauses QueryClauses, opts ...Option) (*Query, error) {
	if sel == nil {
		return nil, fmt.Errorf("query: %w", ErrEmptySelect)
	}
	if from == nil {
		return nil, fmt.Errorf("query: %w", ErrMissingRelation)
	}
	q := &Query{base: newBase(opts), sel: sel, from: from, where: clauses.Where, having: clauses.Having}
	if len(clauses.GroupBy) > 0 {
		q.groupBy = make([]Expression, len(clauses.GroupBy))
		for i, g := range clauses.GroupBy {
			if g == nil {
				return nil, fmt.Errorf("group by %d: %w", i, ErrMissingExpression)
			}
			q.groupBy[i] = g
		}
	}
	if clauses.Limit != nil {
		if *clauses.Limit < 0 {
			return nil, fmt.Errorf("limit %d: %w", *clauses.Limit, ErrInvalidLimit)
		}
		q.limit, q.hasLimit = *clauses.Limit, true
	}
	return q, nil
}

func (n *Query) Select() *Select { return n.sel }
func (n *Query) From() Relation  { return n.from }

func (n *Query) Where() (Expression, bool)  { return n.where, n.where != nil }
func (n *Query) Having() (Expression, bool) { return n.having, n.having != nil }
func (n *Query) Limit() (int, bool)         { return n.limit, n.hasLimit }

// WithWhere returns a copy of n filtered by where; nil removes the filter.
// The location is kept.
func (n *Query) WithWhere(where Expression) *Query {
	cp := *n
	cp.where = where
	return &cp
}

// WithSelect returns a copy of n projecting sel. The location is kept.
func (n *Query) WithSelect(sel *Select) (*Query, error) {
	if sel == nil {
		return nil, fmt.Errorf("query: %w", ErrEmptySelect)
	}
	cp := *n
	cp.sel = sel
	return &cp, nil
}

// GroupBy returns a copy of the grouping expressions.
func (n *Query) GroupBy() []Expression {
	cp := make([]Expression, len(n.groupBy))
	copy(cp, n.groupBy)
	return cp
}

func (n *Query) statementNode()      {}
func (n *Query) accept(d dispatcher) { d.query(n) }

func (n *Query) Equal(other Node) bool {
	o, ok := other.(*Query)
	if !ok || o == nil {
		return false
	}
	if n == o {
		return true
	}
	return n.sel.Equal(o.sel) &&
		n.from.Equal(o.from) &&
		equalOptional(n.where, o.where) &&
		equalSlices(n.groupBy, o.groupBy) &&
		equalOptional(n.having, o.having) &&
		n.hasLimit == o.hasLimit && n.limit == o.limit
}

func (n *Query) Hash() uint64 {
	h := newHasher("Query").node(n.sel).node(n.from).node(n.where)
	hashSlice(h, n.groupBy)
	return h.node(n.having).boolean(n.hasLimit).u64(uint64(n.limit)).sum()
}

func (n *Query) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query{select=%s, from=%s", n.sel, n.from)
	if n.where != nil {
		fmt.Fprintf(&b, ", where=%s", n.where)
	}
	if len(n.groupBy) > 0 {
		parts := make([]string, len(n.groupBy))
		for i, g := range n.groupBy {
			parts[i] = g.String()
		}
		fmt.Fprintf(&b, ", groupBy=[%s]", strings.Join(parts, ", "))
	}
	if n.having != nil {
		fmt.Fprintf(&b, ", having=%s", n.having)
	}
	if n.hasLimit {
		fmt.Fprintf(&b, ", limit=%d", n.limit)
	}
	b.WriteByte('}')
	return b.String()
}
