// Package managers provides fluent APIs for building ksqlDB statement ASTs.
package managers

import (
	"fmt"

	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

// QueryManager provides a fluent API for building SELECT queries. Nothing
// is validated until Build, which reports the first problem found.
type QueryManager struct {
	treeManager
	from     nodes.Relation
	items    []nodes.SelectItem
	distinct bool
	joins    []*pendingJoin
	wheres   []nodes.Expression
	groups   []nodes.Expression
	havings  []nodes.Expression
	limit    *int
	opts     []nodes.Option
}

type pendingJoin struct {
	right    nodes.Relation
	joinType nodes.JoinType
	on       nodes.Expression
}

// NewQueryManager creates a QueryManager reading from the given relation.
// If from is nil, the FROM clause is left unset.
func NewQueryManager(from nodes.Relation) *QueryManager {
	return &QueryManager{from: from}
}

// From sets or changes the FROM source.
func (m *QueryManager) From(rel nodes.Relation) *QueryManager {
	m.from = rel
	return m
}

// FromName sets the FROM source to the table or stream with the given
// dotted name, optionally aliased.
func (m *QueryManager) FromName(name string, alias ...string) *QueryManager {
	rel, err := relation(name, alias...)
	if err != nil {
		m.fail(err)
		return m
	}
	return m.From(rel)
}

// Select replaces the select list. An empty list selects every column.
func (m *QueryManager) Select(items ...nodes.SelectItem) *QueryManager {
	m.items = append([]nodes.SelectItem(nil), items...)
	return m
}

// Project appends an expression to the select list. An alias is optional.
func (m *QueryManager) Project(expr nodes.Expression, alias ...string) *QueryManager {
	as := ""
	if len(alias) > 0 {
		as = alias[0]
	}
	col, err := nodes.NewSingleColumn(expr, as)
	if err != nil {
		m.fail(err)
		return m
	}
	m.items = append(m.items, col)
	return m
}

// Distinct enables or disables the DISTINCT modifier on the SELECT clause.
func (m *QueryManager) Distinct(on ...bool) *QueryManager {
	m.distinct = len(on) == 0 || on[0]
	return m
}

// Where appends conditions to the WHERE clause. All conditions are
// combined with AND.
func (m *QueryManager) Where(conditions ...nodes.Expression) *QueryManager {
	m.wheres = append(m.wheres, conditions...)
	return m
}

// Join adds a join to the query and returns a JoinContext for specifying
// the ON condition. The default join type is InnerJoin. Joins nest to the
// left: each joins the result of everything before it.
func (m *QueryManager) Join(rel nodes.Relation, joinTypes ...nodes.JoinType) *JoinContext {
	jt := nodes.InnerJoin
	if len(joinTypes) > 0 {
		jt = joinTypes[0]
	}
	j := &pendingJoin{right: rel, joinType: jt}
	m.joins = append(m.joins, j)
	return &JoinContext{manager: m, join: j}
}

// LeftJoin is a convenience for Join with LeftJoin type.
func (m *QueryManager) LeftJoin(rel nodes.Relation) *JoinContext {
	return m.Join(rel, nodes.LeftJoin)
}

// GroupBy appends grouping expressions.
func (m *QueryManager) GroupBy(exprs ...nodes.Expression) *QueryManager {
	m.groups = append(m.groups, exprs...)
	return m
}

// Having appends conditions to the HAVING clause, combined with AND.
func (m *QueryManager) Having(conditions ...nodes.Expression) *QueryManager {
	m.havings = append(m.havings, conditions...)
	return m
}

// Limit sets the LIMIT value.
func (m *QueryManager) Limit(n int) *QueryManager {
	m.limit = &n
	return m
}

// At records where the query was parsed.
func (m *QueryManager) At(loc nodes.NodeLocation) *QueryManager {
	m.opts = append(m.opts, nodes.At(loc))
	return m
}

// Use registers transformer plugins applied by Build.
func (m *QueryManager) Use(ts ...plugins.Transformer) *QueryManager {
	m.addTransformer(ts...)
	return m
}

// Build assembles the query and runs the transformer pipeline over it.
func (m *QueryManager) Build() (*nodes.Query, error) {
	q, err := m.query()
	if err != nil {
		return nil, err
	}
	out, err := m.apply(q)
	if err != nil {
		return nil, err
	}
	return out.(*nodes.Query), nil
}

// query assembles the query without running transformers.
func (m *QueryManager) query() (*nodes.Query, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.from == nil {
		return nil, fmt.Errorf("query: %w", nodes.ErrMissingRelation)
	}
	items := m.items
	if len(items) == 0 {
		items = []nodes.SelectItem{nodes.NewAllColumns(nodes.QualifiedName{})}
	}
	sel, err := nodes.NewSelect(m.distinct, items)
	if err != nil {
		return nil, err
	}
	from := m.from
	for _, j := range m.joins {
		if from, err = nodes.NewJoin(j.joinType, from, j.right, j.on); err != nil {
			return nil, err
		}
	}
	where, err := and(m.wheres)
	if err != nil {
		return nil, err
	}
	having, err := and(m.havings)
	if err != nil {
		return nil, err
	}
	return nodes.NewQuery(sel, from, nodes.QueryClauses{
		Where:   where,
		GroupBy: m.groups,
		Having:  having,
		Limit:   m.limit,
	}, m.opts...)
}

// ToSQL builds the query and renders it with v. Parameters are returned
// when the visitor has parameterisation enabled.
func (m *QueryManager) ToSQL(v visitors.Formatter) (string, []any, error) {
	q, err := m.Build()
	if err != nil {
		return "", nil, err
	}
	return toSQL(v, q)
}

func relation(name string, alias ...string) (nodes.Relation, error) {
	qn, err := nodes.ParseQualifiedName(name)
	if err != nil {
		return nil, err
	}
	tbl, err := nodes.NewTable(qn)
	if err != nil {
		return nil, err
	}
	if len(alias) == 0 || alias[0] == "" {
		return tbl, nil
	}
	return nodes.NewAliasedRelation(tbl, alias[0])
}
