// Package softdelete provides a Transformer that filters soft-deleted rows
// out of every query by requiring a marker column to be NULL.
//
// By default it requires "DELETED_AT" to be NULL for every source
// referenced in the FROM and JOIN clauses. Both the column name and the
// set of sources can be customised via options.
//
// # Basic usage
//
//	sd := softdelete.New()
//	ctas := managers.NewCreateTableAsSelectManager(name, query).Use(sd)
//	// ... AS SELECT * FROM ORDERS WHERE NOT (ORDERS.DELETED_AT IS DISTINCT FROM NULL)
//
// # Restrict to specific sources
//
//	sd := softdelete.New(softdelete.WithSources("ORDERS"))
//
// # Per-source columns
//
//	sd := softdelete.New(
//	    softdelete.WithSourceColumn("ORDERS", "DELETED_AT"),
//	    softdelete.WithSourceColumn("USERS", "REMOVED_AT"),
//	)
//
// # REPL usage
//
//	ksqltree> plugin softdelete
//	ksqltree> plugin softdelete REMOVED_AT on ORDERS USERS
//	ksqltree> plugin off softdelete
package softdelete

import (
	"fmt"

	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
)

// SoftDelete is a Transformer that appends a NULL check on a soft-delete
// column for every referenced source (or a configured subset).
type SoftDelete struct {
	plugins.BaseTransformer
	Column  string
	Columns map[string]string // per-source column overrides (source name → column name)
	sources map[string]bool   // nil means apply to all sources
}

// Option configures a SoftDelete transformer.
type Option func(*SoftDelete)

// WithColumn sets the soft-delete column name. Default is "DELETED_AT".
func WithColumn(name string) Option {
	return func(sd *SoftDelete) { sd.Column = name }
}

// WithSources restricts the plugin to only the named sources.
func WithSources(names ...string) Option {
	return func(sd *SoftDelete) {
		sd.sources = make(map[string]bool, len(names))
		for _, n := range names {
			sd.sources[n] = true
		}
	}
}

// WithSourceColumn sets a per-source column override. The source is
// added to the allow list, restricting the plugin's scope.
func WithSourceColumn(source, column string) Option {
	return func(sd *SoftDelete) {
		if sd.Columns == nil {
			sd.Columns = make(map[string]string)
		}
		sd.Columns[source] = column
		if sd.sources == nil {
			sd.sources = make(map[string]bool)
		}
		sd.sources[source] = true
	}
}

// New creates a SoftDelete transformer with the given options.
func New(opts ...Option) *SoftDelete {
	sd := &SoftDelete{Column: "DELETED_AT"}
	for _, o := range opts {
		o(sd)
	}
	return sd
}

// TransformQuery ANDs "NOT (source.column IS DISTINCT FROM NULL)" onto the
// WHERE clause for each matching source.
func (sd *SoftDelete) TransformQuery(q *nodes.Query) (*nodes.Query, error) {
	where, _ := q.Where()
	changed := false
	for _, ref := range plugins.CollectSources(q) {
		name := ref.Name.String()
		if !sd.appliesTo(name) {
			continue
		}
		cond, err := sd.isNull(ref.Qualifier, sd.columnFor(name))
		if err != nil {
			return nil, err
		}
		if where == nil {
			where = cond
		} else if where, err = nodes.NewLogicalBinaryExpression(nodes.OpAnd, where, cond); err != nil {
			return nil, err
		}
		changed = true
	}
	if !changed {
		return q, nil
	}
	return q.WithWhere(where), nil
}

func (sd *SoftDelete) isNull(qualifier nodes.QualifiedName, column string) (nodes.Expression, error) {
	name, err := nodes.NewQualifiedName(append(qualifier.Parts(), column)...)
	if err != nil {
		return nil, fmt.Errorf("softdelete: %w", err)
	}
	col, err := nodes.NewColumnReference(name)
	if err != nil {
		return nil, err
	}
	distinct, err := nodes.NewComparisonExpression(nodes.OpIsDistinctFrom, col, nodes.NewNullLiteral())
	if err != nil {
		return nil, err
	}
	not, err := nodes.NewNotExpression(distinct)
	if err != nil {
		return nil, err
	}
	return not, nil
}

func (sd *SoftDelete) appliesTo(source string) bool {
	if sd.sources == nil {
		return true
	}
	return sd.sources[source]
}

// columnFor returns the column name to use for the given source.
// It checks Columns for a per-source override, falling back to Column.
func (sd *SoftDelete) columnFor(source string) string {
	if col, ok := sd.Columns[source]; ok {
		return col
	}
	return sd.Column
}
