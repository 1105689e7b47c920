package managers

import (
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

// treeManager is the shared base for all manager types. It holds the
// transformer pipeline and the first error recorded while chaining.
type treeManager struct {
	transformers []plugins.Transformer
	err          error
}

// addTransformer appends transformer plugins to the pipeline.
func (tm *treeManager) addTransformer(ts ...plugins.Transformer) {
	tm.transformers = append(tm.transformers, ts...)
}

// Transformers returns the registered transformer pipeline.
func (tm *treeManager) Transformers() []plugins.Transformer {
	return tm.transformers
}

// fail records err unless an earlier error is already pending. Builder
// methods keep chaining after a failure; Build reports the first error.
func (tm *treeManager) fail(err error) {
	if tm.err == nil {
		tm.err = err
	}
}

// Err returns the first error recorded while building, if any.
func (tm *treeManager) Err() error { return tm.err }

func (tm *treeManager) apply(stmt nodes.Statement) (nodes.Statement, error) {
	return plugins.Apply(stmt, tm.transformers...)
}

// toSQL renders stmt and returns the SQL with the bind parameters the
// visitor collected.
func toSQL(v visitors.Formatter, stmt nodes.Statement) (string, []any, error) {
	sql, err := v.Format(stmt)
	if err != nil {
		return "", nil, err
	}
	return sql, v.Params(), nil
}

// and folds conditions into a left-deep AND chain.
func and(conds []nodes.Expression) (nodes.Expression, error) {
	var out nodes.Expression
	for _, c := range conds {
		if out == nil {
			out = c
			continue
		}
		next, err := nodes.NewLogicalBinaryExpression(nodes.OpAnd, out, c)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}
