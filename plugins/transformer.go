// Package plugins defines the Transformer interface for AST middleware.
package plugins

import (
	"fmt"

	"github.com/bawdo/ksqltree/nodes"
)

// Transformer is the interface that AST transformation plugins implement.
// Plugins embed BaseTransformer and override only the methods they need.
// Transformers must not mutate their input; nodes are immutable and a
// changed statement is returned as a new value.
type Transformer interface {
	TransformQuery(q *nodes.Query) (*nodes.Query, error)
	TransformCreateTableAsSelect(n *nodes.CreateTableAsSelect) (*nodes.CreateTableAsSelect, error)
	TransformCreateStreamAsSelect(n *nodes.CreateStreamAsSelect) (*nodes.CreateStreamAsSelect, error)
	TransformInsertInto(n *nodes.InsertInto) (*nodes.InsertInto, error)
}

// BaseTransformer provides no-op defaults for all Transformer methods.
type BaseTransformer struct{}

func (BaseTransformer) TransformQuery(q *nodes.Query) (*nodes.Query, error) {
	return q, nil
}
func (BaseTransformer) TransformCreateTableAsSelect(n *nodes.CreateTableAsSelect) (*nodes.CreateTableAsSelect, error) {
	return n, nil
}
func (BaseTransformer) TransformCreateStreamAsSelect(n *nodes.CreateStreamAsSelect) (*nodes.CreateStreamAsSelect, error) {
	return n, nil
}
func (BaseTransformer) TransformInsertInto(n *nodes.InsertInto) (*nodes.InsertInto, error) {
	return n, nil
}

// Apply runs each transformer over stmt in order. Queries embedded in
// CREATE ... AS SELECT and INSERT INTO statements pass through
// TransformQuery before the statement itself is transformed; statements
// without a query are returned unchanged.
func Apply(stmt nodes.Statement, transformers ...Transformer) (nodes.Statement, error) {
	if stmt == nil {
		return nil, nodes.ErrNilNode
	}
	for _, t := range transformers {
		out, err := nodes.Accept[nodes.Statement, Transformer](stmt, applier, t)
		if err != nil {
			return nil, err
		}
		stmt = out
	}
	return stmt, nil
}

// applyVisitor routes a statement to the matching Transformer method.
type applyVisitor struct {
	nodes.DefaultVisitor[nodes.Statement, Transformer]
}

var applier = applyVisitor{nodes.DefaultVisitor[nodes.Statement, Transformer]{
	Fallback: func(n nodes.Node, _ Transformer) (nodes.Statement, error) {
		stmt, ok := n.(nodes.Statement)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a statement", nodes.ErrUnsupportedNode, n)
		}
		return stmt, nil
	},
}}

func (applyVisitor) VisitStatements(n *nodes.Statements, t Transformer) (nodes.Statement, error) {
	list := n.List()
	for i, s := range list {
		out, err := nodes.Accept[nodes.Statement, Transformer](s, applier, t)
		if err != nil {
			return nil, err
		}
		list[i] = out
	}
	return n.WithList(list)
}

func (applyVisitor) VisitQuery(n *nodes.Query, t Transformer) (nodes.Statement, error) {
	return transformQuery(t, n)
}

func (applyVisitor) VisitCreateTableAsSelect(n *nodes.CreateTableAsSelect, t Transformer) (nodes.Statement, error) {
	q, err := transformQuery(t, n.Query())
	if err != nil {
		return nil, err
	}
	if n, err = n.WithQuery(q); err != nil {
		return nil, err
	}
	return nonNil(t.TransformCreateTableAsSelect(n))
}

func (applyVisitor) VisitCreateStreamAsSelect(n *nodes.CreateStreamAsSelect, t Transformer) (nodes.Statement, error) {
	q, err := transformQuery(t, n.Query())
	if err != nil {
		return nil, err
	}
	if n, err = n.WithQuery(q); err != nil {
		return nil, err
	}
	return nonNil(t.TransformCreateStreamAsSelect(n))
}

func (applyVisitor) VisitInsertInto(n *nodes.InsertInto, t Transformer) (nodes.Statement, error) {
	q, err := transformQuery(t, n.Query())
	if err != nil {
		return nil, err
	}
	if n, err = n.WithQuery(q); err != nil {
		return nil, err
	}
	return nonNil(t.TransformInsertInto(n))
}

func transformQuery(t Transformer, q *nodes.Query) (*nodes.Query, error) {
	out, err := t.TransformQuery(q)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("plugins: %T returned no query: %w", t, nodes.ErrMissingQuery)
	}
	return out, nil
}

// nonNil converts a transformer result to a Statement, rejecting a nil
// result so a typed nil never escapes as a non-nil interface.
func nonNil[S interface {
	nodes.Statement
	comparable
}](s S, err error) (nodes.Statement, error) {
	if err != nil {
		return nil, err
	}
	var zero S
	if s == zero {
		return nil, fmt.Errorf("plugins: transformer returned no statement: %w", nodes.ErrMissingStatement)
	}
	return s, nil
}
