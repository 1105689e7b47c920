// Package opa provides a Transformer that enforces Open Policy Agent
// policies on queries by injecting policy-derived WHERE conditions and
// masking projected columns.
//
// You supply a [PolicyFunc] that is called once per source referenced in
// the query (FROM and JOINs). The function inspects the source and
// returns zero or more conditions to AND onto the WHERE clause. If the
// function returns an error the query is rejected entirely, which is how
// hard "access denied" rules are expressed.
//
// # Basic usage
//
//	policy := func(ref plugins.SourceRef) ([]nodes.Expression, error) {
//	    switch ref.Name.String() {
//	    case "SECRETS":
//	        return nil, errors.New("access denied")
//	    case "USERS":
//	        col, _ := nodes.NewColumnReference(nodes.MustQualifiedName(append(ref.Qualifier.Parts(), "TENANT_ID")...))
//	        cond, err := nodes.NewComparisonExpression(nodes.OpEqual, col, nodes.NewIntegerLiteral(42))
//	        return []nodes.Expression{cond}, err
//	    }
//	    return nil, nil
//	}
//
//	q := managers.NewQueryManager().From(users).Use(opa.New(policy))
//	// SELECT * FROM USERS WHERE USERS.TENANT_ID = 42
//
// # Server mode
//
// [NewFromServer] asks a running OPA server instead: row filters come from
// partial evaluation through the Compile API, with data.<source> as the
// unknown, and column masks come from the sibling "masks" rule read
// through the Data API.
//
//	o := opa.NewFromServer("http://localhost:8181", "data.ksql.orders.allow",
//	    map[string]any{"subject": map[string]any{"tenant": 7}},
//	    opa.WithColumnResolver(resolver))
//
// # REPL usage
//
//	ksqltree> plugin opa http://localhost:8181 ksql.orders.allow subject.tenant=7
//	ksqltree> opa explain orders
//	ksqltree> plugin off opa
package opa

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
)

// PolicyFunc evaluates a policy for the given source and returns
// conditions to inject into the query's WHERE clause. Returning a non-nil
// error rejects the query entirely.
type PolicyFunc func(ref plugins.SourceRef) ([]nodes.Expression, error)

// ColumnResolver returns the column names of a source. It is required when
// masks apply to a star projection, because the star must be expanded into
// explicit columns before individual ones can be replaced.
type ColumnResolver func(source nodes.QualifiedName) ([]string, error)

// ErrResolverRequired is returned when a star projection would need masking
// but no ColumnResolver was configured.
var ErrResolverRequired = errors.New("opa: column resolver required to apply masks to star projection")

// Option configures an OPA transformer.
type Option func(*OPA)

// WithColumnResolver sets the resolver used to expand star projections
// when column masks are present.
func WithColumnResolver(resolver ColumnResolver) Option {
	return func(o *OPA) {
		o.columnResolver = resolver
	}
}

// OPA is a Transformer that evaluates a policy against every source in the
// query. It runs either a Go function ([New]) or an OPA server
// ([NewFromServer]); only server mode supports column masks.
type OPA struct {
	plugins.BaseTransformer
	evalPolicy     PolicyFunc
	client         *Client
	columnResolver ColumnResolver
}

// New creates an OPA transformer with the given policy function.
func New(policy PolicyFunc, opts ...Option) *OPA {
	o := &OPA{evalPolicy: policy}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewFromServer creates an OPA transformer backed by an OPA server. The
// url is the server's base URL, policyPath the Rego rule to satisfy
// (the "data." prefix is optional) and input the document sent with
// every request.
func NewFromServer(url, policyPath string, input map[string]any, opts ...Option) *OPA {
	return New(nil, append([]Option{func(o *OPA) { o.client = NewClient(url, policyPath, input) }}, opts...)...)
}

// Client returns the server client, or nil in PolicyFunc mode.
func (o *OPA) Client() *Client { return o.client }

// TransformQuery ANDs the policy conditions of each source onto the WHERE
// clause and, in server mode, replaces masked projections with their
// replacement literal. Masks are fetched once per query.
func (o *OPA) TransformQuery(q *nodes.Query) (*nodes.Query, error) {
	refs := plugins.CollectSources(q)

	var masks Masks
	if o.client != nil {
		m, err := o.client.FetchMasks()
		if err != nil {
			return nil, err
		}
		masks = m
	}

	where, _ := q.Where()
	changed := false
	for _, ref := range refs {
		conditions, err := o.conditions(ref)
		if err != nil {
			return nil, err
		}
		for _, cond := range conditions {
			if where == nil {
				where = cond
			} else if where, err = nodes.NewLogicalBinaryExpression(nodes.OpAnd, where, cond); err != nil {
				return nil, err
			}
			changed = true
		}
	}
	out := q
	if changed {
		out = q.WithWhere(where)
	}
	if len(masks) == 0 {
		return out, nil
	}
	return o.applyMasks(out, refs, masks)
}

func (o *OPA) conditions(ref plugins.SourceRef) ([]nodes.Expression, error) {
	if o.client != nil {
		return o.client.Compile(ref)
	}
	if o.evalPolicy == nil {
		return nil, nil
	}
	return o.evalPolicy(ref)
}

// applyMasks rewrites the select list of q, expanding stars over masked
// sources and replacing masked column references with string literals
// aliased to the column name.
func (o *OPA) applyMasks(q *nodes.Query, refs []plugins.SourceRef, masks Masks) (*nodes.Query, error) {
	sel := q.Select()
	v := newMaskVisitor(o, refs, masks)
	var items []nodes.SelectItem
	changed := false
	for _, item := range sel.Items() {
		rewritten, err := nodes.Accept[[]nodes.SelectItem, struct{}](item, v, struct{}{})
		if err != nil {
			return nil, err
		}
		if rewritten == nil {
			items = append(items, item)
			continue
		}
		items = append(items, rewritten...)
		changed = true
	}
	if !changed {
		return q, nil
	}
	newSel, err := nodes.NewSelect(sel.Distinct(), items, locationOf(sel)...)
	if err != nil {
		return nil, err
	}
	return q.WithSelect(newSel)
}

// maskVisitor rewrites one select item. A nil result leaves the item as is.
type maskVisitor struct {
	nodes.DefaultVisitor[[]nodes.SelectItem, struct{}]
	opa   *OPA
	refs  []plugins.SourceRef
	masks Masks
}

func newMaskVisitor(o *OPA, refs []plugins.SourceRef, masks Masks) maskVisitor {
	return maskVisitor{
		DefaultVisitor: nodes.DefaultVisitor[[]nodes.SelectItem, struct{}]{
			Fallback: func(nodes.Node, struct{}) ([]nodes.SelectItem, error) { return nil, nil },
		},
		opa:   o,
		refs:  refs,
		masks: masks,
	}
}

func (v maskVisitor) VisitAllColumns(n *nodes.AllColumns, _ struct{}) ([]nodes.SelectItem, error) {
	return v.opa.expandStar(n, v.refs, v.masks)
}

func (v maskVisitor) VisitSingleColumn(n *nodes.SingleColumn, _ struct{}) ([]nodes.SelectItem, error) {
	masked, err := maskColumn(n, v.refs, v.masks)
	if err != nil || masked == nil {
		return nil, err
	}
	return []nodes.SelectItem{masked}, nil
}

// expandStar returns nil when none of the sources covered by star carry
// masks, leaving the star in place.
func (o *OPA) expandStar(star *nodes.AllColumns, refs []plugins.SourceRef, masks Masks) ([]nodes.SelectItem, error) {
	covered := refs
	if prefix, ok := star.Prefix(); ok {
		covered = nil
		for _, ref := range refs {
			if ref.Qualifier.Equal(prefix) {
				covered = append(covered, ref)
			}
		}
	}
	needed := false
	for _, ref := range covered {
		if len(masks.For(ref.Name.String())) > 0 {
			needed = true
		}
	}
	if !needed {
		return nil, nil
	}
	if o.columnResolver == nil {
		return nil, ErrResolverRequired
	}

	var items []nodes.SelectItem
	for _, ref := range covered {
		cols, err := o.columnResolver(ref.Name)
		if err != nil {
			return nil, fmt.Errorf("opa: column resolver: %w", err)
		}
		sourceMasks := masks.For(ref.Name.String())
		for _, col := range cols {
			if action, ok := sourceMasks[strings.ToUpper(col)]; ok && action.Replace != nil {
				item, err := maskLiteral(action.Replace.Value, col)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
				continue
			}
			name, err := nodes.NewQualifiedName(append(ref.Qualifier.Parts(), col)...)
			if err != nil {
				return nil, fmt.Errorf("opa: %w", err)
			}
			colRef, err := nodes.NewColumnReference(name)
			if err != nil {
				return nil, err
			}
			item, err := nodes.NewSingleColumn(colRef, "")
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// maskColumn returns nil unless col projects a plain column reference
// that a mask covers.
func maskColumn(col *nodes.SingleColumn, refs []plugins.SourceRef, masks Masks) (*nodes.SingleColumn, error) {
	name, err := nodes.Accept[nodes.QualifiedName, struct{}](col.Expression(), columnName, struct{}{})
	if err != nil || name.IsZero() {
		return nil, err
	}
	parts := name.Parts()
	column := parts[len(parts)-1]
	qualifier := parts[:len(parts)-1]

	for _, src := range refs {
		if len(qualifier) > 0 && !src.Qualifier.Equal(nodes.MustQualifiedName(qualifier...)) {
			continue
		}
		action, ok := masks.For(src.Name.String())[strings.ToUpper(column)]
		if !ok || action.Replace == nil {
			continue
		}
		alias, ok := col.Alias()
		if !ok {
			alias = column
		}
		return maskLiteral(action.Replace.Value, alias)
	}
	return nil, nil
}

// columnNameVisitor yields the name of a column reference and the zero
// name for any other expression.
type columnNameVisitor struct {
	nodes.DefaultVisitor[nodes.QualifiedName, struct{}]
}

var columnName = columnNameVisitor{nodes.DefaultVisitor[nodes.QualifiedName, struct{}]{
	Fallback: func(nodes.Node, struct{}) (nodes.QualifiedName, error) { return nodes.QualifiedName{}, nil },
}}

func (columnNameVisitor) VisitColumnReference(n *nodes.ColumnReference, _ struct{}) (nodes.QualifiedName, error) {
	return n.Name(), nil
}

// maskLiteral projects value as a string literal under the given alias.
func maskLiteral(value, alias string) (*nodes.SingleColumn, error) {
	return nodes.NewSingleColumn(nodes.NewStringLiteral(value), alias)
}

func locationOf(n nodes.Node) []nodes.Option {
	if loc, ok := n.Location(); ok {
		return []nodes.Option{nodes.At(loc)}
	}
	return nil
}
