package plugins

import "github.com/bawdo/ksqltree/nodes"

// SourceRef is a source read by a query. Qualifier is the name columns of
// the source are qualified with: the alias when one is given, otherwise the
// source name itself.
type SourceRef struct {
	Name      nodes.QualifiedName
	Qualifier nodes.QualifiedName
}

// CollectSources returns every table or stream a query reads, in the
// order they appear in FROM and JOIN clauses.
func CollectSources(q *nodes.Query) []SourceRef {
	if q == nil {
		return nil
	}
	refs, _ := nodes.Accept[[]SourceRef, struct{}](q.From(), sourceCollector, struct{}{})
	return refs
}

type sourceVisitor struct {
	nodes.DefaultVisitor[[]SourceRef, struct{}]
}

var sourceCollector = sourceVisitor{nodes.DefaultVisitor[[]SourceRef, struct{}]{
	Fallback: func(nodes.Node, struct{}) ([]SourceRef, error) { return nil, nil },
}}

func (sourceVisitor) VisitTable(n *nodes.Table, _ struct{}) ([]SourceRef, error) {
	return []SourceRef{{Name: n.Name(), Qualifier: n.Name()}}, nil
}

func (v sourceVisitor) VisitAliasedRelation(n *nodes.AliasedRelation, ctx struct{}) ([]SourceRef, error) {
	inner, err := nodes.Accept[[]SourceRef, struct{}](n.Relation(), v, ctx)
	if err != nil || len(inner) != 1 {
		return inner, err
	}
	alias, err := nodes.NewQualifiedName(n.Alias())
	if err != nil {
		return nil, err
	}
	inner[0].Qualifier = alias
	return inner, nil
}

func (v sourceVisitor) VisitJoin(n *nodes.Join, ctx struct{}) ([]SourceRef, error) {
	left, err := nodes.Accept[[]SourceRef, struct{}](n.Left(), v, ctx)
	if err != nil {
		return nil, err
	}
	right, err := nodes.Accept[[]SourceRef, struct{}](n.Right(), v, ctx)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}
