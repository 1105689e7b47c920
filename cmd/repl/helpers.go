package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
)

// --- AST display helpers ---

// printTree writes n and its descendants, one node per line, indented by
// depth and annotated with the parse location when known.
func printTree(w io.Writer, n nodes.Node, depth int) {
	label := nodeSummary(n)
	if loc := nodes.LocationString(n); loc != "" {
		label += "  @ " + loc
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label)
	for _, c := range nodes.Children(n) {
		printTree(w, c, depth+1)
	}
}

func (s *Session) printASTFooter() {
	for _, entry := range s.plugins.enabled {
		_, _ = fmt.Fprintf(s.out, "  Plugin: %s (%s)\n", entry.name, entry.status())
	}
	if s.parameterize {
		_, _ = fmt.Fprintln(s.out, "  Parameterize: on")
	}
	if s.conn != nil {
		_, _ = fmt.Fprintf(s.out, "  Connected: %s (%s)\n", redactDSN(s.conn.dsn), s.conn.engine)
	}
}

// --- Node summary helpers ---

// summaryVisitor produces a concise one-line label per node. Variants
// without an override are labelled with their type name.
type summaryVisitor struct {
	nodes.DefaultVisitor[string, struct{}]
}

var summarizer = summaryVisitor{nodes.DefaultVisitor[string, struct{}]{
	Fallback: func(n nodes.Node, _ struct{}) (string, error) {
		return strings.TrimPrefix(fmt.Sprintf("%T", n), "*nodes."), nil
	},
}}

// nodeSummary returns a concise human-readable label for a node.
func nodeSummary(n nodes.Node) string {
	label, err := nodes.Accept[string, struct{}](n, summarizer, struct{}{})
	if err != nil {
		return err.Error()
	}
	return label
}

func (summaryVisitor) VisitCreateTableAsSelect(n *nodes.CreateTableAsSelect, _ struct{}) (string, error) {
	return "CreateTableAsSelect " + n.Name().String(), nil
}

func (summaryVisitor) VisitCreateStreamAsSelect(n *nodes.CreateStreamAsSelect, _ struct{}) (string, error) {
	return "CreateStreamAsSelect " + n.Name().String(), nil
}

func (summaryVisitor) VisitInsertInto(n *nodes.InsertInto, _ struct{}) (string, error) {
	return "InsertInto " + n.Target().String(), nil
}

func (summaryVisitor) VisitDropTable(n *nodes.DropTable, _ struct{}) (string, error) {
	return "DropTable " + n.Name().String(), nil
}

func (summaryVisitor) VisitDropStream(n *nodes.DropStream, _ struct{}) (string, error) {
	return "DropStream " + n.Name().String(), nil
}

func (summaryVisitor) VisitSelect(n *nodes.Select, _ struct{}) (string, error) {
	if n.Distinct() {
		return "Select DISTINCT", nil
	}
	return "Select", nil
}

func (summaryVisitor) VisitSingleColumn(n *nodes.SingleColumn, _ struct{}) (string, error) {
	if alias, ok := n.Alias(); ok {
		return "SingleColumn AS " + alias, nil
	}
	return "SingleColumn", nil
}

func (summaryVisitor) VisitAllColumns(n *nodes.AllColumns, _ struct{}) (string, error) {
	return "AllColumns " + n.String(), nil
}

func (summaryVisitor) VisitTable(n *nodes.Table, _ struct{}) (string, error) {
	return "Table " + n.Name().String(), nil
}

func (summaryVisitor) VisitAliasedRelation(n *nodes.AliasedRelation, _ struct{}) (string, error) {
	return "AliasedRelation AS " + n.Alias(), nil
}

func (summaryVisitor) VisitJoin(n *nodes.Join, _ struct{}) (string, error) {
	return n.Type().String() + " JOIN", nil
}

func (summaryVisitor) VisitColumnReference(n *nodes.ColumnReference, _ struct{}) (string, error) {
	return "Column " + n.Name().String(), nil
}

func (summaryVisitor) VisitComparisonExpression(n *nodes.ComparisonExpression, _ struct{}) (string, error) {
	return "Comparison " + n.Operator().String(), nil
}

func (summaryVisitor) VisitLogicalBinaryExpression(n *nodes.LogicalBinaryExpression, _ struct{}) (string, error) {
	return "Logical " + n.Operator().String(), nil
}

func (summaryVisitor) VisitArithmeticBinaryExpression(n *nodes.ArithmeticBinaryExpression, _ struct{}) (string, error) {
	return "Arithmetic " + n.Operator().String(), nil
}

func (summaryVisitor) VisitFunctionCall(n *nodes.FunctionCall, _ struct{}) (string, error) {
	return "Function " + n.Name().String(), nil
}

func (summaryVisitor) VisitStringLiteral(n *nodes.StringLiteral, _ struct{}) (string, error) {
	return "String " + n.String(), nil
}

func (summaryVisitor) VisitIntegerLiteral(n *nodes.IntegerLiteral, _ struct{}) (string, error) {
	return "Integer " + n.String(), nil
}

func (summaryVisitor) VisitDoubleLiteral(n *nodes.DoubleLiteral, _ struct{}) (string, error) {
	return "Double " + n.String(), nil
}

func (summaryVisitor) VisitBooleanLiteral(n *nodes.BooleanLiteral, _ struct{}) (string, error) {
	return "Boolean " + n.String(), nil
}

// sourceFor resolves a qualifier typed at the prompt to the source it
// names: an alias of the current query maps to its source, anything else
// is taken as a source name.
func (s *Session) sourceFor(qualifier string) nodes.QualifiedName {
	if s.query != nil {
		if q, err := s.query.Build(); err == nil {
			for _, ref := range plugins.CollectSources(q) {
				if strings.EqualFold(ref.Qualifier.String(), qualifier) {
					return ref.Name
				}
			}
		}
	}
	name, err := nodes.ParseQualifiedName(strings.ToUpper(qualifier))
	if err != nil {
		return nodes.QualifiedName{}
	}
	return name
}

// sourceNames lists the sources and aliases the current query reads from.
func (s *Session) sourceNames() []string {
	if s.query == nil {
		return nil
	}
	q, err := s.query.Build()
	if err != nil {
		return nil
	}
	var names []string
	for _, ref := range plugins.CollectSources(q) {
		names = append(names, ref.Name.String())
		if !ref.Qualifier.Equal(ref.Name) {
			names = append(names, ref.Qualifier.String())
		}
	}
	return names
}
