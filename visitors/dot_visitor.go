package visitors

import (
	"fmt"
	"strings"

	"github.com/bawdo/ksqltree/nodes"
)

// Color constants for DOT node categories.
const (
	colorStatement  = "#FF6961" // red: DDL and DML statements
	colorQuery      = "#CDA0E0" // purple: queries, select lists
	colorTable      = "#6CA6CD" // blue: tables, aliases
	colorAttribute  = "#B0D4E8" // light blue: columns, stars, table elements
	colorComparison = "#FFB347" // orange: comparisons
	colorLogical    = "#FFEB80" // yellow: AND, OR, NOT
	colorLiteral    = "#D3D3D3" // grey: literals
	colorJoin       = "#77DD77" // green: joins
	colorArithmetic = "#98FB98" // mint green: arithmetic
	colorFunction   = "#87CEEB" // sky blue: function calls
)

type dotNode struct {
	id    string
	label string
	color string
}

type dotEdge struct {
	from  string
	to    string
	label string
}

// pluginCluster groups nodes added by a plugin into a DOT subgraph cluster.
type pluginCluster struct {
	name    string
	color   string
	nodeIDs []string
}

// PluginProvenance records which statement properties were supplied by a
// plugin rather than written by the user.
type PluginProvenance struct {
	entries []provenanceEntry
}

type provenanceEntry struct {
	plugin string
	color  string
	key    string
}

// NewPluginProvenance creates a new PluginProvenance tracker.
func NewPluginProvenance() *PluginProvenance {
	return &PluginProvenance{}
}

// AddProperty marks the property key as supplied by plugin.
func (pp *PluginProvenance) AddProperty(plugin, color, key string) {
	pp.entries = append(pp.entries, provenanceEntry{plugin: plugin, color: color, key: key})
}

func (pp *PluginProvenance) pluginForProperty(key string) (string, string, bool) {
	if pp == nil {
		return "", "", false
	}
	for _, e := range pp.entries {
		if e.key == key {
			return e.plugin, e.color, true
		}
	}
	return "", "", false
}

// dotParent is the visit context: the node to hang the next node from and
// the label of the connecting edge.
type dotParent struct {
	id    string
	label string
}

// DotVisitor walks the AST and produces Graphviz DOT output. Each Visit
// method returns the ID of the node it added.
type DotVisitor struct {
	nextID     int
	nodes      []dotNode
	edges      []dotEdge
	clusters   []pluginCluster
	provenance *PluginProvenance
}

var _ nodes.Visitor[string, dotParent] = (*DotVisitor)(nil)

// NewDotVisitor creates a new DotVisitor ready to walk an AST.
func NewDotVisitor() *DotVisitor {
	return &DotVisitor{}
}

// SetProvenance configures plugin attribution for statement properties.
func (dv *DotVisitor) SetProvenance(p *PluginProvenance) {
	dv.provenance = p
}

// Walk adds the tree rooted at n to the graph.
func (dv *DotVisitor) Walk(n nodes.Node) error {
	_, err := nodes.Accept(n, nodes.Visitor[string, dotParent](dv), dotParent{})
	return err
}

// ToDotString renders n as a complete DOT document using a fresh visitor.
func ToDotString(n nodes.Node, p *PluginProvenance) (string, error) {
	dv := NewDotVisitor()
	dv.SetProvenance(p)
	if err := dv.Walk(n); err != nil {
		return "", err
	}
	return dv.ToDot(), nil
}

func (dv *DotVisitor) addNode(parent dotParent, label, color string) string {
	id := fmt.Sprintf("n%d", dv.nextID)
	dv.nextID++
	dv.nodes = append(dv.nodes, dotNode{id: id, label: label, color: color})
	if parent.id != "" {
		dv.edges = append(dv.edges, dotEdge{from: parent.id, to: id, label: parent.label})
	}
	return id
}

func (dv *DotVisitor) child(parentID, label string, n nodes.Node) error {
	_, err := nodes.Accept(n, nodes.Visitor[string, dotParent](dv), dotParent{id: parentID, label: label})
	return err
}

func dotChildren[T nodes.Node](dv *DotVisitor, parentID, label string, items []T) error {
	for i, it := range items {
		if err := dv.child(parentID, fmt.Sprintf("%s[%d]", label, i), it); err != nil {
			return err
		}
	}
	return nil
}

// AddPluginCluster registers a plugin cluster for grouped rendering in the DOT output.
func (dv *DotVisitor) AddPluginCluster(name, color string, nodeIDs []string) {
	if len(nodeIDs) > 0 {
		dv.clusters = append(dv.clusters, pluginCluster{name: name, color: color, nodeIDs: nodeIDs})
	}
}

// NodeCount returns the number of nodes accumulated so far.
func (dv *DotVisitor) NodeCount() int {
	return len(dv.nodes)
}

// NodeIDsSince returns the IDs of nodes added since (and including) the given index.
func (dv *DotVisitor) NodeIDsSince(start int) []string {
	if start >= len(dv.nodes) {
		return nil
	}
	ids := make([]string, len(dv.nodes)-start)
	for i := start; i < len(dv.nodes); i++ {
		ids[i-start] = dv.nodes[i].id
	}
	return ids
}

// visitProperties adds each property value under parentID, grouping values
// supplied by plugins into clusters.
func (dv *DotVisitor) visitProperties(parentID string, props nodes.Properties) error {
	clusters := map[string]*pluginCluster{}
	var order []string
	for _, p := range props.Entries() {
		snapshot := dv.NodeCount()
		if err := dv.child(parentID, p.Key, p.Value); err != nil {
			return err
		}
		plugin, color, ok := dv.provenance.pluginForProperty(p.Key)
		if !ok {
			continue
		}
		c, exists := clusters[plugin]
		if !exists {
			c = &pluginCluster{name: plugin, color: color}
			clusters[plugin] = c
			order = append(order, plugin)
		}
		c.nodeIDs = append(c.nodeIDs, dv.NodeIDsSince(snapshot)...)
	}
	for _, name := range order {
		dv.AddPluginCluster(name, clusters[name].color, clusters[name].nodeIDs)
	}
	return nil
}

// ToDot generates the complete DOT graph text.
func (dv *DotVisitor) ToDot() string {
	var sb strings.Builder

	sb.WriteString("digraph AST {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")

	clustered := make(map[string]bool)
	for _, c := range dv.clusters {
		for _, id := range c.nodeIDs {
			clustered[id] = true
		}
	}
	byID := make(map[string]dotNode, len(dv.nodes))
	for _, n := range dv.nodes {
		byID[n.id] = n
		if !clustered[n.id] {
			fmt.Fprintf(&sb, "  %s [label=\"%s\", fillcolor=\"%s\"];\n", n.id, escapeLabel(n.label), n.color)
		}
	}

	for i, c := range dv.clusters {
		fmt.Fprintf(&sb, "  subgraph cluster_%d_%s {\n", i, c.name)
		fmt.Fprintf(&sb, "    label=\"%s\";\n", c.name)
		sb.WriteString("    style=dashed;\n")
		fmt.Fprintf(&sb, "    color=\"%s\";\n", c.color)
		sb.WriteString("    fontname=\"Helvetica\";\n")
		for _, id := range c.nodeIDs {
			n := byID[id]
			fmt.Fprintf(&sb, "    %s [label=\"%s\", fillcolor=\"%s\"];\n", n.id, escapeLabel(n.label), n.color)
		}
		sb.WriteString("  }\n")
	}

	for _, e := range dv.edges {
		if e.label != "" {
			fmt.Fprintf(&sb, "  %s -> %s [label=\"%s\"];\n", e.from, e.to, escapeLabel(e.label))
		} else {
			fmt.Fprintf(&sb, "  %s -> %s;\n", e.from, e.to)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// escapeLabel escapes double quotes in DOT labels.
// Backslash sequences like \n are intentional DOT line breaks and are preserved.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func flag(label string, on bool, text string) string {
	if on {
		return label + `\n` + text
	}
	return label
}

// --- Statements ---

func (dv *DotVisitor) VisitStatements(n *nodes.Statements, p dotParent) (string, error) {
	id := dv.addNode(p, "Statements", colorStatement)
	return id, dotChildren(dv, id, "STMT", n.List())
}

func (dv *DotVisitor) VisitCreateTableAsSelect(n *nodes.CreateTableAsSelect, p dotParent) (string, error) {
	return dv.createAsSelect(p, "CreateTableAsSelect", n)
}

func (dv *DotVisitor) VisitCreateStreamAsSelect(n *nodes.CreateStreamAsSelect, p dotParent) (string, error) {
	return dv.createAsSelect(p, "CreateStreamAsSelect", n)
}

func (dv *DotVisitor) createAsSelect(p dotParent, kind string, n nodes.CreateAsSelect) (string, error) {
	id := dv.addNode(p, flag(kind+`\n`+n.Name().String(), n.NotExists(), "IF NOT EXISTS"), colorStatement)
	if err := dv.child(id, "QUERY", n.Query()); err != nil {
		return "", err
	}
	if err := dv.visitProperties(id, n.Properties()); err != nil {
		return "", err
	}
	if e, ok := n.PartitionBy(); ok {
		if err := dv.child(id, "PARTITION BY", e); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (dv *DotVisitor) VisitCreateTable(n *nodes.CreateTable, p dotParent) (string, error) {
	return dv.createSource(p, "CreateTable", n.Name(), n.NotExists(), n.Elements(), n.Properties())
}

func (dv *DotVisitor) VisitCreateStream(n *nodes.CreateStream, p dotParent) (string, error) {
	return dv.createSource(p, "CreateStream", n.Name(), n.NotExists(), n.Elements(), n.Properties())
}

func (dv *DotVisitor) createSource(p dotParent, kind string, name nodes.QualifiedName, notExists bool, elements []*nodes.TableElement, props nodes.Properties) (string, error) {
	id := dv.addNode(p, flag(kind+`\n`+name.String(), notExists, "IF NOT EXISTS"), colorStatement)
	if err := dotChildren(dv, id, "COLUMN", elements); err != nil {
		return "", err
	}
	return id, dv.visitProperties(id, props)
}

func (dv *DotVisitor) VisitInsertInto(n *nodes.InsertInto, p dotParent) (string, error) {
	id := dv.addNode(p, `InsertInto\n`+n.Target().String(), colorStatement)
	if err := dv.child(id, "QUERY", n.Query()); err != nil {
		return "", err
	}
	if e, ok := n.PartitionBy(); ok {
		if err := dv.child(id, "PARTITION BY", e); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (dv *DotVisitor) VisitDropTable(n *nodes.DropTable, p dotParent) (string, error) {
	label := flag(`DropTable\n`+n.Name().String(), n.IfExists(), "IF EXISTS")
	return dv.addNode(p, flag(label, n.DeleteTopic(), "DELETE TOPIC"), colorStatement), nil
}

func (dv *DotVisitor) VisitDropStream(n *nodes.DropStream, p dotParent) (string, error) {
	label := flag(`DropStream\n`+n.Name().String(), n.IfExists(), "IF EXISTS")
	return dv.addNode(p, flag(label, n.DeleteTopic(), "DELETE TOPIC"), colorStatement), nil
}

func (dv *DotVisitor) VisitQuery(n *nodes.Query, p dotParent) (string, error) {
	label := "Query"
	if limit, ok := n.Limit(); ok {
		label += fmt.Sprintf(`\nLIMIT %d`, limit)
	}
	id := dv.addNode(p, label, colorQuery)
	if err := dv.child(id, "SELECT", n.Select()); err != nil {
		return "", err
	}
	if err := dv.child(id, "FROM", n.From()); err != nil {
		return "", err
	}
	if e, ok := n.Where(); ok {
		if err := dv.child(id, "WHERE", e); err != nil {
			return "", err
		}
	}
	if err := dotChildren(dv, id, "GROUP BY", n.GroupBy()); err != nil {
		return "", err
	}
	if e, ok := n.Having(); ok {
		if err := dv.child(id, "HAVING", e); err != nil {
			return "", err
		}
	}
	return id, nil
}

// --- Query structure ---

func (dv *DotVisitor) VisitSelect(n *nodes.Select, p dotParent) (string, error) {
	id := dv.addNode(p, flag("Select", n.Distinct(), "DISTINCT"), colorQuery)
	return id, dotChildren(dv, id, "ITEM", n.Items())
}

func (dv *DotVisitor) VisitSingleColumn(n *nodes.SingleColumn, p dotParent) (string, error) {
	label := "SingleColumn"
	if alias, ok := n.Alias(); ok {
		label += `\nAS ` + alias
	}
	id := dv.addNode(p, label, colorAttribute)
	return id, dv.child(id, "", n.Expression())
}

func (dv *DotVisitor) VisitAllColumns(n *nodes.AllColumns, p dotParent) (string, error) {
	return dv.addNode(p, n.String(), colorAttribute), nil
}

func (dv *DotVisitor) VisitTable(n *nodes.Table, p dotParent) (string, error) {
	return dv.addNode(p, `Table\n`+n.Name().String(), colorTable), nil
}

func (dv *DotVisitor) VisitAliasedRelation(n *nodes.AliasedRelation, p dotParent) (string, error) {
	id := dv.addNode(p, `Alias\n`+n.Alias(), colorTable)
	return id, dv.child(id, "", n.Relation())
}

func (dv *DotVisitor) VisitJoin(n *nodes.Join, p dotParent) (string, error) {
	id := dv.addNode(p, n.Type().String()+" JOIN", colorJoin)
	if err := dv.child(id, "LEFT", n.Left()); err != nil {
		return "", err
	}
	if err := dv.child(id, "RIGHT", n.Right()); err != nil {
		return "", err
	}
	if e, ok := n.Criteria(); ok {
		if err := dv.child(id, "ON", e); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (dv *DotVisitor) VisitTableElement(n *nodes.TableElement, p dotParent) (string, error) {
	return dv.addNode(p, n.Name()+`\n`+n.Type(), colorAttribute), nil
}

// --- Expressions ---

func (dv *DotVisitor) VisitStringLiteral(n *nodes.StringLiteral, p dotParent) (string, error) {
	return dv.addNode(p, n.String(), colorLiteral), nil
}

func (dv *DotVisitor) VisitIntegerLiteral(n *nodes.IntegerLiteral, p dotParent) (string, error) {
	return dv.addNode(p, n.String(), colorLiteral), nil
}

func (dv *DotVisitor) VisitDoubleLiteral(n *nodes.DoubleLiteral, p dotParent) (string, error) {
	return dv.addNode(p, n.String(), colorLiteral), nil
}

func (dv *DotVisitor) VisitBooleanLiteral(n *nodes.BooleanLiteral, p dotParent) (string, error) {
	return dv.addNode(p, strings.ToUpper(n.String()), colorLiteral), nil
}

func (dv *DotVisitor) VisitNullLiteral(_ *nodes.NullLiteral, p dotParent) (string, error) {
	return dv.addNode(p, "NULL", colorLiteral), nil
}

func (dv *DotVisitor) VisitColumnReference(n *nodes.ColumnReference, p dotParent) (string, error) {
	return dv.addNode(p, `Column\n`+n.Name().String(), colorAttribute), nil
}

func (dv *DotVisitor) VisitComparisonExpression(n *nodes.ComparisonExpression, p dotParent) (string, error) {
	return dv.binary(p, n.Operator().String(), colorComparison, n.Left(), n.Right())
}

func (dv *DotVisitor) VisitLogicalBinaryExpression(n *nodes.LogicalBinaryExpression, p dotParent) (string, error) {
	return dv.binary(p, n.Operator().String(), colorLogical, n.Left(), n.Right())
}

func (dv *DotVisitor) VisitNotExpression(n *nodes.NotExpression, p dotParent) (string, error) {
	id := dv.addNode(p, "NOT", colorLogical)
	return id, dv.child(id, "", n.Value())
}

func (dv *DotVisitor) VisitArithmeticBinaryExpression(n *nodes.ArithmeticBinaryExpression, p dotParent) (string, error) {
	return dv.binary(p, n.Operator().String(), colorArithmetic, n.Left(), n.Right())
}

func (dv *DotVisitor) VisitFunctionCall(n *nodes.FunctionCall, p dotParent) (string, error) {
	id := dv.addNode(p, n.Name().String()+"()", colorFunction)
	return id, dotChildren(dv, id, "ARG", n.Arguments())
}

func (dv *DotVisitor) binary(p dotParent, op, color string, left, right nodes.Expression) (string, error) {
	id := dv.addNode(p, op, color)
	if err := dv.child(id, "LEFT", left); err != nil {
		return "", err
	}
	return id, dv.child(id, "RIGHT", right)
}
