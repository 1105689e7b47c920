// Package visitors renders AST nodes as SQL text, for ksqlDB and for the
// relational dialects the REPL can execute against, and as Graphviz graphs.
package visitors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bawdo/ksqltree/internal/quoting"
	"github.com/bawdo/ksqltree/nodes"
)

// ErrUnsupported is returned when a node has no rendering in the target
// dialect, such as a stream statement in PostgreSQL.
var ErrUnsupported = errors.New("visitors: unsupported by dialect")

// Formatter is a dialect visitor that turns a node into SQL text.
type Formatter interface {
	nodes.Visitor[string, struct{}]

	// Dialect names the target engine ("ksql", "postgres", "mysql", "sqlite").
	Dialect() string

	// Format renders n, resetting any collected bind parameters first.
	Format(n nodes.Node) (string, error)

	// Params returns the bind parameters collected by the last Format call.
	Params() []any
}

// Format renders n as ksqlDB SQL.
func Format(n nodes.Node) (string, error) {
	return NewKSQLVisitor().Format(n)
}

// FormatWith renders n with the given dialect visitor.
func FormatWith(v Formatter, n nodes.Node) (string, error) {
	if v == nil {
		return "", errors.New("visitors: nil formatter")
	}
	return v.Format(n)
}

// Option configures a visitor at construction time.
type Option func(*baseVisitor)

// WithPretty renders each major clause on its own line.
func WithPretty() Option {
	return func(b *baseVisitor) {
		b.pretty = true
	}
}

// WithParams replaces literal values with bind placeholders and collects
// them for separate retrieval via Params. Dialects without placeholders
// (ksqlDB) ignore it.
func WithParams() Option {
	return func(b *baseVisitor) {
		b.parameterize = b.placeholder != nil
	}
}

// baseVisitor implements rendering shared by every dialect. Dialect types
// embed it and override individual Visit methods; recursion always goes
// through outer so those overrides apply to nested nodes too.
type baseVisitor struct {
	outer   nodes.Visitor[string, struct{}]
	dialect string

	// quoteIdent quotes one identifier part.
	quoteIdent func(string) string

	// streams enables ksqlDB-only constructs: stream statements, PARTITION
	// BY, WITH property clauses and DELETE TOPIC.
	streams bool

	pretty bool

	parameterize bool
	params       []any

	// placeholder returns the bind placeholder for a 1-based index.
	// PostgreSQL uses $1, $2; MySQL/SQLite use ?. Nil means no placeholders.
	placeholder func(int) string
}

func (b *baseVisitor) applyOptions(opts []Option) {
	for _, o := range opts {
		o(b)
	}
}

func (b *baseVisitor) Dialect() string { return b.dialect }
func (b *baseVisitor) Params() []any   { return b.params }

// Reset clears collected parameters for reuse.
func (b *baseVisitor) Reset() { b.params = nil }

func (b *baseVisitor) Format(n nodes.Node) (string, error) {
	b.Reset()
	return b.visit(n)
}

func (b *baseVisitor) visit(n nodes.Node) (string, error) {
	return nodes.Accept(n, b.outer, struct{}{})
}

func (b *baseVisitor) unsupported(n nodes.Node, what string) error {
	if loc := nodes.LocationString(n); loc != "" {
		return fmt.Errorf("%w: %s in %s at %s", ErrUnsupported, what, b.dialect, loc)
	}
	return fmt.Errorf("%w: %s in %s", ErrUnsupported, what, b.dialect)
}

// sep separates major clauses.
func (b *baseVisitor) sep() string {
	if b.pretty {
		return "\n"
	}
	return " "
}

func (b *baseVisitor) name(q nodes.QualifiedName) string {
	parts := q.Parts()
	for i, p := range parts {
		parts[i] = b.quoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// bind emits a placeholder for v in parameterized mode.
func (b *baseVisitor) bind(v any) (string, bool) {
	if !b.parameterize {
		return "", false
	}
	b.params = append(b.params, v)
	return b.placeholder(len(b.params)), true
}

// operand renders an expression used inside an operator, parenthesizing
// nested operator expressions.
func (b *baseVisitor) operand(e nodes.Expression) (string, error) {
	s, err := b.visit(e)
	if err != nil {
		return "", err
	}
	if isCompound(e) {
		return "(" + s + ")", nil
	}
	return s, nil
}

// --- Statements ---

func (b *baseVisitor) VisitStatements(n *nodes.Statements, _ struct{}) (string, error) {
	parts := make([]string, 0, n.Len())
	for _, s := range n.List() {
		sql, err := b.visit(s)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql+";")
	}
	if b.pretty {
		return strings.Join(parts, "\n\n"), nil
	}
	return strings.Join(parts, "\n"), nil
}

func (b *baseVisitor) VisitCreateTableAsSelect(n *nodes.CreateTableAsSelect, _ struct{}) (string, error) {
	return b.createAsSelect(n, "TABLE")
}

func (b *baseVisitor) VisitCreateStreamAsSelect(n *nodes.CreateStreamAsSelect, _ struct{}) (string, error) {
	if !b.streams {
		return "", b.unsupported(n, "CREATE STREAM AS SELECT")
	}
	return b.createAsSelect(n, "STREAM")
}

func (b *baseVisitor) createAsSelect(n nodes.CreateAsSelect, kind string) (string, error) {
	w := b.writer()
	w.str("CREATE " + kind + " ")
	if n.NotExists() {
		w.str("IF NOT EXISTS ")
	}
	w.str(b.name(n.Name()))
	b.writeProperties(w, n.Properties())
	w.str(" AS" + b.sep())
	w.node(n.Query())
	if e, ok := n.PartitionBy(); ok {
		b.writePartitionBy(w, n, e)
	}
	return w.result()
}

func (b *baseVisitor) VisitCreateTable(n *nodes.CreateTable, _ struct{}) (string, error) {
	return b.createSource(n, "TABLE", n.Name(), n.NotExists(), n.Elements(), n.Properties())
}

func (b *baseVisitor) VisitCreateStream(n *nodes.CreateStream, _ struct{}) (string, error) {
	if !b.streams {
		return "", b.unsupported(n, "CREATE STREAM")
	}
	return b.createSource(n, "STREAM", n.Name(), n.NotExists(), n.Elements(), n.Properties())
}

func (b *baseVisitor) createSource(n nodes.Node, kind string, name nodes.QualifiedName, notExists bool, elements []*nodes.TableElement, props nodes.Properties) (string, error) {
	if len(elements) == 0 && !b.streams {
		return "", b.unsupported(n, "CREATE "+kind+" without columns")
	}
	w := b.writer()
	w.str("CREATE " + kind + " ")
	if notExists {
		w.str("IF NOT EXISTS ")
	}
	w.str(b.name(name))
	if len(elements) > 0 {
		w.str(" (")
		writeList(w, elements, ", ")
		w.str(")")
	}
	b.writeProperties(w, props)
	return w.result()
}

func (b *baseVisitor) VisitInsertInto(n *nodes.InsertInto, _ struct{}) (string, error) {
	w := b.writer()
	w.str("INSERT INTO " + b.name(n.Target()) + b.sep())
	w.node(n.Query())
	if e, ok := n.PartitionBy(); ok {
		b.writePartitionBy(w, n, e)
	}
	return w.result()
}

func (b *baseVisitor) VisitDropTable(n *nodes.DropTable, _ struct{}) (string, error) {
	return b.drop(n, "TABLE", n.Name(), n.IfExists(), n.DeleteTopic())
}

func (b *baseVisitor) VisitDropStream(n *nodes.DropStream, _ struct{}) (string, error) {
	if !b.streams {
		return "", b.unsupported(n, "DROP STREAM")
	}
	return b.drop(n, "STREAM", n.Name(), n.IfExists(), n.DeleteTopic())
}

func (b *baseVisitor) drop(n nodes.Node, kind string, name nodes.QualifiedName, ifExists, deleteTopic bool) (string, error) {
	if deleteTopic && !b.streams {
		return "", b.unsupported(n, "DELETE TOPIC")
	}
	var sb strings.Builder
	sb.WriteString("DROP " + kind + " ")
	if ifExists {
		sb.WriteString("IF EXISTS ")
	}
	sb.WriteString(b.name(name))
	if deleteTopic {
		sb.WriteString(" DELETE TOPIC")
	}
	return sb.String(), nil
}

// writeProperties writes " WITH (K=V, ...)". Relational dialects have no
// property clause and skip it.
func (b *baseVisitor) writeProperties(w *writer, props nodes.Properties) {
	if !b.streams || props.Len() == 0 {
		return
	}
	w.str(" WITH (")
	for i, p := range props.Entries() {
		if i > 0 {
			w.str(", ")
		}
		w.str(p.Key + "=")
		w.node(p.Value)
	}
	w.str(")")
}

func (b *baseVisitor) writePartitionBy(w *writer, n nodes.Node, e nodes.Expression) {
	if !b.streams {
		w.fail(b.unsupported(n, "PARTITION BY"))
		return
	}
	w.str(b.sep() + "PARTITION BY ")
	w.node(e)
}

// --- Query structure ---

func (b *baseVisitor) VisitQuery(n *nodes.Query, _ struct{}) (string, error) {
	w := b.writer()
	w.node(n.Select())
	w.str(b.sep() + "FROM ")
	w.node(n.From())
	if e, ok := n.Where(); ok {
		w.str(b.sep() + "WHERE ")
		w.node(e)
	}
	if groups := n.GroupBy(); len(groups) > 0 {
		w.str(b.sep() + "GROUP BY ")
		writeList(w, groups, ", ")
	}
	if e, ok := n.Having(); ok {
		w.str(b.sep() + "HAVING ")
		w.node(e)
	}
	if limit, ok := n.Limit(); ok {
		w.str(b.sep() + "LIMIT " + strconv.Itoa(limit))
	}
	return w.result()
}

func (b *baseVisitor) VisitSelect(n *nodes.Select, _ struct{}) (string, error) {
	w := b.writer()
	w.str("SELECT ")
	if n.Distinct() {
		w.str("DISTINCT ")
	}
	writeList(w, n.Items(), ", ")
	return w.result()
}

func (b *baseVisitor) VisitSingleColumn(n *nodes.SingleColumn, _ struct{}) (string, error) {
	s, err := b.visit(n.Expression())
	if err != nil {
		return "", err
	}
	if alias, ok := n.Alias(); ok {
		s += " AS " + b.quoteIdent(alias)
	}
	return s, nil
}

func (b *baseVisitor) VisitAllColumns(n *nodes.AllColumns, _ struct{}) (string, error) {
	if prefix, ok := n.Prefix(); ok {
		return b.name(prefix) + ".*", nil
	}
	return "*", nil
}

func (b *baseVisitor) VisitTable(n *nodes.Table, _ struct{}) (string, error) {
	return b.name(n.Name()), nil
}

func (b *baseVisitor) VisitAliasedRelation(n *nodes.AliasedRelation, _ struct{}) (string, error) {
	s, err := b.visit(n.Relation())
	if err != nil {
		return "", err
	}
	return s + " AS " + b.quoteIdent(n.Alias()), nil
}

func (b *baseVisitor) VisitJoin(n *nodes.Join, _ struct{}) (string, error) {
	w := b.writer()
	w.node(n.Left())
	w.str(b.sep() + n.Type().String() + " JOIN ")
	w.node(n.Right())
	if e, ok := n.Criteria(); ok {
		w.str(" ON ")
		w.node(e)
	}
	return w.result()
}

func (b *baseVisitor) VisitTableElement(n *nodes.TableElement, _ struct{}) (string, error) {
	return b.quoteIdent(n.Name()) + " " + n.Type(), nil
}

// --- Expressions ---

func (b *baseVisitor) VisitStringLiteral(n *nodes.StringLiteral, _ struct{}) (string, error) {
	if p, ok := b.bind(n.Value()); ok {
		return p, nil
	}
	return quoting.QuoteString(n.Value()), nil
}

func (b *baseVisitor) VisitIntegerLiteral(n *nodes.IntegerLiteral, _ struct{}) (string, error) {
	if p, ok := b.bind(n.Value()); ok {
		return p, nil
	}
	return strconv.FormatInt(n.Value(), 10), nil
}

func (b *baseVisitor) VisitDoubleLiteral(n *nodes.DoubleLiteral, _ struct{}) (string, error) {
	if p, ok := b.bind(n.Value()); ok {
		return p, nil
	}
	return n.String(), nil
}

func (b *baseVisitor) VisitBooleanLiteral(n *nodes.BooleanLiteral, _ struct{}) (string, error) {
	if p, ok := b.bind(n.Value()); ok {
		return p, nil
	}
	if n.Value() {
		return "TRUE", nil
	}
	return "FALSE", nil
}

// NULL always renders as the keyword, never as a parameter.
func (b *baseVisitor) VisitNullLiteral(*nodes.NullLiteral, struct{}) (string, error) {
	return "NULL", nil
}

func (b *baseVisitor) VisitColumnReference(n *nodes.ColumnReference, _ struct{}) (string, error) {
	return b.name(n.Name()), nil
}

func (b *baseVisitor) VisitComparisonExpression(n *nodes.ComparisonExpression, _ struct{}) (string, error) {
	return b.infix(n.Left(), n.Operator().String(), n.Right())
}

func (b *baseVisitor) VisitLogicalBinaryExpression(n *nodes.LogicalBinaryExpression, _ struct{}) (string, error) {
	return b.infix(n.Left(), n.Operator().String(), n.Right())
}

func (b *baseVisitor) VisitNotExpression(n *nodes.NotExpression, _ struct{}) (string, error) {
	s, err := b.operand(n.Value())
	if err != nil {
		return "", err
	}
	return "NOT " + s, nil
}

func (b *baseVisitor) VisitArithmeticBinaryExpression(n *nodes.ArithmeticBinaryExpression, _ struct{}) (string, error) {
	return b.infix(n.Left(), n.Operator().String(), n.Right())
}

func (b *baseVisitor) VisitFunctionCall(n *nodes.FunctionCall, _ struct{}) (string, error) {
	w := b.writer()
	w.str(n.Name().String() + "(")
	writeList(w, n.Arguments(), ", ")
	w.str(")")
	return w.result()
}

func (b *baseVisitor) infix(left nodes.Expression, op string, right nodes.Expression) (string, error) {
	l, err := b.operand(left)
	if err != nil {
		return "", err
	}
	r, err := b.operand(right)
	if err != nil {
		return "", err
	}
	return l + " " + op + " " + r, nil
}
