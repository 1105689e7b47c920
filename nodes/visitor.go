package nodes

// Visitor defines one operation per concrete node variant. R is the result
// type and C a caller-supplied context passed through unchanged.
//
// Concrete visitors (formatters, analyzers, rewriters) implement this
// interface; embed DefaultVisitor to handle only a subset of variants.
type Visitor[R, C any] interface {
	// Statements
	VisitStatements(n *Statements, ctx C) (R, error)
	VisitCreateTableAsSelect(n *CreateTableAsSelect, ctx C) (R, error)
	VisitCreateStreamAsSelect(n *CreateStreamAsSelect, ctx C) (R, error)
	VisitCreateTable(n *CreateTable, ctx C) (R, error)
	VisitCreateStream(n *CreateStream, ctx C) (R, error)
	VisitInsertInto(n *InsertInto, ctx C) (R, error)
	VisitDropTable(n *DropTable, ctx C) (R, error)
	VisitDropStream(n *DropStream, ctx C) (R, error)
	VisitQuery(n *Query, ctx C) (R, error)

	// Query structure
	VisitSelect(n *Select, ctx C) (R, error)
	VisitSingleColumn(n *SingleColumn, ctx C) (R, error)
	VisitAllColumns(n *AllColumns, ctx C) (R, error)
	VisitTable(n *Table, ctx C) (R, error)
	VisitAliasedRelation(n *AliasedRelation, ctx C) (R, error)
	VisitJoin(n *Join, ctx C) (R, error)
	VisitTableElement(n *TableElement, ctx C) (R, error)

	// Expressions
	VisitStringLiteral(n *StringLiteral, ctx C) (R, error)
	VisitIntegerLiteral(n *IntegerLiteral, ctx C) (R, error)
	VisitDoubleLiteral(n *DoubleLiteral, ctx C) (R, error)
	VisitBooleanLiteral(n *BooleanLiteral, ctx C) (R, error)
	VisitNullLiteral(n *NullLiteral, ctx C) (R, error)
	VisitColumnReference(n *ColumnReference, ctx C) (R, error)
	VisitComparisonExpression(n *ComparisonExpression, ctx C) (R, error)
	VisitLogicalBinaryExpression(n *LogicalBinaryExpression, ctx C) (R, error)
	VisitNotExpression(n *NotExpression, ctx C) (R, error)
	VisitArithmeticBinaryExpression(n *ArithmeticBinaryExpression, ctx C) (R, error)
	VisitFunctionCall(n *FunctionCall, ctx C) (R, error)
}

// Accept routes n to the visitor method for its variant and returns that
// method's result. Errors from the visitor are returned unchanged.
func Accept[R, C any](n Node, v Visitor[R, C], ctx C) (R, error) {
	if n == nil {
		var zero R
		return zero, ErrNilNode
	}
	d := &dispatch[R, C]{v: v, ctx: ctx}
	n.accept(d)
	return d.result, d.err
}

// dispatcher is the non-generic half of the double dispatch. Nodes call the
// method for their own variant; dispatch forwards to the typed Visitor.
type dispatcher interface {
	statements(*Statements)
	createTableAsSelect(*CreateTableAsSelect)
	createStreamAsSelect(*CreateStreamAsSelect)
	createTable(*CreateTable)
	createStream(*CreateStream)
	insertInto(*InsertInto)
	dropTable(*DropTable)
	dropStream(*DropStream)
	query(*Query)
	selectNode(*Select)
	singleColumn(*SingleColumn)
	allColumns(*AllColumns)
	table(*Table)
	aliasedRelation(*AliasedRelation)
	join(*Join)
	tableElement(*TableElement)
	stringLiteral(*StringLiteral)
	integerLiteral(*IntegerLiteral)
	doubleLiteral(*DoubleLiteral)
	booleanLiteral(*BooleanLiteral)
	nullLiteral(*NullLiteral)
	columnReference(*ColumnReference)
	comparison(*ComparisonExpression)
	logicalBinary(*LogicalBinaryExpression)
	not(*NotExpression)
	arithmeticBinary(*ArithmeticBinaryExpression)
	functionCall(*FunctionCall)
}

type dispatch[R, C any] struct {
	v      Visitor[R, C]
	ctx    C
	result R
	err    error
}

var _ dispatcher = (*dispatch[any, any])(nil)

func (d *dispatch[R, C]) statements(n *Statements) {
	d.result, d.err = d.v.VisitStatements(n, d.ctx)
}
func (d *dispatch[R, C]) createTableAsSelect(n *CreateTableAsSelect) {
	d.result, d.err = d.v.VisitCreateTableAsSelect(n, d.ctx)
}
func (d *dispatch[R, C]) createStreamAsSelect(n *CreateStreamAsSelect) {
	d.result, d.err = d.v.VisitCreateStreamAsSelect(n, d.ctx)
}
func (d *dispatch[R, C]) createTable(n *CreateTable) {
	d.result, d.err = d.v.VisitCreateTable(n, d.ctx)
}
func (d *dispatch[R, C]) createStream(n *CreateStream) {
	d.result, d.err = d.v.VisitCreateStream(n, d.ctx)
}
func (d *dispatch[R, C]) insertInto(n *InsertInto) {
	d.result, d.err = d.v.VisitInsertInto(n, d.ctx)
}
func (d *dispatch[R, C]) dropTable(n *DropTable) {
	d.result, d.err = d.v.VisitDropTable(n, d.ctx)
}
func (d *dispatch[R, C]) dropStream(n *DropStream) {
	d.result, d.err = d.v.VisitDropStream(n, d.ctx)
}
func (d *dispatch[R, C]) query(n *Query) {
	d.result, d.err = d.v.VisitQuery(n, d.ctx)
}
func (d *dispatch[R, C]) selectNode(n *Select) {
	d.result, d.err = d.v.VisitSelect(n, d.ctx)
}
func (d *dispatch[R, C]) singleColumn(n *SingleColumn) {
	d.result, d.err = d.v.VisitSingleColumn(n, d.ctx)
}
func (d *dispatch[R, C]) allColumns(n *AllColumns) {
	d.result, d.err = d.v.VisitAllColumns(n, d.ctx)
}
func (d *dispatch[R, C]) table(n *Table) {
	d.result, d.err = d.v.VisitTable(n, d.ctx)
}
func (d *dispatch[R, C]) aliasedRelation(n *AliasedRelation) {
	d.result, d.err = d.v.VisitAliasedRelation(n, d.ctx)
}
func (d *dispatch[R, C]) join(n *Join) {
	d.result, d.err = d.v.VisitJoin(n, d.ctx)
}
func (d *dispatch[R, C]) tableElement(n *TableElement) {
	d.result, d.err = d.v.VisitTableElement(n, d.ctx)
}
func (d *dispatch[R, C]) stringLiteral(n *StringLiteral) {
	d.result, d.err = d.v.VisitStringLiteral(n, d.ctx)
}
func (d *dispatch[R, C]) integerLiteral(n *IntegerLiteral) {
	d.result, d.err = d.v.VisitIntegerLiteral(n, d.ctx)
}
func (d *dispatch[R, C]) doubleLiteral(n *DoubleLiteral) {
	d.result, d.err = d.v.VisitDoubleLiteral(n, d.ctx)
}
func (d *dispatch[R, C]) booleanLiteral(n *BooleanLiteral) {
	d.result, d.err = d.v.VisitBooleanLiteral(n, d.ctx)
}
func (d *dispatch[R, C]) nullLiteral(n *NullLiteral) {
	d.result, d.err = d.v.VisitNullLiteral(n, d.ctx)
}
func (d *dispatch[R, C]) columnReference(n *ColumnReference) {
	d.result, d.err = d.v.VisitColumnReference(n, d.ctx)
}
func (d *dispatch[R, C]) comparison(n *ComparisonExpression) {
	d.result, d.err = d.v.VisitComparisonExpression(n, d.ctx)
}
func (d *dispatch[R, C]) logicalBinary(n *LogicalBinaryExpression) {
	d.result, d.err = d.v.VisitLogicalBinaryExpression(n, d.ctx)
}
func (d *dispatch[R, C]) not(n *NotExpression) {
	d.result, d.err = d.v.VisitNotExpression(n, d.ctx)
}
func (d *dispatch[R, C]) arithmeticBinary(n *ArithmeticBinaryExpression) {
	d.result, d.err = d.v.VisitArithmeticBinaryExpression(n, d.ctx)
}
func (d *dispatch[R, C]) functionCall(n *FunctionCall) {
	d.result, d.err = d.v.VisitFunctionCall(n, d.ctx)
}
