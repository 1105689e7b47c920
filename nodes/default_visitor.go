package nodes

import "fmt"

// DefaultVisitor implements every Visitor method by delegating to Fallback.
// Embed it in a visitor that only cares about some variants and override
// those methods; the rest reach Fallback. With no Fallback set, unhandled
// variants fail with ErrUnsupportedNode.
type DefaultVisitor[R, C any] struct {
	Fallback func(n Node, ctx C) (R, error)
}

var _ Visitor[any, any] = DefaultVisitor[any, any]{}

func (d DefaultVisitor[R, C]) visitDefault(n Node, ctx C) (R, error) {
	if d.Fallback != nil {
		return d.Fallback(n, ctx)
	}
	var zero R
	if loc := LocationString(n); loc != "" {
		return zero, fmt.Errorf("%w: %T at %s", ErrUnsupportedNode, n, loc)
	}
	return zero, fmt.Errorf("%w: %T", ErrUnsupportedNode, n)
}

func (d DefaultVisitor[R, C]) VisitStatements(n *Statements, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitCreateTableAsSelect(n *CreateTableAsSelect, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitCreateStreamAsSelect(n *CreateStreamAsSelect, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitCreateTable(n *CreateTable, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitCreateStream(n *CreateStream, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitInsertInto(n *InsertInto, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitDropTable(n *DropTable, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitDropStream(n *DropStream, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitQuery(n *Query, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitSelect(n *Select, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitSingleColumn(n *SingleColumn, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitAllColumns(n *AllColumns, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitTable(n *Table, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitAliasedRelation(n *AliasedRelation, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitJoin(n *Join, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitTableElement(n *TableElement, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitStringLiteral(n *StringLiteral, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitIntegerLiteral(n *IntegerLiteral, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitDoubleLiteral(n *DoubleLiteral, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitBooleanLiteral(n *BooleanLiteral, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitNullLiteral(n *NullLiteral, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitColumnReference(n *ColumnReference, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitComparisonExpression(n *ComparisonExpression, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitLogicalBinaryExpression(n *LogicalBinaryExpression, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitNotExpression(n *NotExpression, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitArithmeticBinaryExpression(n *ArithmeticBinaryExpression, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
func (d DefaultVisitor[R, C]) VisitFunctionCall(n *FunctionCall, ctx C) (R, error) {
	return d.visitDefault(n, ctx)
}
