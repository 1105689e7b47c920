// Package testutil provides shared test helpers for the ksqltree project.
package testutil

import "github.com/bawdo/ksqltree/nodes"

// StubVisitor implements nodes.Visitor and records every method it is
// called through. Each method returns a short sentinel naming the variant.
type StubVisitor struct {
	Calls []string
}

var _ nodes.Visitor[string, any] = (*StubVisitor)(nil)

func (sv *StubVisitor) hit(name string) (string, error) {
	sv.Calls = append(sv.Calls, name)
	return name, nil
}

func (sv *StubVisitor) VisitStatements(*nodes.Statements, any) (string, error) {
	return sv.hit("statements")
}
func (sv *StubVisitor) VisitCreateTableAsSelect(*nodes.CreateTableAsSelect, any) (string, error) {
	return sv.hit("create_table_as_select")
}
func (sv *StubVisitor) VisitCreateStreamAsSelect(*nodes.CreateStreamAsSelect, any) (string, error) {
	return sv.hit("create_stream_as_select")
}
func (sv *StubVisitor) VisitCreateTable(*nodes.CreateTable, any) (string, error) {
	return sv.hit("create_table")
}
func (sv *StubVisitor) VisitCreateStream(*nodes.CreateStream, any) (string, error) {
	return sv.hit("create_stream")
}
func (sv *StubVisitor) VisitInsertInto(*nodes.InsertInto, any) (string, error) {
	return sv.hit("insert_into")
}
func (sv *StubVisitor) VisitDropTable(*nodes.DropTable, any) (string, error) {
	return sv.hit("drop_table")
}
func (sv *StubVisitor) VisitDropStream(*nodes.DropStream, any) (string, error) {
	return sv.hit("drop_stream")
}
func (sv *StubVisitor) VisitQuery(*nodes.Query, any) (string, error) { return sv.hit("query") }
func (sv *StubVisitor) VisitSelect(*nodes.Select, any) (string, error) {
	return sv.hit("select")
}
func (sv *StubVisitor) VisitSingleColumn(*nodes.SingleColumn, any) (string, error) {
	return sv.hit("single_column")
}
func (sv *StubVisitor) VisitAllColumns(*nodes.AllColumns, any) (string, error) {
	return sv.hit("all_columns")
}
func (sv *StubVisitor) VisitTable(*nodes.Table, any) (string, error) { return sv.hit("table") }
func (sv *StubVisitor) VisitAliasedRelation(*nodes.AliasedRelation, any) (string, error) {
	return sv.hit("aliased_relation")
}
func (sv *StubVisitor) VisitJoin(*nodes.Join, any) (string, error) { return sv.hit("join") }
func (sv *StubVisitor) VisitTableElement(*nodes.TableElement, any) (string, error) {
	return sv.hit("table_element")
}
func (sv *StubVisitor) VisitStringLiteral(*nodes.StringLiteral, any) (string, error) {
	return sv.hit("string_literal")
}
func (sv *StubVisitor) VisitIntegerLiteral(*nodes.IntegerLiteral, any) (string, error) {
	return sv.hit("integer_literal")
}
func (sv *StubVisitor) VisitDoubleLiteral(*nodes.DoubleLiteral, any) (string, error) {
	return sv.hit("double_literal")
}
func (sv *StubVisitor) VisitBooleanLiteral(*nodes.BooleanLiteral, any) (string, error) {
	return sv.hit("boolean_literal")
}
func (sv *StubVisitor) VisitNullLiteral(*nodes.NullLiteral, any) (string, error) {
	return sv.hit("null_literal")
}
func (sv *StubVisitor) VisitColumnReference(*nodes.ColumnReference, any) (string, error) {
	return sv.hit("column_reference")
}
func (sv *StubVisitor) VisitComparisonExpression(*nodes.ComparisonExpression, any) (string, error) {
	return sv.hit("comparison")
}
func (sv *StubVisitor) VisitLogicalBinaryExpression(*nodes.LogicalBinaryExpression, any) (string, error) {
	return sv.hit("logical_binary")
}
func (sv *StubVisitor) VisitNotExpression(*nodes.NotExpression, any) (string, error) {
	return sv.hit("not")
}
func (sv *StubVisitor) VisitArithmeticBinaryExpression(*nodes.ArithmeticBinaryExpression, any) (string, error) {
	return sv.hit("arithmetic_binary")
}
func (sv *StubVisitor) VisitFunctionCall(*nodes.FunctionCall, any) (string, error) {
	return sv.hit("function_call")
}
