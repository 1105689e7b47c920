package nodes

// Children returns the direct children of n in source order. Absent
// optional children are skipped.
func Children(n Node) []Node {
	kids, _ := Accept[[]Node, struct{}](n, childrenVisitor{}, struct{}{})
	return kids
}

// Inspect traverses the tree rooted at n depth-first. It calls fn for each
// node; if fn returns false the node's children are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

type childrenVisitor struct{}

var _ Visitor[[]Node, struct{}] = childrenVisitor{}

func collect(items ...Node) []Node {
	out := make([]Node, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

func appendAll[T Node](out []Node, items []T) []Node {
	for _, it := range items {
		out = append(out, it)
	}
	return out
}

func (childrenVisitor) VisitStatements(n *Statements, _ struct{}) ([]Node, error) {
	return appendAll(nil, n.list), nil
}

func (childrenVisitor) VisitCreateTableAsSelect(n *CreateTableAsSelect, _ struct{}) ([]Node, error) {
	return propertyValues(collect(n.query), n.properties), nil
}

func (childrenVisitor) VisitCreateStreamAsSelect(n *CreateStreamAsSelect, _ struct{}) ([]Node, error) {
	out := propertyValues(collect(n.query), n.properties)
	if n.partitionBy != nil {
		out = append(out, n.partitionBy)
	}
	return out, nil
}

func (childrenVisitor) VisitCreateTable(n *CreateTable, _ struct{}) ([]Node, error) {
	return propertyValues(appendAll(nil, n.elements), n.properties), nil
}

func (childrenVisitor) VisitCreateStream(n *CreateStream, _ struct{}) ([]Node, error) {
	return propertyValues(appendAll(nil, n.elements), n.properties), nil
}

func (childrenVisitor) VisitInsertInto(n *InsertInto, _ struct{}) ([]Node, error) {
	return collect(n.query, n.partitionBy), nil
}

func (childrenVisitor) VisitDropTable(*DropTable, struct{}) ([]Node, error)   { return nil, nil }
func (childrenVisitor) VisitDropStream(*DropStream, struct{}) ([]Node, error) { return nil, nil }

func (childrenVisitor) VisitQuery(n *Query, _ struct{}) ([]Node, error) {
	out := collect(n.sel, n.from, n.where)
	out = appendAll(out, n.groupBy)
	if n.having != nil {
		out = append(out, n.having)
	}
	return out, nil
}

func (childrenVisitor) VisitSelect(n *Select, _ struct{}) ([]Node, error) {
	return appendAll(nil, n.items), nil
}

func (childrenVisitor) VisitSingleColumn(n *SingleColumn, _ struct{}) ([]Node, error) {
	return collect(n.expr), nil
}

func (childrenVisitor) VisitAllColumns(*AllColumns, struct{}) ([]Node, error) { return nil, nil }
func (childrenVisitor) VisitTable(*Table, struct{}) ([]Node, error)           { return nil, nil }

func (childrenVisitor) VisitAliasedRelation(n *AliasedRelation, _ struct{}) ([]Node, error) {
	return collect(n.relation), nil
}

func (childrenVisitor) VisitJoin(n *Join, _ struct{}) ([]Node, error) {
	return collect(n.left, n.right, n.criteria), nil
}

func (childrenVisitor) VisitTableElement(*TableElement, struct{}) ([]Node, error)     { return nil, nil }
func (childrenVisitor) VisitStringLiteral(*StringLiteral, struct{}) ([]Node, error)   { return nil, nil }
func (childrenVisitor) VisitIntegerLiteral(*IntegerLiteral, struct{}) ([]Node, error) { return nil, nil }
func (childrenVisitor) VisitDoubleLiteral(*DoubleLiteral, struct{}) ([]Node, error)   { return nil, nil }
func (childrenVisitor) VisitBooleanLiteral(*BooleanLiteral, struct{}) ([]Node, error) { return nil, nil }
func (childrenVisitor) VisitNullLiteral(*NullLiteral, struct{}) ([]Node, error)       { return nil, nil }
func (childrenVisitor) VisitColumnReference(*ColumnReference, struct{}) ([]Node, error) {
	return nil, nil
}

func (childrenVisitor) VisitComparisonExpression(n *ComparisonExpression, _ struct{}) ([]Node, error) {
	return collect(n.left, n.right), nil
}

func (childrenVisitor) VisitLogicalBinaryExpression(n *LogicalBinaryExpression, _ struct{}) ([]Node, error) {
	return collect(n.left, n.right), nil
}

func (childrenVisitor) VisitNotExpression(n *NotExpression, _ struct{}) ([]Node, error) {
	return collect(n.value), nil
}

func (childrenVisitor) VisitArithmeticBinaryExpression(n *ArithmeticBinaryExpression, _ struct{}) ([]Node, error) {
	return collect(n.left, n.right), nil
}

func (childrenVisitor) VisitFunctionCall(n *FunctionCall, _ struct{}) ([]Node, error) {
	return appendAll(nil, n.args), nil
}

func propertyValues(out []Node, p Properties) []Node {
	for _, k := range p.keys {
		out = append(out, p.values[k])
	}
	return out
}
