package nodes

import (
	"fmt"
	"strings"
)

// ColumnReference names a column, optionally qualified by its source.
type ColumnReference struct {
	base
	name QualifiedName
}

func NewColumnReference(name QualifiedName, opts ...Option) (*ColumnReference, error) {
	if name.IsZero() {
		return nil, fmt.Errorf("column reference: %w", ErrMissingName)
	}
	return &ColumnReference{base: newBase(opts), name: name}, nil
}

// Column is a convenience for NewColumnReference with a dotted name.
// It panics on an empty name.
func Column(dotted string, opts ...Option) *ColumnReference {
	c, err := NewColumnReference(mustParse(dotted), opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func mustParse(dotted string) QualifiedName {
	n, err := ParseQualifiedName(dotted)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *ColumnReference) Name() QualifiedName { return n.name }
func (n *ColumnReference) expressionNode()     {}
func (n *ColumnReference) accept(d dispatcher) { d.columnReference(n) }

func (n *ColumnReference) Equal(other Node) bool {
	o, ok := other.(*ColumnReference)
	return ok && o != nil && n.name.Equal(o.name)
}

func (n *ColumnReference) Hash() uint64 {
	return newHasher("ColumnReference").u64(n.name.Hash()).sum()
}

func (n *ColumnReference) String() string { return n.name.String() }

// ComparisonOp is the operator of a ComparisonExpression.
type ComparisonOp int

const (
	OpEqual ComparisonOp = iota
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpIsDistinctFrom
)

var comparisonOpText = [...]string{
	OpEqual:              "=",
	OpNotEqual:           "<>",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpIsDistinctFrom:     "IS DISTINCT FROM",
}

func (op ComparisonOp) String() string {
	if op < 0 || int(op) >= len(comparisonOpText) {
		return fmt.Sprintf("ComparisonOp(%d)", int(op))
	}
	return comparisonOpText[op]
}

// ComparisonExpression is "left op right".
type ComparisonExpression struct {
	base
	op          ComparisonOp
	left, right Expression
}

func NewComparisonExpression(op ComparisonOp, left, right Expression, opts ...Option) (*ComparisonExpression, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("comparison %s: %w", op, ErrMissingExpression)
	}
	return &ComparisonExpression{base: newBase(opts), op: op, left: left, right: right}, nil
}

func (n *ComparisonExpression) Operator() ComparisonOp { return n.op }
func (n *ComparisonExpression) Left() Expression       { return n.left }
func (n *ComparisonExpression) Right() Expression      { return n.right }
func (n *ComparisonExpression) expressionNode()        {}
func (n *ComparisonExpression) accept(d dispatcher)    { d.comparison(n) }

func (n *ComparisonExpression) Equal(other Node) bool {
	o, ok := other.(*ComparisonExpression)
	return ok && o != nil && n.op == o.op && n.left.Equal(o.left) && n.right.Equal(o.right)
}

func (n *ComparisonExpression) Hash() uint64 {
	return newHasher("ComparisonExpression").u64(uint64(n.op)).node(n.left).node(n.right).sum()
}

func (n *ComparisonExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", n.left, n.op, n.right)
}

// LogicalOp is AND or OR.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

func (op LogicalOp) String() string {
	if op == OpOr {
		return "OR"
	}
	return "AND"
}

// LogicalBinaryExpression is "left AND right" or "left OR right".
type LogicalBinaryExpression struct {
	base
	op          LogicalOp
	left, right Expression
}

func NewLogicalBinaryExpression(op LogicalOp, left, right Expression, opts ...Option) (*LogicalBinaryExpression, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("logical %s: %w", op, ErrMissingExpression)
	}
	return &LogicalBinaryExpression{base: newBase(opts), op: op, left: left, right: right}, nil
}

func (n *LogicalBinaryExpression) Operator() LogicalOp { return n.op }
func (n *LogicalBinaryExpression) Left() Expression    { return n.left }
func (n *LogicalBinaryExpression) Right() Expression   { return n.right }
func (n *LogicalBinaryExpression) expressionNode()     {}
func (n *LogicalBinaryExpression) accept(d dispatcher) { d.logicalBinary(n) }

func (n *LogicalBinaryExpression) Equal(other Node) bool {
	o, ok := other.(*LogicalBinaryExpression)
	return ok && o != nil && n.op == o.op && n.left.Equal(o.left) && n.right.Equal(o.right)
}

func (n *LogicalBinaryExpression) Hash() uint64 {
	return newHasher("LogicalBinaryExpression").u64(uint64(n.op)).node(n.left).node(n.right).sum()
}

func (n *LogicalBinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", n.left, n.op, n.right)
}

// NotExpression negates a boolean expression.
type NotExpression struct {
	base
	value Expression
}

func NewNotExpression(value Expression, opts ...Option) (*NotExpression, error) {
	if value == nil {
		return nil, fmt.Errorf("not: %w", ErrMissingExpression)
	}
	return &NotExpression{base: newBase(opts), value: value}, nil
}

func (n *NotExpression) Value() Expression   { return n.value }
func (n *NotExpression) expressionNode()     {}
func (n *NotExpression) accept(d dispatcher) { d.not(n) }

func (n *NotExpression) Equal(other Node) bool {
	o, ok := other.(*NotExpression)
	return ok && o != nil && n.value.Equal(o.value)
}

func (n *NotExpression) Hash() uint64 { return newHasher("NotExpression").node(n.value).sum() }

func (n *NotExpression) String() string { return fmt.Sprintf("(NOT %s)", n.value) }

// ArithmeticOp is a binary arithmetic operator.
type ArithmeticOp int

const (
	OpAdd ArithmeticOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
)

var arithmeticOpText = [...]string{
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpModulus:  "%",
}

func (op ArithmeticOp) String() string {
	if op < 0 || int(op) >= len(arithmeticOpText) {
		return fmt.Sprintf("ArithmeticOp(%d)", int(op))
	}
	return arithmeticOpText[op]
}

// ArithmeticBinaryExpression is "left op right" for +, -, *, / and %.
type ArithmeticBinaryExpression struct {
	base
	op          ArithmeticOp
	left, right Expression
}

func NewArithmeticBinaryExpression(op ArithmeticOp, left, right Expression, opts ...Option) (*ArithmeticBinaryExpression, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("arithmetic %s: %w", op, ErrMissingExpression)
	}
	return &ArithmeticBinaryExpression{base: newBase(opts), op: op, left: left, right: right}, nil
}

func (n *ArithmeticBinaryExpression) Operator() ArithmeticOp { return n.op }
func (n *ArithmeticBinaryExpression) Left() Expression       { return n.left }
func (n *ArithmeticBinaryExpression) Right() Expression      { return n.right }
func (n *ArithmeticBinaryExpression) expressionNode()        {}
func (n *ArithmeticBinaryExpression) accept(d dispatcher)    { d.arithmeticBinary(n) }

func (n *ArithmeticBinaryExpression) Equal(other Node) bool {
	o, ok := other.(*ArithmeticBinaryExpression)
	return ok && o != nil && n.op == o.op && n.left.Equal(o.left) && n.right.Equal(o.right)
}

func (n *ArithmeticBinaryExpression) Hash() uint64 {
	return newHasher("ArithmeticBinaryExpression").u64(uint64(n.op)).node(n.left).node(n.right).sum()
}

func (n *ArithmeticBinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", n.left, n.op, n.right)
}

// FunctionCall invokes a named scalar or aggregate function.
type FunctionCall struct {
	base
	name QualifiedName
	args []Expression
}

func NewFunctionCall(name QualifiedName, args []Expression, opts ...Option) (*FunctionCall, error) {
	if name.IsZero() {
		return nil, fmt.Errorf("function call: %w", ErrMissingName)
	}
	cp := make([]Expression, len(args))
	for i, a := range args {
		if a == nil {
			return nil, fmt.Errorf("function %s argument %d: %w", name, i, ErrMissingExpression)
		}
		cp[i] = a
	}
	return &FunctionCall{base: newBase(opts), name: name, args: cp}, nil
}

func (n *FunctionCall) Name() QualifiedName { return n.name }

// Arguments returns a copy of the argument list.
func (n *FunctionCall) Arguments() []Expression {
	cp := make([]Expression, len(n.args))
	copy(cp, n.args)
	return cp
}

func (n *FunctionCall) expressionNode()     {}
func (n *FunctionCall) accept(d dispatcher) { d.functionCall(n) }

func (n *FunctionCall) Equal(other Node) bool {
	o, ok := other.(*FunctionCall)
	return ok && o != nil && n.name.Equal(o.name) && equalSlices(n.args, o.args)
}

func (n *FunctionCall) Hash() uint64 {
	h := newHasher("FunctionCall").u64(n.name.Hash())
	return hashSlice(h, n.args).sum()
}

func (n *FunctionCall) String() string {
	args := make([]string, len(n.args))
	for i, a := range n.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.name, strings.Join(args, ", "))
}
