package nodes

import (
	"math"
	"strconv"
	"strings"
)

// StringLiteral is a single-quoted string constant.
type StringLiteral struct {
	base
	value string
}

func NewStringLiteral(value string, opts ...Option) *StringLiteral {
	return &StringLiteral{base: newBase(opts), value: value}
}

func (n *StringLiteral) Value() string       { return n.value }
func (n *StringLiteral) expressionNode()     {}
func (n *StringLiteral) accept(d dispatcher) { d.stringLiteral(n) }

func (n *StringLiteral) Equal(other Node) bool {
	o, ok := other.(*StringLiteral)
	return ok && o != nil && n.value == o.value
}

func (n *StringLiteral) Hash() uint64 { return newHasher("StringLiteral").str(n.value).sum() }

func (n *StringLiteral) String() string {
	return "'" + strings.ReplaceAll(n.value, "'", "''") + "'"
}

// IntegerLiteral is a whole-number constant.
type IntegerLiteral struct {
	base
	value int64
}

func NewIntegerLiteral(value int64, opts ...Option) *IntegerLiteral {
	return &IntegerLiteral{base: newBase(opts), value: value}
}

func (n *IntegerLiteral) Value() int64        { return n.value }
func (n *IntegerLiteral) expressionNode()     {}
func (n *IntegerLiteral) accept(d dispatcher) { d.integerLiteral(n) }

func (n *IntegerLiteral) Equal(other Node) bool {
	o, ok := other.(*IntegerLiteral)
	return ok && o != nil && n.value == o.value
}

func (n *IntegerLiteral) Hash() uint64 {
	return newHasher("IntegerLiteral").u64(uint64(n.value)).sum()
}

func (n *IntegerLiteral) String() string { return strconv.FormatInt(n.value, 10) }

// DoubleLiteral is a floating point constant. Two literals are equal when
// their bit patterns match, which keeps NaN reflexive.
type DoubleLiteral struct {
	base
	value float64
}

func NewDoubleLiteral(value float64, opts ...Option) *DoubleLiteral {
	return &DoubleLiteral{base: newBase(opts), value: value}
}

func (n *DoubleLiteral) Value() float64      { return n.value }
func (n *DoubleLiteral) expressionNode()     {}
func (n *DoubleLiteral) accept(d dispatcher) { d.doubleLiteral(n) }

func (n *DoubleLiteral) Equal(other Node) bool {
	o, ok := other.(*DoubleLiteral)
	return ok && o != nil && math.Float64bits(n.value) == math.Float64bits(o.value)
}

func (n *DoubleLiteral) Hash() uint64 { return newHasher("DoubleLiteral").float(n.value).sum() }

func (n *DoubleLiteral) String() string {
	s := strconv.FormatFloat(n.value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// BooleanLiteral is TRUE or FALSE.
type BooleanLiteral struct {
	base
	value bool
}

func NewBooleanLiteral(value bool, opts ...Option) *BooleanLiteral {
	return &BooleanLiteral{base: newBase(opts), value: value}
}

func (n *BooleanLiteral) Value() bool         { return n.value }
func (n *BooleanLiteral) expressionNode()     {}
func (n *BooleanLiteral) accept(d dispatcher) { d.booleanLiteral(n) }

func (n *BooleanLiteral) Equal(other Node) bool {
	o, ok := other.(*BooleanLiteral)
	return ok && o != nil && n.value == o.value
}

func (n *BooleanLiteral) Hash() uint64 { return newHasher("BooleanLiteral").boolean(n.value).sum() }

func (n *BooleanLiteral) String() string {
	if n.value {
		return "true"
	}
	return "false"
}

// NullLiteral is the NULL constant. All NullLiterals are equal.
type NullLiteral struct {
	base
}

func NewNullLiteral(opts ...Option) *NullLiteral {
	return &NullLiteral{base: newBase(opts)}
}

func (n *NullLiteral) expressionNode()     {}
func (n *NullLiteral) accept(d dispatcher) { d.nullLiteral(n) }

func (n *NullLiteral) Equal(other Node) bool {
	o, ok := other.(*NullLiteral)
	return ok && o != nil
}

func (n *NullLiteral) Hash() uint64   { return newHasher("NullLiteral").sum() }
func (n *NullLiteral) String() string { return "null" }
