package nodes

import (
	"fmt"
	"strings"
)

// Statements is an ordered script of statements.
type Statements struct {
	base
	list []Statement
}

func NewStatements(list []Statement, opts ...Option) (*Statements, error) {
	cp := make([]Statement, len(list))
	for i, s := range list {
		if s == nil {
			return nil, fmt.Errorf("statement %d: %w", i, ErrMissingStatement)
		}
		cp[i] = s
	}
	return &Statements{base: newBase(opts), list: cp}, nil
}

// List returns a copy of the statements.
func (n *Statements) List() []Statement {
	cp := make([]Statement, len(n.list))
	copy(cp, n.list)
	return cp
}

// WithList returns a copy of n holding list. The location is kept.
func (n *Statements) WithList(list []Statement) (*Statements, error) {
	cp, err := NewStatements(list)
	if err != nil {
		return nil, err
	}
	cp.base = n.base
	return cp, nil
}

func (n *Statements) Len() int            { return len(n.list) }
func (n *Statements) statementNode()      {}
func (n *Statements) accept(d dispatcher) { d.statements(n) }

func (n *Statements) Equal(other Node) bool {
	o, ok := other.(*Statements)
	return ok && o != nil && equalSlices(n.list, o.list)
}

func (n *Statements) Hash() uint64 { return hashSlice(newHasher("Statements"), n.list).sum() }

func (n *Statements) String() string {
	parts := make([]string, len(n.list))
	for i, s := range n.list {
		parts[i] = s.String()
	}
	return fmt.Sprintf("Statements{%s}", strings.Join(parts, ", "))
}
