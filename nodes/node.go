// Package nodes defines the immutable AST node model for KSQL statements.
//
// Every node is a value: it is fully built by its constructor, never
// mutated afterwards, and compared structurally with Equal and Hash.
// Parse-time source locations ride along as metadata and never take part
// in equality. Operations over the tree are written as Visitor
// implementations and dispatched with Accept.
package nodes

// Node is the interface that all AST nodes implement.
//
// The unexported accept method seals the set of variants to this package:
// adding a variant means adding a Visitor method, so every visitor stops
// compiling until it handles the new node.
type Node interface {
	// Location returns the parse position of the node, if it was parsed.
	Location() (NodeLocation, bool)
	// Equal reports structural equality. Locations are ignored.
	Equal(other Node) bool
	// Hash is consistent with Equal: equal nodes have equal hashes.
	Hash() uint64
	String() string

	accept(d dispatcher)
}

// Statement is a top-level KSQL statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a scalar expression.
type Expression interface {
	Node
	expressionNode()
}

// Relation is a source of rows in a FROM clause.
type Relation interface {
	Node
	relationNode()
}

// SelectItem is one entry of a SELECT list.
type SelectItem interface {
	Node
	selectItemNode()
}

// Option configures metadata on a node at construction time.
type Option func(*base)

// At attaches a parse location to the node being constructed.
func At(loc NodeLocation) Option {
	return func(b *base) {
		b.loc = loc
		b.hasLoc = true
	}
}

// base carries the metadata shared by all nodes.
type base struct {
	loc    NodeLocation
	hasLoc bool
}

func newBase(opts []Option) base {
	var b base
	for _, opt := range opts {
		if opt != nil {
			opt(&b)
		}
	}
	return b
}

func (b base) Location() (NodeLocation, bool) { return b.loc, b.hasLoc }

// equalOptional compares two possibly-absent children.
func equalOptional(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func equalSlices[T Node](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
