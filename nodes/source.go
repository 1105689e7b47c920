package nodes

import (
	"fmt"
	"strings"
)

// TableElement is a column definition in CREATE TABLE or CREATE STREAM.
// Type is the KSQL type name as written, e.g. "VARCHAR" or "ARRAY<INT>".
type TableElement struct {
	base
	name string
	typ  string
}

func NewTableElement(name, typ string, opts ...Option) (*TableElement, error) {
	if name == "" || typ == "" {
		return nil, fmt.Errorf("column %q %q: %w", name, typ, ErrMissingColumn)
	}
	return &TableElement{base: newBase(opts), name: name, typ: typ}, nil
}

func (n *TableElement) Name() string        { return n.name }
func (n *TableElement) Type() string        { return n.typ }
func (n *TableElement) accept(d dispatcher) { d.tableElement(n) }

func (n *TableElement) Equal(other Node) bool {
	o, ok := other.(*TableElement)
	return ok && o != nil && n.name == o.name && n.typ == o.typ
}

func (n *TableElement) Hash() uint64   { return newHasher("TableElement").str(n.name).str(n.typ).sum() }
func (n *TableElement) String() string { return n.name + " " + n.typ }

// sourceDefinition is shared by CREATE TABLE and CREATE STREAM.
type sourceDefinition struct {
	base
	name       QualifiedName
	elements   []*TableElement
	notExists  bool
	properties Properties
}

func newSourceDefinition(what string, name QualifiedName, elements []*TableElement, notExists bool, properties Properties, opts []Option) (sourceDefinition, error) {
	if name.IsZero() {
		return sourceDefinition{}, fmt.Errorf("%s: %w", what, ErrMissingName)
	}
	cp := make([]*TableElement, len(elements))
	for i, e := range elements {
		if e == nil {
			return sourceDefinition{}, fmt.Errorf("%s %s element %d: %w", what, name, i, ErrMissingColumn)
		}
		cp[i] = e
	}
	return sourceDefinition{
		base:       newBase(opts),
		name:       name,
		elements:   cp,
		notExists:  notExists,
		properties: properties,
	}, nil
}

func (s *sourceDefinition) Name() QualifiedName    { return s.name }
func (s *sourceDefinition) NotExists() bool        { return s.notExists }
func (s *sourceDefinition) Properties() Properties { return s.properties }

// Elements returns a copy of the column definitions.
func (s *sourceDefinition) Elements() []*TableElement {
	cp := make([]*TableElement, len(s.elements))
	copy(cp, s.elements)
	return cp
}

func (s *sourceDefinition) equal(o *sourceDefinition) bool {
	return s.name.Equal(o.name) &&
		equalSlices(s.elements, o.elements) &&
		s.notExists == o.notExists &&
		s.properties.Equal(o.properties)
}

func (s *sourceDefinition) hash(kind string) uint64 {
	h := newHasher(kind).u64(s.name.Hash())
	hashSlice(h, s.elements)
	return h.boolean(s.notExists).u64(s.properties.Hash()).sum()
}

func (s *sourceDefinition) string(kind string) string {
	cols := make([]string, len(s.elements))
	for i, e := range s.elements {
		cols[i] = e.String()
	}
	return fmt.Sprintf("%s{name=%s, elements=[%s], notExists=%t, properties=%s}",
		kind, s.name, strings.Join(cols, ", "), s.notExists, s.properties)
}

// CreateTable registers an existing topic as a table.
type CreateTable struct {
	sourceDefinition
}

func NewCreateTable(name QualifiedName, elements []*TableElement, notExists bool, properties Properties, opts ...Option) (*CreateTable, error) {
	def, err := newSourceDefinition("create table", name, elements, notExists, properties, opts)
	if err != nil {
		return nil, err
	}
	return &CreateTable{sourceDefinition: def}, nil
}

func (n *CreateTable) statementNode()      {}
func (n *CreateTable) accept(d dispatcher) { d.createTable(n) }

func (n *CreateTable) Equal(other Node) bool {
	o, ok := other.(*CreateTable)
	return ok && o != nil && n.equal(&o.sourceDefinition)
}

func (n *CreateTable) Hash() uint64   { return n.hash("CreateTable") }
func (n *CreateTable) String() string { return n.string("CreateTable") }

// CreateStream registers an existing topic as a stream.
type CreateStream struct {
	sourceDefinition
}

func NewCreateStream(name QualifiedName, elements []*TableElement, notExists bool, properties Properties, opts ...Option) (*CreateStream, error) {
	def, err := newSourceDefinition("create stream", name, elements, notExists, properties, opts)
	if err != nil {
		return nil, err
	}
	return &CreateStream{sourceDefinition: def}, nil
}

func (n *CreateStream) statementNode()      {}
func (n *CreateStream) accept(d dispatcher) { d.createStream(n) }

func (n *CreateStream) Equal(other Node) bool {
	o, ok := other.(*CreateStream)
	return ok && o != nil && n.equal(&o.sourceDefinition)
}

func (n *CreateStream) Hash() uint64   { return n.hash("CreateStream") }
func (n *CreateStream) String() string { return n.string("CreateStream") }
