package nodes

import "fmt"

type dropSource struct {
	base
	name        QualifiedName
	ifExists    bool
	deleteTopic bool
}

func newDropSource(what string, name QualifiedName, ifExists, deleteTopic bool, opts []Option) (dropSource, error) {
	if name.IsZero() {
		return dropSource{}, fmt.Errorf("%s: %w", what, ErrMissingName)
	}
	return dropSource{base: newBase(opts), name: name, ifExists: ifExists, deleteTopic: deleteTopic}, nil
}

func (s *dropSource) Name() QualifiedName { return s.name }
func (s *dropSource) IfExists() bool      { return s.ifExists }
func (s *dropSource) DeleteTopic() bool   { return s.deleteTopic }

func (s *dropSource) equal(o *dropSource) bool {
	return s.name.Equal(o.name) && s.ifExists == o.ifExists && s.deleteTopic == o.deleteTopic
}

func (s *dropSource) hash(kind string) uint64 {
	return newHasher(kind).u64(s.name.Hash()).boolean(s.ifExists).boolean(s.deleteTopic).sum()
}

func (s *dropSource) string(kind string) string {
	return fmt.Sprintf("%s{name=%s, ifExists=%t, deleteTopic=%t}", kind, s.name, s.ifExists, s.deleteTopic)
}

// DropTable is DROP TABLE [IF EXISTS] name [DELETE TOPIC].
type DropTable struct {
	dropSource
}

func NewDropTable(name QualifiedName, ifExists, deleteTopic bool, opts ...Option) (*DropTable, error) {
	s, err := newDropSource("drop table", name, ifExists, deleteTopic, opts)
	if err != nil {
		return nil, err
	}
	return &DropTable{dropSource: s}, nil
}

func (n *DropTable) statementNode()      {}
func (n *DropTable) accept(d dispatcher) { d.dropTable(n) }

func (n *DropTable) Equal(other Node) bool {
	o, ok := other.(*DropTable)
	return ok && o != nil && n.equal(&o.dropSource)
}

func (n *DropTable) Hash() uint64   { return n.hash("DropTable") }
func (n *DropTable) String() string { return n.string("DropTable") }

// DropStream is DROP STREAM [IF EXISTS] name [DELETE TOPIC].
type DropStream struct {
	dropSource
}

func NewDropStream(name QualifiedName, ifExists, deleteTopic bool, opts ...Option) (*DropStream, error) {
	s, err := newDropSource("drop stream", name, ifExists, deleteTopic, opts)
	if err != nil {
		return nil, err
	}
	return &DropStream{dropSource: s}, nil
}

func (n *DropStream) statementNode()      {}
func (n *DropStream) accept(d dispatcher) { d.dropStream(n) }

func (n *DropStream) Equal(other Node) bool {
	o, ok := other.(*DropStream)
	return ok && o != nil && n.equal(&o.dropSource)
}

func (n *DropStream) Hash() uint64   { return n.hash("DropStream") }
func (n *DropStream) String() string { return n.string("DropStream") }
