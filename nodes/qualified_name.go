package nodes

import (
	"fmt"
	"strings"
)

// QualifiedName is a dotted identifier such as "db.orders". The zero value
// is the absent name and is rejected wherever a name is required.
type QualifiedName struct {
	parts []string
}

// NewQualifiedName builds a name from its parts. At least one part is
// required and no part may be empty.
func NewQualifiedName(parts ...string) (QualifiedName, error) {
	if len(parts) == 0 {
		return QualifiedName{}, ErrEmptyQualifiedName
	}
	for i, p := range parts {
		if p == "" {
			return QualifiedName{}, fmt.Errorf("part %d: %w", i, ErrEmptyQualifiedName)
		}
	}
	cp := make([]string, len(parts))
	copy(cp, parts)
	return QualifiedName{parts: cp}, nil
}

// ParseQualifiedName splits s on dots.
func ParseQualifiedName(s string) (QualifiedName, error) {
	if s == "" {
		return QualifiedName{}, ErrEmptyQualifiedName
	}
	return NewQualifiedName(strings.Split(s, ".")...)
}

// MustQualifiedName is like NewQualifiedName but panics on error.
func MustQualifiedName(parts ...string) QualifiedName {
	n, err := NewQualifiedName(parts...)
	if err != nil {
		panic(err)
	}
	return n
}

// IsZero reports whether the name is absent.
func (q QualifiedName) IsZero() bool { return len(q.parts) == 0 }

// Parts returns a copy of the name parts.
func (q QualifiedName) Parts() []string {
	cp := make([]string, len(q.parts))
	copy(cp, q.parts)
	return cp
}

// Suffix is the last part, used as the unqualified name.
func (q QualifiedName) Suffix() string {
	if q.IsZero() {
		return ""
	}
	return q.parts[len(q.parts)-1]
}

// Prefix returns the name without its last part, if there is one.
func (q QualifiedName) Prefix() (QualifiedName, bool) {
	if len(q.parts) < 2 {
		return QualifiedName{}, false
	}
	return QualifiedName{parts: q.parts[:len(q.parts)-1 : len(q.parts)-1]}, true
}

func (q QualifiedName) String() string { return strings.Join(q.parts, ".") }

func (q QualifiedName) Equal(o QualifiedName) bool {
	if len(q.parts) != len(o.parts) {
		return false
	}
	for i := range q.parts {
		if q.parts[i] != o.parts[i] {
			return false
		}
	}
	return true
}

func (q QualifiedName) Hash() uint64 {
	h := newHasher("QualifiedName").u64(uint64(len(q.parts)))
	for _, p := range q.parts {
		h.str(p)
	}
	return h.sum()
}
