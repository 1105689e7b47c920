package nodes

import "errors"

// Construction errors. Constructors wrap these with the offending field so
// callers can match them with errors.Is.
var (
	ErrMissingName        = errors.New("nodes: name is required")
	ErrEmptyQualifiedName = errors.New("nodes: qualified name needs at least one non-empty part")
	ErrMissingQuery       = errors.New("nodes: query is required")
	ErrMissingProperties  = errors.New("nodes: property value is required")
	ErrDuplicateProperty  = errors.New("nodes: duplicate property key")
	ErrInvalidProperty    = errors.New("nodes: property key must not be empty")
	ErrMissingExpression  = errors.New("nodes: expression is required")
	ErrMissingRelation    = errors.New("nodes: relation is required")
	ErrMissingStatement   = errors.New("nodes: statement is required")
	ErrEmptySelect        = errors.New("nodes: select list must not be empty")
	ErrInvalidLimit       = errors.New("nodes: limit must not be negative")
	ErrMissingAlias       = errors.New("nodes: alias must not be empty")
	ErrMissingColumn      = errors.New("nodes: column name and type are required")

	// ErrUnsupportedNode is returned by DefaultVisitor when no fallback is set.
	ErrUnsupportedNode = errors.New("nodes: unsupported node")
	// ErrNilNode is returned by Accept when given a nil node.
	ErrNilNode = errors.New("nodes: nil node")
)
