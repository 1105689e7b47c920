package nodes

import "fmt"

// NodeLocation is the 1-based line and column at which a node was parsed.
// It exists for diagnostics only.
type NodeLocation struct {
	Line   int
	Column int
}

func (l NodeLocation) String() string {
	return fmt.Sprintf("Line: %d, Col: %d", l.Line, l.Column)
}

// LocationString formats the location of n for error messages, or returns
// an empty string when n carries no location.
func LocationString(n Node) string {
	if n == nil {
		return ""
	}
	if loc, ok := n.Location(); ok {
		return loc.String()
	}
	return ""
}
