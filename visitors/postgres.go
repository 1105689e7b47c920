package visitors

import (
	"fmt"

	"github.com/bawdo/ksqltree/internal/quoting"
)

// PostgresVisitor generates PostgreSQL-dialect SQL.
// Identifiers are quoted with double quotes: "table"."column".
type PostgresVisitor struct {
	*baseVisitor
}

var _ Formatter = (*PostgresVisitor)(nil)

// NewPostgresVisitor creates a PostgresVisitor ready for use.
// Pass WithParams() to render literals as $n placeholders.
func NewPostgresVisitor(opts ...Option) *PostgresVisitor {
	v := &PostgresVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:       v,
		dialect:     "postgres",
		quoteIdent:  quoting.DoubleQuote,
		placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	}
	v.applyOptions(opts)
	return v
}
