package visitors

import "github.com/bawdo/ksqltree/internal/quoting"

// KSQLVisitor generates ksqlDB SQL. Plain upper-case identifiers stay bare;
// anything else is backticked so its case survives.
type KSQLVisitor struct {
	*baseVisitor
}

var _ Formatter = (*KSQLVisitor)(nil)

// NewKSQLVisitor creates a KSQLVisitor ready for use.
func NewKSQLVisitor(opts ...Option) *KSQLVisitor {
	v := &KSQLVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:      v,
		dialect:    "ksql",
		quoteIdent: quoting.BacktickIfNeeded,
		streams:    true,
	}
	v.applyOptions(opts)
	return v
}
