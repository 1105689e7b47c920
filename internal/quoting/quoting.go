// Package quoting provides shared identifier and literal quoting utilities.
package quoting

import "strings"

// DoubleQuote quotes an identifier using double quotes (PostgreSQL, SQLite, ANSI SQL).
// Internal double quotes are escaped by doubling them.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Backtick quotes an identifier using backticks (ksqlDB, MySQL).
// Internal backticks are escaped by doubling them.
func Backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// BacktickIfNeeded leaves plain identifiers bare and backticks the rest.
// ksqlDB upper-cases bare identifiers, so anything containing lower case
// letters must be quoted to survive a round trip.
func BacktickIfNeeded(s string) string {
	if IsPlainIdentifier(s) {
		return s
	}
	return Backtick(s)
}

// IsPlainIdentifier reports whether s can be written without quotes: an
// upper-case letter or underscore followed by upper-case letters, digits or
// underscores, and not a reserved word.
func IsPlainIdentifier(s string) bool {
	if s == "" || reserved[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

var reserved = map[string]bool{
	"AND": true, "AS": true, "BY": true, "CREATE": true, "DELETE": true,
	"DISTINCT": true, "DROP": true, "EMIT": true, "EXISTS": true, "FALSE": true,
	"FROM": true, "FULL": true, "GROUP": true, "HAVING": true, "IF": true,
	"INNER": true, "INSERT": true, "INTO": true, "IS": true, "JOIN": true,
	"LEFT": true, "LIMIT": true, "NOT": true, "NULL": true, "ON": true,
	"OR": true, "OUTER": true, "PARTITION": true, "SELECT": true, "STREAM": true,
	"TABLE": true, "TOPIC": true, "TRUE": true, "WHERE": true, "WITH": true,
}

// QuoteString renders s as a single-quoted literal, doubling embedded quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// EscapeString escapes a string literal for MySQL by doubling single quotes
// and escaping backslashes.
//
// SECURITY: only for non-parameterized output. Statements sent to a database
// should be rendered with bind parameters instead.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", "''")
}
