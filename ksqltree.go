// Package ksqltree builds, compares and renders KSQL statement trees.
//
// This package re-exports commonly used types and functions from subpackages
// for convenience. Advanced users can import subpackages directly:
//   - github.com/bawdo/ksqltree/managers (statement builders)
//   - github.com/bawdo/ksqltree/nodes (AST nodes)
//   - github.com/bawdo/ksqltree/visitors (KSQL and SQL generation)
//   - github.com/bawdo/ksqltree/plugins (statement transformers)
//   - github.com/bawdo/ksqltree/intern (structural deduplication)
package ksqltree

import (
	"github.com/bawdo/ksqltree/intern"
	"github.com/bawdo/ksqltree/managers"
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/visitors"
)

// --- Manager Types ---

// QueryManager provides a fluent API for building SELECT queries.
type QueryManager = managers.QueryManager

// CreateAsSelectManager builds CREATE TABLE/STREAM ... AS SELECT statements.
type CreateAsSelectManager = managers.CreateAsSelectManager

// InsertManager builds INSERT INTO ... SELECT statements.
type InsertManager = managers.InsertManager

// --- Manager Constructors ---

// From starts a query reading from the named table or stream.
func From(name string, alias ...string) *managers.QueryManager {
	return managers.NewQueryManager(nil).FromName(name, alias...)
}

// CreateTableAs wraps query in CREATE TABLE name AS SELECT.
func CreateTableAs(name string, query *nodes.Query) *managers.CreateAsSelectManager {
	return managers.NewCreateTableAsSelectManager(name, query)
}

// CreateStreamAs wraps query in CREATE STREAM name AS SELECT.
func CreateStreamAs(name string, query *nodes.Query) *managers.CreateAsSelectManager {
	return managers.NewCreateStreamAsSelectManager(name, query)
}

// InsertInto wraps query in INSERT INTO target.
func InsertInto(target string, query *nodes.Query) *managers.InsertManager {
	return managers.NewInsertManager(target, query)
}

// --- Core Node Types ---

// Node is the base interface all AST nodes implement.
type Node = nodes.Node

// Statement is a top-level statement node.
type Statement = nodes.Statement

// Expression is a value-producing node.
type Expression = nodes.Expression

// QualifiedName is a dotted identifier such as DB.ORDERS.
type QualifiedName = nodes.QualifiedName

// Properties is the ordered WITH property bag of a statement.
type Properties = nodes.Properties

// Sink describes the target of a CREATE ... AS SELECT statement.
type Sink = nodes.Sink

// NodeLocation is a 1-based line and column in statement text.
type NodeLocation = nodes.NodeLocation

// --- Common Node Constructors ---

// Col creates a column reference from a dotted name such as O.USER_ID.
func Col(dotted string) *nodes.ColumnReference {
	return nodes.Column(dotted)
}

// String creates a string literal.
func String(v string) *nodes.StringLiteral {
	return nodes.NewStringLiteral(v)
}

// Int creates an integer literal.
func Int(v int64) *nodes.IntegerLiteral {
	return nodes.NewIntegerLiteral(v)
}

// Compare creates a comparison such as AMOUNT > 100.
func Compare(op nodes.ComparisonOp, left, right nodes.Expression) (*nodes.ComparisonExpression, error) {
	return nodes.NewComparisonExpression(op, left, right)
}

// --- Rendering ---

// Formatter renders nodes in one dialect.
type Formatter = visitors.Formatter

// Format renders n as KSQL.
func Format(n nodes.Node) (string, error) {
	return visitors.Format(n)
}

// NewKSQLVisitor creates a KSQL visitor.
func NewKSQLVisitor(opts ...visitors.Option) *visitors.KSQLVisitor {
	return visitors.NewKSQLVisitor(opts...)
}

// NewPostgresVisitor creates a PostgreSQL visitor.
func NewPostgresVisitor(opts ...visitors.Option) *visitors.PostgresVisitor {
	return visitors.NewPostgresVisitor(opts...)
}

// NewMySQLVisitor creates a MySQL visitor.
func NewMySQLVisitor(opts ...visitors.Option) *visitors.MySQLVisitor {
	return visitors.NewMySQLVisitor(opts...)
}

// NewSQLiteVisitor creates a SQLite visitor.
func NewSQLiteVisitor(opts ...visitors.Option) *visitors.SQLiteVisitor {
	return visitors.NewSQLiteVisitor(opts...)
}

// WithParams renders literals as bind parameters. KSQL ignores it.
func WithParams() visitors.Option {
	return visitors.WithParams()
}

// WithPretty puts each clause on its own line.
func WithPretty() visitors.Option {
	return visitors.WithPretty()
}

// --- Interning ---

// NewInterner creates an Interner holding up to size distinct nodes.
func NewInterner(size int) *intern.Interner {
	return intern.New(size)
}
