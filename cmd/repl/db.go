package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/bawdo/ksqltree/nodes"
)

// driverName maps engines to database/sql drivers. The ksql engine renders
// statements only and has no driver.
var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// maxRows bounds the rows exec prints for one query.
const maxRows = 1000

// catalogQuery reads the engine's catalog. sources lists every table or
// view; columns lists one source's columns in declaration order and takes
// the upper-cased source name as its only parameter.
type catalogQuery struct {
	sources string
	columns string
}

var catalogQueries = map[string]catalogQuery{
	"postgres": {
		sources: "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name",
		columns: "SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND upper(table_name) = $1 ORDER BY ordinal_position",
	},
	"mysql": {
		sources: "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name",
		columns: "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND upper(table_name) = ? ORDER BY ordinal_position",
	},
	"sqlite": {
		sources: "SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name",
		columns: "SELECT name FROM pragma_table_info(?) ORDER BY cid",
	},
}

// sourceSchema caches catalog lookups under KSQL spelling: source and
// column names are upper-cased, as the parser produces them.
type sourceSchema struct {
	sources []nodes.QualifiedName
	columns map[string][]string
}

type dbConn struct {
	db      *sql.DB
	dsn     string
	engine  string
	catalog catalogQuery
	schema  sourceSchema
}

func connect(engine, dsn string, log *slog.Logger) (*dbConn, error) {
	driver, ok := driverName[engine]
	if !ok {
		return nil, fmt.Errorf("no driver for engine %q (switch with 'engine postgres|mysql|sqlite')", engine)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	conn := &dbConn{
		db:      db,
		dsn:     dsn,
		engine:  engine,
		catalog: catalogQueries[engine],
		schema:  sourceSchema{columns: map[string][]string{}},
	}
	if err := conn.loadSources(); err != nil {
		log.Warn("schema introspection failed", "engine", engine, "err", err)
	} else {
		log.Debug("schema loaded", "engine", engine, "sources", len(conn.schema.sources))
	}
	return conn, nil
}

func (c *dbConn) close() error {
	return c.db.Close()
}

// loadSources refreshes the list of sources and drops cached columns.
func (c *dbConn) loadSources() error {
	names, err := c.queryNames(c.catalog.sources)
	if err != nil {
		return err
	}
	sources := make([]nodes.QualifiedName, 0, len(names))
	for _, name := range names {
		qn, err := nodes.NewQualifiedName(strings.ToUpper(name))
		if err != nil {
			continue
		}
		sources = append(sources, qn)
	}
	c.schema = sourceSchema{sources: sources, columns: map[string][]string{}}
	return nil
}

func (c *dbConn) sourceNames() []string {
	out := make([]string, len(c.schema.sources))
	for i, src := range c.schema.sources {
		out[i] = src.String()
	}
	return out
}

// columns returns the upper-cased column names of source. Only non-empty
// results are cached, so a source created after connecting is found on
// the next lookup.
func (c *dbConn) columns(source nodes.QualifiedName) ([]string, error) {
	key := strings.ToUpper(source.String())
	if cols, ok := c.schema.columns[key]; ok {
		return cols, nil
	}
	cols, err := c.queryNames(c.catalog.columns, key)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", key, err)
	}
	for i, col := range cols {
		cols[i] = strings.ToUpper(col)
	}
	if len(cols) > 0 {
		c.schema.columns[key] = cols
	}
	return cols, nil
}

// queryNames runs a catalog query returning a single text column.
func (c *dbConn) queryNames(query string, params ...any) ([]string, error) {
	rows, err := c.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// execQuery runs a query and writes its rows to w as a table.
func (c *dbConn) execQuery(w io.Writer, sqlStr string, params []any) error {
	rows, err := c.db.Query(sqlStr, params...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	result, err := scanResult(rows)
	if err != nil {
		return err
	}
	result.write(w)
	return nil
}

// execStatement runs a statement that returns no rows.
func (c *dbConn) execStatement(sqlStr string, params []any) (int64, error) {
	res, err := c.db.Exec(sqlStr, params...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// resultSet holds query output as text, NULL spelled out.
type resultSet struct {
	columns   []string
	rows      [][]string
	truncated bool
}

func scanResult(rows *sql.Rows) (*resultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	r := &resultSet{columns: columns}
	cells := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if len(r.rows) == maxRows {
			r.truncated = true
			break
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(cells))
		for i, cell := range cells {
			row[i] = "NULL"
			if cell.Valid {
				row[i] = cell.String
			}
		}
		r.rows = append(r.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return r, nil
}

// write renders the result as a boxed table followed by a row count.
func (r *resultSet) write(w io.Writer) {
	if len(r.columns) > 0 {
		widths := make([]int, len(r.columns))
		for _, row := range append([][]string{r.columns}, r.rows...) {
			for i, cell := range row {
				widths[i] = max(widths[i], len(cell))
			}
		}
		rule := "+"
		for _, width := range widths {
			rule += strings.Repeat("-", width+2) + "+"
		}
		line := func(cells []string) {
			_, _ = io.WriteString(w, "|")
			for i, cell := range cells {
				_, _ = fmt.Fprintf(w, " %-*s |", widths[i], cell)
			}
			_, _ = io.WriteString(w, "\n")
		}
		_, _ = fmt.Fprintln(w, rule)
		line(r.columns)
		_, _ = fmt.Fprintln(w, rule)
		for _, row := range r.rows {
			line(row)
		}
		_, _ = fmt.Fprintln(w, rule)
	}
	switch n := len(r.rows); n {
	case 1:
		_, _ = fmt.Fprintln(w, "(1 row)")
	default:
		_, _ = fmt.Fprintf(w, "(%s rows)\n", humanize.Comma(int64(n)))
	}
	if r.truncated {
		_, _ = fmt.Fprintf(w, "(truncated at %s rows)\n", humanize.Comma(maxRows))
	}
}

// redactDSN hides the password of a URL, MySQL or key=value DSN.
func redactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	if cfg, err := mysql.ParseDSN(dsn); err == nil && cfg.Passwd != "" {
		cfg.Passwd = "xxxxx"
		return cfg.FormatDSN()
	}
	if strings.Contains(dsn, "password=") {
		fields := strings.Fields(dsn)
		for i, f := range fields {
			if strings.HasPrefix(f, "password=") {
				fields[i] = "password=xxxxx"
			}
		}
		return strings.Join(fields, " ")
	}
	return dsn
}
