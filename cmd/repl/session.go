package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ergochat/readline"

	"github.com/bawdo/ksqltree/intern"
	"github.com/bawdo/ksqltree/managers"
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

var (
	errNoQuery     = errors.New("no query defined (use 'from <source>' first)")
	errNoStatement = errors.New("no CREATE ... AS SELECT statement (use 'create table|stream <name>' first)")
)

// stmtMode tracks which kind of statement the REPL is currently building.
type stmtMode int

const (
	modeQuery stmtMode = iota
	modeCreateTable
	modeCreateStream
	modeInsert
	modeDrop
)

// historySize bounds the number of distinct statements kept by 'history'.
const historySize = 256

// Session holds the REPL state: the query under construction, the sink
// wrapping it, the active engine and any enabled plugins.
type Session struct {
	engine       string
	visitor      visitors.Formatter
	parameterize bool
	pretty       bool

	query       *managers.QueryManager
	mode        stmtMode
	sinkName    string
	notExists   bool
	props       []nodes.Property
	partitionBy nodes.Expression
	drop        nodes.Statement
	stmtLoc     nodes.NodeLocation

	plugins     pluginRegistry
	opa         *opaConfig // nil unless the opa plugin is enabled
	history     *intern.Interner
	built       []nodes.Statement // distinct statements in first-build order
	commands    []commandEntry // command registry (sorted by prefix length desc)
	conn        *dbConn        // nil when disconnected
	lastDSN     string         // remembers the previous DSN for reconnect
	rl          *readline.Instance
	out         io.Writer // destination for REPL output (default os.Stdout)
	log         *slog.Logger

	line int // number of the command being executed, from 1
	col  int // column at which the current command's arguments start
}

// NewSession creates a session rendering with the given engine's dialect.
func NewSession(engine string, rl *readline.Instance) *Session {
	s := &Session{
		history: intern.New(historySize),
		rl:      rl,
		out:     os.Stdout,
		log:     slog.Default(),
	}
	s.plugins.known = []pluginConfigurer{
		{name: "defaults", configure: configureDefaults},
		{name: "opa", configure: configureOPA},
		{name: "softdelete", configure: configureSoftdelete},
	}
	s.setEngine(engine)
	s.initCommands()
	return s
}

// pluginNames returns the names of all known plugins (for tab completion).
func (s *Session) pluginNames() []string {
	return s.plugins.knownNames()
}

func (s *Session) visitorOptions() []visitors.Option {
	var opts []visitors.Option
	if s.parameterize {
		opts = append(opts, visitors.WithParams())
	}
	if s.pretty {
		opts = append(opts, visitors.WithPretty())
	}
	return opts
}

func (s *Session) setEngine(engine string) {
	s.engine = engine
	s.visitor = newVisitor(engine, s.visitorOptions()...)
	if s.visitor.Dialect() != engine {
		s.engine = s.visitor.Dialect()
	}
}

// newVisitor returns the formatter for engine. Unknown engines get KSQL.
func newVisitor(engine string, opts ...visitors.Option) visitors.Formatter {
	switch engine {
	case "postgres":
		return visitors.NewPostgresVisitor(opts...)
	case "mysql":
		return visitors.NewMySQLVisitor(opts...)
	case "sqlite":
		return visitors.NewSQLiteVisitor(opts...)
	default:
		return visitors.NewKSQLVisitor(opts...)
	}
}

// Execute parses and runs a single REPL command.
func (s *Session) Execute(line string) error {
	s.line++
	raw := line
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	indent := strings.Index(raw, line)
	lower := strings.ToLower(line)

	for _, cmd := range s.commands {
		if strings.HasSuffix(cmd.prefix, " ") {
			if strings.HasPrefix(lower, cmd.prefix) {
				s.col = indent + len(cmd.prefix) + 1
				s.log.Debug("command", "prefix", strings.TrimSpace(cmd.prefix), "line", s.line)
				return cmd.handler(line[len(cmd.prefix):])
			}
		} else if lower == cmd.prefix {
			s.log.Debug("command", "prefix", cmd.prefix, "line", s.line)
			return cmd.handler("")
		}
	}

	word := strings.Fields(line)[0]
	return fmt.Errorf("unknown command: %s (type 'help' for commands)", word)
}

// parse returns a parser over the current command's arguments.
func (s *Session) parse(args string) (*parser, error) {
	return newParser(args, s.line, s.col)
}

// here is the location of the current command's first argument.
func (s *Session) here() nodes.NodeLocation {
	return nodes.NodeLocation{Line: s.line, Column: s.col}
}

// statementWith assembles the current statement, running ts over it.
func (s *Session) statementWith(ts []plugins.Transformer) (nodes.Statement, error) {
	if s.mode == modeDrop {
		return s.drop, nil
	}
	if s.query == nil {
		return nil, errNoQuery
	}
	q, err := s.query.Build()
	if err != nil {
		return nil, err
	}
	switch s.mode {
	case modeCreateTable, modeCreateStream:
		var m *managers.CreateAsSelectManager
		if s.mode == modeCreateStream {
			m = managers.NewCreateStreamAsSelectManager(s.sinkName, q)
		} else {
			m = managers.NewCreateTableAsSelectManager(s.sinkName, q)
		}
		if s.notExists {
			m.IfNotExists()
		}
		for _, p := range s.props {
			m.With(p.Key, p.Value)
		}
		if s.partitionBy != nil {
			m.PartitionBy(s.partitionBy)
		}
		return m.At(s.stmtLoc).Use(ts...).Build()
	case modeInsert:
		m := managers.NewInsertManager(s.sinkName, q).At(s.stmtLoc).Use(ts...)
		if s.partitionBy != nil {
			m.PartitionBy(s.partitionBy)
		}
		ins, err := m.Build()
		if err != nil {
			return nil, err
		}
		return ins, nil
	default:
		return plugins.Apply(q, ts...)
	}
}

// Statement builds the current statement with every enabled plugin and
// records it in the history. The fresh build is returned so locations
// always point at the commands that produced it.
func (s *Session) Statement() (nodes.Statement, error) {
	stmt, err := s.statementWith(s.plugins.transformers())
	if err != nil {
		return nil, err
	}
	_, seen := s.history.Intern(stmt)
	if !seen {
		s.remember(stmt)
	}
	s.log.Debug("statement built", "kind", fmt.Sprintf("%T", stmt), "seen", seen)
	return stmt, nil
}

// remember appends stmt to the first-build order unless an equal statement
// is already listed. The interner may have evicted a statement that is
// still listed here.
func (s *Session) remember(stmt nodes.Statement) {
	for _, b := range s.built {
		if b.Equal(stmt) {
			return
		}
	}
	s.built = append(s.built, stmt)
	if len(s.built) > historySize {
		s.built = s.built[1:]
	}
}

// GenerateSQL renders the current statement with the engine's dialect.
func (s *Session) GenerateSQL() (string, error) {
	sql, _, err := s.render(s.visitor)
	return sql, err
}

func (s *Session) render(v visitors.Formatter) (string, []any, error) {
	stmt, err := s.Statement()
	if err != nil {
		return "", nil, err
	}
	sql, err := v.Format(stmt)
	if err != nil {
		return "", nil, err
	}
	return sql, v.Params(), nil
}

// setMode switches the statement kind, keeping the current query.
func (s *Session) setMode(mode stmtMode) {
	s.mode = mode
	s.sinkName = ""
	s.notExists = false
	s.props = nil
	s.partitionBy = nil
	s.drop = nil
	s.stmtLoc = s.here()
}

// --- Query building ---

func (s *Session) cmdFrom(args string) error {
	p, err := s.parse(args)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	rel, err := p.relation()
	if err == nil {
		err = p.end()
	}
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	s.setMode(modeQuery)
	s.query = managers.NewQueryManager(rel).At(s.here())
	_, _ = fmt.Fprintf(s.out, "  Query FROM %s\n", strings.TrimSpace(args))
	return nil
}

func (s *Session) cmdJoin(args string, joinType nodes.JoinType) error {
	if s.query == nil {
		return errNoQuery
	}
	p, err := s.parse(args)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	rel, err := p.relation()
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	var on nodes.Expression
	if p.accept("ON") {
		if on, err = p.expression(); err != nil {
			return fmt.Errorf("join: %w", err)
		}
	}
	if err := p.end(); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	s.query.Join(rel, joinType).On(on)
	_, _ = fmt.Fprintf(s.out, "  %s JOIN added\n", joinType)
	return nil
}

func (s *Session) cmdSelect(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	p, err := s.parse(args)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	items, err := p.selectItems()
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	s.query.Select(items...)
	_, _ = fmt.Fprintf(s.out, "  Projections set (%d columns)\n", len(items))
	return nil
}

func (s *Session) cmdDistinct() error {
	if s.query == nil {
		return errNoQuery
	}
	s.query.Distinct()
	_, _ = fmt.Fprintln(s.out, "  DISTINCT enabled")
	return nil
}

// condition parses a whole-argument boolean expression.
func (s *Session) condition(what, args string) (nodes.Expression, error) {
	p, err := s.parse(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	cond, err := p.expression()
	if err == nil {
		err = p.end()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return cond, nil
}

func (s *Session) cmdWhere(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	cond, err := s.condition("where", args)
	if err != nil {
		return err
	}
	s.query.Where(cond)
	_, _ = fmt.Fprintln(s.out, "  WHERE condition added")
	return nil
}

func (s *Session) cmdGroup(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	p, err := s.parse(args)
	if err != nil {
		return fmt.Errorf("group: %w", err)
	}
	p.accept("BY")
	exprs, err := p.expressionList()
	if err != nil {
		return fmt.Errorf("group: %w", err)
	}
	s.query.GroupBy(exprs...)
	_, _ = fmt.Fprintf(s.out, "  GROUP BY added (%d expressions)\n", len(exprs))
	return nil
}

func (s *Session) cmdHaving(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	cond, err := s.condition("having", args)
	if err != nil {
		return err
	}
	s.query.Having(cond)
	_, _ = fmt.Fprintln(s.out, "  HAVING condition added")
	return nil
}

func (s *Session) cmdLimit(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 0 {
		return fmt.Errorf("limit: expected a non-negative integer, got %q", strings.TrimSpace(args))
	}
	s.query.Limit(n)
	_, _ = fmt.Fprintf(s.out, "  LIMIT %d\n", n)
	return nil
}

// --- Statements ---

// cmdCreate handles "create table|stream <name> [if not exists]".
func (s *Session) cmdCreate(args string, mode stmtMode) error {
	if s.query == nil {
		return errNoQuery
	}
	p, err := s.parse(args)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	name, _, err := p.qualifiedName()
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	notExists := false
	if p.accept("IF") {
		if err := p.expect("NOT"); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		if err := p.expect("EXISTS"); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		notExists = true
	}
	if err := p.end(); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	s.setMode(mode)
	s.sinkName = name.String()
	s.notExists = notExists
	kind := "TABLE"
	if mode == modeCreateStream {
		kind = "STREAM"
	}
	_, _ = fmt.Fprintf(s.out, "  CREATE %s %s AS SELECT ...\n", kind, name)
	return nil
}

func (s *Session) cmdInsertInto(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	p, err := s.parse(args)
	if err != nil {
		return fmt.Errorf("insert into: %w", err)
	}
	name, _, err := p.qualifiedName()
	if err == nil {
		err = p.end()
	}
	if err != nil {
		return fmt.Errorf("insert into: %w", err)
	}
	s.setMode(modeInsert)
	s.sinkName = name.String()
	_, _ = fmt.Fprintf(s.out, "  INSERT INTO %s SELECT ...\n", name)
	return nil
}

func (s *Session) cmdWith(args string) error {
	if s.mode != modeCreateTable && s.mode != modeCreateStream {
		return errNoStatement
	}
	p, err := s.parse(args)
	if err != nil {
		return fmt.Errorf("with: %w", err)
	}
	props, err := p.properties()
	if err != nil {
		return fmt.Errorf("with: %w", err)
	}
	for _, prop := range props {
		replaced := false
		for i := range s.props {
			if s.props[i].Key == prop.Key {
				s.props[i].Value = prop.Value
				replaced = true
			}
		}
		if !replaced {
			s.props = append(s.props, prop)
		}
	}
	_, _ = fmt.Fprintf(s.out, "  %d properties set\n", len(s.props))
	return nil
}

func (s *Session) cmdPartitionBy(args string) error {
	if s.mode != modeCreateStream && s.mode != modeInsert {
		if s.mode == modeCreateTable {
			return managers.ErrPartitionByTable
		}
		return errors.New("partition by needs 'create stream' or 'insert into' first")
	}
	expr, err := s.condition("partition by", args)
	if err != nil {
		return err
	}
	s.partitionBy = expr
	_, _ = fmt.Fprintln(s.out, "  PARTITION BY set")
	return nil
}

// cmdDrop handles "drop table|stream <name> [if exists] [delete topic]".
func (s *Session) cmdDrop(args string, stream bool) error {
	p, err := s.parse(args)
	if err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	name, _, err := p.qualifiedName()
	if err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	ifExists := false
	if p.accept("IF") {
		if err := p.expect("EXISTS"); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		ifExists = true
	}
	deleteTopic := false
	if p.accept("DELETE") {
		if err := p.expect("TOPIC"); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		deleteTopic = true
	}
	if err := p.end(); err != nil {
		return fmt.Errorf("drop: %w", err)
	}

	loc := nodes.At(s.here())
	var stmt nodes.Statement
	if stream {
		ds, err := nodes.NewDropStream(name, ifExists, deleteTopic, loc)
		if err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		stmt = ds
	} else {
		dt, err := nodes.NewDropTable(name, ifExists, deleteTopic, loc)
		if err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		stmt = dt
	}
	s.setMode(modeDrop)
	s.drop = stmt
	_, _ = fmt.Fprintf(s.out, "  DROP %s\n", name)
	return nil
}

// --- Rendering ---

// cmdSQL prints the statement in the engine's dialect.
func (s *Session) cmdSQL() error {
	sql, params, err := s.render(s.visitor)
	if err != nil {
		return err
	}
	s.printSQL(sql, params)
	return nil
}

// cmdKSQL prints the statement as KSQL regardless of the engine.
func (s *Session) cmdKSQL() error {
	v := s.visitor
	if s.engine != "ksql" {
		v = newVisitor("ksql", s.visitorOptions()...)
	}
	sql, _, err := s.render(v)
	if err != nil {
		return err
	}
	s.printSQL(sql, nil)
	return nil
}

func (s *Session) printSQL(sql string, params []any) {
	_, _ = fmt.Fprintf(s.out, "  %s;\n", strings.ReplaceAll(sql, "\n", "\n  "))
	if len(params) > 0 {
		_, _ = fmt.Fprintf(s.out, "  Params: %v\n", params)
	}
}

func (s *Session) cmdAST() error {
	stmt, err := s.Statement()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "  Engine: %s\n", s.engine)
	printTree(s.out, stmt, 1)
	s.printASTFooter()
	return nil
}

func (s *Session) cmdSink() error {
	stmt, err := s.Statement()
	if err != nil {
		return err
	}
	cas, ok := stmt.(nodes.CreateAsSelect)
	if !ok {
		return errNoStatement
	}
	sink := cas.Sink()
	kind := "stream"
	if sink.IsTable() {
		kind = "table"
	}
	_, _ = fmt.Fprintf(s.out, "  Sink: %s (%s)\n", sink.Name(), kind)
	for _, p := range sink.Properties().Entries() {
		_, _ = fmt.Fprintf(s.out, "    %s = %s\n", p.Key, p.Value)
	}
	return nil
}

// cmdDot exports the statement as a Graphviz DOT file. Plugins are applied
// one at a time so properties they add can be attributed to them.
func (s *Session) cmdDot(args string) error {
	fpath := strings.TrimSpace(args)
	if fpath == "" {
		return errors.New("usage: dot <filepath>")
	}
	stmt, err := s.statementWith(nil)
	if err != nil {
		return err
	}
	stmt, prov, err := s.plugins.trace(stmt)
	if err != nil {
		return err
	}

	dot, err := visitors.ToDotString(stmt, prov)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fpath, []byte(dot), 0600); err != nil {
		return fmt.Errorf("failed to write DOT file: %w", err)
	}
	_, _ = fmt.Fprintf(s.out, "  Wrote DOT to %s\n", fpath)
	return nil
}

func (s *Session) cmdHistory() error {
	stmts := s.built
	if len(stmts) == 0 {
		_, _ = fmt.Fprintln(s.out, "  No statements built yet")
		return nil
	}
	for i, n := range stmts {
		sql, err := visitors.Format(n)
		if err != nil {
			sql = n.String()
		}
		_, _ = fmt.Fprintf(s.out, "  [%d] %s;\n", i+1, sql)
	}
	return nil
}

// --- Engine, plugins and output options ---

func (s *Session) cmdEngine(args string) error {
	name := strings.TrimSpace(strings.ToLower(args))
	if !isValidEngine(name) {
		return fmt.Errorf("unknown engine %q (choose: %s)", name, strings.Join(engineNames, ", "))
	}
	s.setEngine(name)
	_, _ = fmt.Fprintf(s.out, "  Engine set to %s\n", s.engine)
	return nil
}

// cmdPlugin routes plugin sub-commands: enables a plugin by name, or
// dispatches to cmdPluginOff for disabling.
func (s *Session) cmdPlugin(args string) error {
	parts := strings.Fields(strings.TrimSpace(args))
	if len(parts) == 0 {
		return errors.New("usage: plugin <name> [args] | plugin off [name]")
	}
	name := strings.ToLower(parts[0])
	if name == "off" {
		return s.cmdPluginOff(parts[1:])
	}
	c, ok := s.plugins.configurer(name)
	if !ok {
		return fmt.Errorf("unknown plugin: %s", name)
	}
	rest := strings.TrimSpace(args)[len(parts[0]):]
	return c.configure(s, strings.TrimSpace(rest))
}

func (s *Session) cmdPluginOff(parts []string) error {
	if len(parts) == 0 {
		s.plugins.disableAll()
		_, _ = fmt.Fprintln(s.out, "  All plugins disabled")
		return nil
	}
	name := strings.ToLower(parts[0])
	if !s.plugins.disable(name) {
		return fmt.Errorf("plugin %q is not enabled", name)
	}
	_, _ = fmt.Fprintf(s.out, "  %s disabled\n", name)
	return nil
}

func (s *Session) cmdPlugins() {
	_, _ = fmt.Fprintln(s.out, "  Available plugins:")
	for _, c := range s.plugins.known {
		if entry, ok := s.plugins.lookup(c.name); ok {
			_, _ = fmt.Fprintf(s.out, "    %-14s on   (%s)\n", c.name, entry.status())
		} else {
			_, _ = fmt.Fprintf(s.out, "    %-14s off\n", c.name)
		}
	}
}

func (s *Session) cmdParameterize() error {
	s.parameterize = !s.parameterize
	s.setEngine(s.engine)
	if s.parameterize {
		_, _ = fmt.Fprintln(s.out, "  Parameterized queries enabled")
	} else {
		_, _ = fmt.Fprintln(s.out, "  Parameterized queries disabled")
	}
	return nil
}

func (s *Session) cmdPretty() error {
	s.pretty = !s.pretty
	s.setEngine(s.engine)
	if s.pretty {
		_, _ = fmt.Fprintln(s.out, "  Pretty output enabled")
	} else {
		_, _ = fmt.Fprintln(s.out, "  Pretty output disabled")
	}
	return nil
}

// --- Database connectivity ---

func (s *Session) cmdConnect(args string) error {
	dsn := strings.TrimSpace(args)

	if s.conn != nil {
		return fmt.Errorf("already connected to %s (use 'disconnect' first)", redactDSN(s.conn.dsn))
	}
	if dsn != "" {
		return s.connectWithDSN(dsn)
	}
	if s.lastDSN != "" {
		choice := prompt(s.rl, fmt.Sprintf("Reconnect to %s? (y/n)", redactDSN(s.lastDSN)), "y")
		switch strings.ToLower(choice) {
		case "y", "yes":
			return s.connectWithDSN(s.lastDSN)
		default:
			_, _ = fmt.Fprintln(s.out, "  Connect cancelled")
			return nil
		}
	}
	return errors.New("usage: connect <dsn>")
}

func (s *Session) connectWithDSN(dsn string) error {
	conn, err := connect(s.engine, dsn, s.log)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.conn = conn
	s.lastDSN = dsn
	_, _ = fmt.Fprintf(s.out, "  Connected to %s (%s)\n", redactDSN(dsn), s.engine)
	return nil
}

func (s *Session) cmdDisconnect() error {
	if s.conn == nil {
		return errors.New("not connected")
	}
	dsn := redactDSN(s.conn.dsn)
	if err := s.conn.close(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	s.conn = nil
	_, _ = fmt.Fprintf(s.out, "  Disconnected from %s\n", dsn)
	return nil
}

// cmdExec runs the current statement against the connected database,
// always using bind parameters.
func (s *Session) cmdExec() error {
	if s.conn == nil {
		return errors.New("not connected (use 'connect <dsn>' first)")
	}
	pv := newVisitor(s.conn.engine, visitors.WithParams())
	sqlStr, params, err := s.render(pv)
	if err != nil {
		return err
	}
	s.printSQL(sqlStr, params)

	if s.mode == modeQuery {
		return s.conn.execQuery(s.out, sqlStr, params)
	}
	affected, err := s.conn.execStatement(sqlStr, params)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "  OK (%d rows affected)\n", affected)
	return nil
}

func (s *Session) cmdReset() error {
	s.setMode(modeQuery)
	s.query = nil
	_, _ = fmt.Fprintln(s.out, "  Statement cleared")
	return nil
}

func (s *Session) cmdHelp() {
	_, _ = fmt.Fprintln(s.out, `
  Query Building:
    from <source> [alias]     Start a new query (sets FROM)
    join <source> [alias] on <cond>       Add an INNER JOIN
    left join <source> [alias] on <cond>  Add a LEFT JOIN
    full join <source> [alias] on <cond>  Add a FULL OUTER JOIN
    select <items>            Set projections (expr [AS alias], *, X.*)
    distinct                  Enable DISTINCT modifier
    where <condition>         Add a WHERE condition (ANDed)
    group [by] <exprs>        Add GROUP BY expressions
    having <condition>        Add a HAVING condition (ANDed)
    limit <n>                 Set LIMIT

  Statements:
    create table <name> [if not exists]   Wrap the query in CREATE TABLE AS SELECT
    create stream <name> [if not exists]  Wrap the query in CREATE STREAM AS SELECT
    insert into <name>        Wrap the query in INSERT INTO
    with KEY=VALUE[, ...]     Set WITH properties
    partition by <expr>       Set PARTITION BY (streams and inserts)
    drop table <name> [if exists] [delete topic]
    drop stream <name> [if exists] [delete topic]

  Output:
    ksql                      Print the statement as KSQL
    sql                       Print the statement in the engine's dialect
    ast                       Print the statement tree with locations
    sink                      Describe the sink of CREATE ... AS SELECT
    dot <file>                Write a Graphviz DOT file
    history                   List distinct statements built so far
    params                    Toggle bind parameters
    pretty                    Toggle one clause per line

  Engine and plugins:
    engine <ksql|postgres|mysql|sqlite>
    plugin defaults <file.yaml>           Load property defaults from YAML
    plugin defaults [topic] [KEY=VALUE, ...]  Property defaults inline
    plugin softdelete [column] [on <sources...>]
    plugin opa <url> <policy> [key=value ...]  Row filters and masks from OPA
    plugin off [name]         Disable one or all plugins
    plugins                   List plugins

  OPA:
    opa status                Show server, policy and inputs
    opa input <key>=<value>   Set an input value (bare key removes it)
    opa inputs                List the inputs the policy reads
    opa explain <source> [alias] [verbose]  Show the conditions for a source
    opa conditions            Show the conditions for the current query
    opa masks                 Show column masks
    opa off                   Disable the opa plugin

  Database:
    connect <dsn>             Connect with the engine's driver
    disconnect                Close the connection
    exec                      Run the statement with bind parameters

  Other:
    reset                     Clear the statement
    help                      Show this help
    exit | quit               Leave the REPL`)
}
