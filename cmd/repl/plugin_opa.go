package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/plugins/opa"
)

var errOPAOff = errors.New("OPA is not enabled (use 'plugin opa <url> <policy>' first)")

// opaConfig holds the OPA server settings the plugin factory reads on
// every build, so input changes apply to the next statement.
type opaConfig struct {
	url    string
	policy string
	input  map[string]any
}

// configureOPA enables the OPA plugin.
//
//	plugin opa http://localhost:8181 ksql.orders.allow
//	plugin opa http://localhost:8181 ksql.orders.allow subject.tenant=7 subject.role=analyst
func configureOPA(s *Session, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return errors.New("usage: plugin opa <url> <policy> [key=value ...]")
	}
	cfg := &opaConfig{url: fields[0], policy: fields[1], input: map[string]any{}}
	for _, kv := range fields[2:] {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid input %q (want key=value)", kv)
		}
		setNestedValue(cfg.input, key, parseOPAValue(val))
	}
	s.opa = cfg

	s.plugins.enable(pluginEntry{
		name: "opa",
		factory: func() plugins.Transformer {
			return opa.NewFromServer(cfg.url, cfg.policy, cfg.input, opa.WithColumnResolver(s.columnResolver()))
		},
		status: func() string { return "policy: " + s.opaClient().PolicyPath() },
		color:  "#9B59B6",
		off:    func() { s.opa = nil },
	})
	_, _ = fmt.Fprintf(s.out, "  OPA enabled (policy: %s)\n", s.opaClient().PolicyPath())
	return nil
}

func (s *Session) opaClient() *opa.Client {
	return opa.NewClient(s.opa.url, s.opa.policy, s.opa.input)
}

// columnResolver expands star projections from the connected database's
// schema.
func (s *Session) columnResolver() opa.ColumnResolver {
	return func(source nodes.QualifiedName) ([]string, error) {
		if s.conn == nil {
			return nil, errors.New("no database connection (required for column masking)")
		}
		cols, err := s.conn.columns(source)
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("no schema for source %q", source)
		}
		return cols, nil
	}
}

func (s *Session) cmdOPAStatus() error {
	if s.opa == nil {
		_, _ = fmt.Fprintln(s.out, "  OPA: off")
		return nil
	}
	_, _ = fmt.Fprintln(s.out, "  OPA: on")
	_, _ = fmt.Fprintf(s.out, "    Server: %s\n", s.opa.url)
	_, _ = fmt.Fprintf(s.out, "    Policy: %s\n", s.opaClient().PolicyPath())
	if len(s.opa.input) == 0 {
		_, _ = fmt.Fprintln(s.out, "    Inputs: (none)")
		return nil
	}
	_, _ = fmt.Fprintln(s.out, "    Inputs:")
	s.printInputMap(s.opa.input, "      ")
	return nil
}

func (s *Session) printInputMap(m map[string]any, indent string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if nested, ok := m[k].(map[string]any); ok {
			_, _ = fmt.Fprintf(s.out, "%s%s:\n", indent, k)
			s.printInputMap(nested, indent+"  ")
			continue
		}
		_, _ = fmt.Fprintf(s.out, "%s%s: %v\n", indent, k, m[k])
	}
}

// cmdOPAInput sets an input value with "key=value" and removes it with
// a bare key.
func (s *Session) cmdOPAInput(args string) error {
	if s.opa == nil {
		return errOPAOff
	}
	arg := strings.TrimSpace(args)
	if arg == "" {
		return errors.New("usage: opa input <key>=<value> | opa input <key>")
	}
	key, val, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok {
		deleteNestedValue(s.opa.input, key)
		_, _ = fmt.Fprintf(s.out, "  Removed input %s\n", key)
		return nil
	}
	v := parseOPAValue(strings.TrimSpace(val))
	setNestedValue(s.opa.input, key, v)
	_, _ = fmt.Fprintf(s.out, "  Set input %s = %v\n", key, v)
	return nil
}

// cmdOPAInputs lists the input paths the policy reads, with the values
// currently set. The current query's sources are passed as data unknowns.
func (s *Session) cmdOPAInputs() error {
	if s.opa == nil {
		return errOPAOff
	}
	var unknowns []string
	if q, err := s.currentQuery(); err == nil {
		for _, ref := range plugins.CollectSources(q) {
			unknowns = append(unknowns, "data."+strings.ToLower(ref.Name.String()))
		}
	}
	paths, err := s.opaClient().DiscoverInputs(unknowns...)
	if err != nil {
		return fmt.Errorf("OPA: cannot reach server at %s: %w", s.opa.url, err)
	}
	if len(paths) == 0 {
		_, _ = fmt.Fprintln(s.out, "  No inputs required by policy")
		return nil
	}
	_, _ = fmt.Fprintf(s.out, "  Policy reads %d input(s):\n", len(paths))
	for _, path := range paths {
		if v := getNestedValue(s.opa.input, path); v != nil {
			_, _ = fmt.Fprintf(s.out, "    %s = %v\n", path, v)
		} else {
			_, _ = fmt.Fprintf(s.out, "    %s (unset)\n", path)
		}
	}
	return nil
}

// cmdOPAExplain shows how the policy's residual for one source
// translates into conditions.
//
//	opa explain orders
//	opa explain orders o verbose
func (s *Session) cmdOPAExplain(args string) error {
	if s.opa == nil {
		return errOPAOff
	}
	fields := strings.Fields(args)
	verbose := len(fields) > 1 && strings.EqualFold(fields[len(fields)-1], "verbose")
	if verbose {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return errors.New("usage: opa explain <source> [alias] [verbose]")
	}
	name, err := nodes.NewQualifiedName(strings.ToUpper(fields[0]))
	if err != nil {
		return err
	}
	ref := plugins.SourceRef{Name: name, Qualifier: name}
	if len(fields) == 2 {
		if ref.Qualifier, err = nodes.NewQualifiedName(strings.ToUpper(fields[1])); err != nil {
			return err
		}
	}

	result, err := s.opaClient().Explain(ref)
	if err != nil {
		return fmt.Errorf("OPA explain: %w", err)
	}
	_, _ = fmt.Fprintf(s.out, "  OPA explain for %s:\n", ref.Name)
	if verbose {
		_, _ = fmt.Fprintf(s.out, "    Request:\n      %s\n", result.RequestJSON)
		_, _ = fmt.Fprintf(s.out, "    Response:\n      %s\n", strings.TrimSpace(result.RawJSON))
	}
	switch {
	case result.AccessDenied:
		_, _ = fmt.Fprintln(s.out, "    Access denied (no matching rules)")
		return nil
	case result.UnconditionalAllow:
		_, _ = fmt.Fprintln(s.out, "    Unconditional allow (no conditions)")
		s.printMasks(result.Masks)
		return nil
	}
	if verbose {
		_, _ = fmt.Fprintln(s.out, "    Translation:")
		for i, tr := range result.Translations {
			_, _ = fmt.Fprintf(s.out, "      [%d] %s(%s, %v) -> %s\n", i+1, tr.Operator, tr.Column, tr.Value, tr.SQL)
		}
	}
	_, _ = fmt.Fprintf(s.out, "    %d query(ies), %d expression(s)\n", result.QueryCount, result.ExpressionCount)
	_, _ = fmt.Fprintln(s.out, "    Conditions:")
	for _, cond := range result.Conditions {
		_, _ = fmt.Fprintf(s.out, "      %s\n", s.formatExpression(cond))
	}
	s.printMasks(result.Masks)
	return nil
}

// cmdOPAConditions shows the conditions the policy adds for each source
// of the current query.
func (s *Session) cmdOPAConditions() error {
	if s.opa == nil {
		return errOPAOff
	}
	q, err := s.currentQuery()
	if err != nil {
		return err
	}
	client := s.opaClient()
	_, _ = fmt.Fprintln(s.out, "  OPA conditions:")
	for _, ref := range plugins.CollectSources(q) {
		conditions, err := client.Compile(ref)
		switch {
		case err != nil:
			_, _ = fmt.Fprintf(s.out, "    %s: %v\n", ref.Name, err)
		case len(conditions) == 0:
			_, _ = fmt.Fprintf(s.out, "    %s: (unconditional allow)\n", ref.Name)
		default:
			parts := make([]string, len(conditions))
			for i, c := range conditions {
				parts[i] = s.formatExpression(c)
			}
			_, _ = fmt.Fprintf(s.out, "    %s: %s\n", ref.Name, strings.Join(parts, " AND "))
		}
	}
	return nil
}

func (s *Session) cmdOPAMasks() error {
	if s.opa == nil {
		return errOPAOff
	}
	masks, err := s.opaClient().FetchMasks()
	if err != nil {
		return fmt.Errorf("OPA masks: %w", err)
	}
	if len(masks) == 0 {
		_, _ = fmt.Fprintln(s.out, "  No masks active.")
		return nil
	}
	s.printMasks(masks)
	return nil
}

func (s *Session) printMasks(masks opa.Masks) {
	if len(masks) == 0 {
		return
	}
	_, _ = fmt.Fprintln(s.out, "    Masks:")
	sources := make([]string, 0, len(masks))
	for src := range masks {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		cols := make([]string, 0, len(masks[src]))
		for col := range masks[src] {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			if action := masks[src][col]; action.Replace != nil {
				_, _ = fmt.Fprintf(s.out, "      %s.%s -> replace: '%s'\n", src, col, action.Replace.Value)
			}
		}
	}
}

// formatExpression renders e in the engine's dialect without bind
// parameters, falling back to its canonical text.
func (s *Session) formatExpression(e nodes.Expression) string {
	sql, err := newVisitor(s.engine).Format(e)
	if err != nil {
		return e.String()
	}
	return sql
}

// currentQuery builds the query under construction without plugins.
func (s *Session) currentQuery() (*nodes.Query, error) {
	if s.query == nil {
		return nil, errNoQuery
	}
	return s.query.Build()
}

// parseOPAValue reads numbers and booleans as JSON would, anything else
// as a string.
func parseOPAValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func setNestedValue(m map[string]any, path string, val any) {
	parts := strings.Split(path, ".")
	current := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := current[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[p] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = val
}

func deleteNestedValue(m map[string]any, path string) {
	parts := strings.Split(path, ".")
	current := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := current[p].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, parts[len(parts)-1])
}

func getNestedValue(m map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := current[p].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current[parts[len(parts)-1]]
}
