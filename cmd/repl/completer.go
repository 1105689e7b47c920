package main

import (
	"sort"
	"strings"
)

// completionContext describes what kind of completion is appropriate.
type completionContext int

const (
	contextCommand    completionContext = iota // start of line or partial command
	contextSourceName                          // after from/join/insert into/drop
	contextColumnRef                           // after select/where/having/group
	contextEngine                              // after engine
	contextPlugin                              // after plugin
	contextPluginOff                           // after plugin off
	contextOperator                            // after a column ref in condition context
	contextProperty                            // after with
)

var engineNames = []string{"ksql", "mysql", "postgres", "sqlite"}

var operators = []string{
	"!=", "%", "*", "+", "-", "/", "<", "<=", "<>", "=", ">", ">=",
	"and", "is distinct from", "is not null", "is null", "not", "or",
}

var propertyNames = []string{
	"FORMAT=", "KAFKA_TOPIC=", "KEY_FORMAT=", "PARTITIONS=", "REPLICAS=",
	"RETENTION_MS=", "TIMESTAMP=", "VALUE_FORMAT=", "WRAP_SINGLE_VALUE=",
}

var functionNames = []string{
	"ABS(", "AS_VALUE(", "AVG(", "CEIL(", "COALESCE(", "CONCAT(", "COUNT(",
	"COUNT_DISTINCT(", "EARLIEST_BY_OFFSET(", "FLOOR(", "IFNULL(", "LATEST_BY_OFFSET(",
	"LCASE(", "LEN(", "MAX(", "MIN(", "ROUND(", "SUBSTRING(", "SUM(", "TOPK(",
	"TRIM(", "UCASE(",
}

// replCompleter implements readline's AutoCompleter interface.
type replCompleter struct {
	sess *Session
}

// Do returns completion candidates for the current line/cursor position.
// length is the number of chars from end of line[:pos] that form the prefix being completed.
// newLine contains the suffixes to append for each candidate.
func (c *replCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	ctx, prefix := c.parseContext(lineStr)

	var candidates []string
	switch ctx {
	case contextCommand:
		candidates = c.completeCommands(prefix)
	case contextSourceName:
		candidates = c.completeSourceNames(prefix)
	case contextColumnRef:
		candidates = c.completeColumnRef(prefix)
	case contextEngine:
		candidates = filterPrefix(engineNames, prefix)
	case contextPlugin:
		candidates = filterPrefix(append([]string{"off"}, c.sess.pluginNames()...), prefix)
	case contextPluginOff:
		candidates = filterPrefix(c.sess.plugins.enabledNames(), prefix)
	case contextOperator:
		candidates = filterPrefix(operators, prefix)
	case contextProperty:
		candidates = filterPrefix(propertyNames, prefix)
	}

	for _, cand := range candidates {
		suffix := cand[len(prefix):]
		if !strings.HasSuffix(cand, "(") && !strings.HasSuffix(cand, "=") {
			suffix += " "
		}
		newLine = append(newLine, []rune(suffix))
	}
	length = len([]rune(prefix))
	return
}

// parseContext examines the line up to cursor and determines what kind of
// completion is needed and the current prefix being typed.
func (c *replCompleter) parseContext(line string) (completionContext, string) {
	lower := strings.ToLower(line)

	for _, cmd := range c.sess.commands {
		if !strings.HasSuffix(cmd.prefix, " ") {
			continue // exact-match commands have no arg completion
		}
		if strings.HasPrefix(lower, cmd.prefix) && cmd.completer != nil {
			return cmd.completer(line[len(cmd.prefix):])
		}
	}

	// Default: command completion.
	return contextCommand, strings.TrimLeft(line, " \t")
}

// completeCommands returns command names matching the prefix.
func (c *replCompleter) completeCommands(prefix string) []string {
	return filterPrefix(c.sess.commandNames(), prefix)
}

// completeSourceNames returns sources referenced by the current query plus
// tables known to the connected database.
func (c *replCompleter) completeSourceNames(prefix string) []string {
	names := c.sess.sourceNames()
	if c.sess.conn != nil {
		names = append(names, c.sess.conn.sourceNames()...)
	}
	names = dedup(names)
	sort.Strings(names)
	return filterPrefix(names, prefix)
}

// completeColumnRef handles both source-name and source.column completion.
func (c *replCompleter) completeColumnRef(prefix string) []string {
	if strings.Contains(prefix, ".") {
		source := prefix[:strings.Index(prefix, ".")]
		candidates := []string{source + ".*"}
		if c.sess.conn != nil {
			cols, _ := c.sess.conn.columns(c.sess.sourceFor(source))
			for _, col := range cols {
				candidates = append(candidates, source+"."+col)
			}
		}
		return filterPrefix(candidates, prefix)
	}

	// Before the dot: complete source names and function names.
	candidates := c.completeSourceNames(prefix)
	candidates = append(candidates, filterPrefix(functionNames, prefix)...)
	return candidates
}

// filterPrefix returns items that start with prefix (case-insensitive).
func filterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		result := make([]string, len(items))
		copy(result, items)
		return result
	}
	lowerPrefix := strings.ToLower(prefix)
	var result []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), lowerPrefix) {
			result = append(result, item)
		}
	}
	return result
}

// dedup removes duplicate strings.
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	var result []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}

// lastToken returns the last whitespace-separated token, handling commas.
func lastToken(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' || s[i] == ',' || s[i] == '\t' {
			return s[i+1:]
		}
	}
	return s
}
