package main

import (
	"sort"
	"strings"

	"github.com/bawdo/ksqltree/nodes"
)

// commandEntry maps a REPL prefix to its handler and optional tab-completer.
type commandEntry struct {
	prefix    string
	handler   func(args string) error
	completer func(args string) (completionContext, string) // nil = no arg completion
	hidden    bool                                          // excluded from commandNames()
}

// initCommands builds the command registry and sorts by prefix length descending.
func (s *Session) initCommands() {
	s.commands = []commandEntry{
		// --- no-arg / display commands ---
		{prefix: "sql", handler: func(_ string) error { return s.cmdSQL() }},
		{prefix: "tosql", handler: func(_ string) error { return s.cmdSQL() }, hidden: true},
		{prefix: "ksql", handler: func(_ string) error { return s.cmdKSQL() }},
		{prefix: "ast", handler: func(_ string) error { return s.cmdAST() }},
		{prefix: "sink", handler: func(_ string) error { return s.cmdSink() }},
		{prefix: "dot ", handler: func(a string) error { return s.cmdDot(a) }},
		{prefix: "dot", handler: func(a string) error { return s.cmdDot(a) }},
		{prefix: "history", handler: func(_ string) error { return s.cmdHistory() }},
		{prefix: "reset", handler: func(_ string) error { return s.cmdReset() }},
		{prefix: "help", handler: func(_ string) error { s.cmdHelp(); return nil }},

		// --- query building ---
		{prefix: "from ", handler: func(a string) error { return s.cmdFrom(a) }, completer: completeSourceArgs},
		{prefix: "select ", handler: func(a string) error { return s.cmdSelect(a) }, completer: completeColumnArgs},
		{prefix: "distinct", handler: func(_ string) error { return s.cmdDistinct() }},
		{prefix: "where ", handler: func(a string) error { return s.cmdWhere(a) }, completer: completeColumnArgs},
		{prefix: "group ", handler: func(a string) error { return s.cmdGroup(a) }, completer: completeColumnArgs},
		{prefix: "having ", handler: func(a string) error { return s.cmdHaving(a) }, completer: completeColumnArgs},
		{prefix: "limit ", handler: func(a string) error { return s.cmdLimit(a) }},

		// --- joins (multi-word prefixes) ---
		{prefix: "full outer join ", handler: func(a string) error { return s.cmdJoin(a, nodes.OuterJoin) }, completer: completeJoinArgs, hidden: true},
		{prefix: "full join ", handler: func(a string) error { return s.cmdJoin(a, nodes.OuterJoin) }, completer: completeJoinArgs},
		{prefix: "outer join ", handler: func(a string) error { return s.cmdJoin(a, nodes.OuterJoin) }, completer: completeJoinArgs, hidden: true},
		{prefix: "left join ", handler: func(a string) error { return s.cmdJoin(a, nodes.LeftJoin) }, completer: completeJoinArgs},
		{prefix: "inner join ", handler: func(a string) error { return s.cmdJoin(a, nodes.InnerJoin) }, completer: completeJoinArgs, hidden: true},
		{prefix: "join ", handler: func(a string) error { return s.cmdJoin(a, nodes.InnerJoin) }, completer: completeJoinArgs},

		// --- statements ---
		{prefix: "create table ", handler: func(a string) error { return s.cmdCreate(a, modeCreateTable) }},
		{prefix: "create stream ", handler: func(a string) error { return s.cmdCreate(a, modeCreateStream) }},
		{prefix: "insert into ", handler: func(a string) error { return s.cmdInsertInto(a) }, completer: completeSourceArgs},
		{prefix: "with ", handler: func(a string) error { return s.cmdWith(a) }, completer: completePropertyArgs},
		{prefix: "partition by ", handler: func(a string) error { return s.cmdPartitionBy(a) }, completer: completeColumnArgs},
		{prefix: "drop table ", handler: func(a string) error { return s.cmdDrop(a, false) }, completer: completeSourceArgs},
		{prefix: "drop stream ", handler: func(a string) error { return s.cmdDrop(a, true) }, completer: completeSourceArgs},

		// --- database connectivity ---
		{prefix: "connect ", handler: func(a string) error { return s.cmdConnect(a) }},
		{prefix: "connect", handler: func(_ string) error { return s.cmdConnect("") }},
		{prefix: "disconnect", handler: func(_ string) error { return s.cmdDisconnect() }},
		{prefix: "exec", handler: func(_ string) error { return s.cmdExec() }},
		{prefix: "run", handler: func(_ string) error { return s.cmdExec() }, hidden: true},

		// --- output toggles ---
		{prefix: "params", handler: func(_ string) error { return s.cmdParameterize() }},
		{prefix: "parameterize", handler: func(_ string) error { return s.cmdParameterize() }, hidden: true},
		{prefix: "pretty", handler: func(_ string) error { return s.cmdPretty() }},

		// --- engine / plugins ---
		{prefix: "engine ", handler: func(a string) error { return s.cmdEngine(a) }, completer: completeEngineArgs},
		{prefix: "plugin ", handler: func(a string) error { return s.cmdPlugin(a) }, completer: completePluginArgs},
		{prefix: "plugins", handler: func(_ string) error { s.cmdPlugins(); return nil }},

		// --- opa ---
		{prefix: "opa status", handler: func(_ string) error { return s.cmdOPAStatus() }},
		{prefix: "opa input ", handler: func(a string) error { return s.cmdOPAInput(a) }},
		{prefix: "opa inputs", handler: func(_ string) error { return s.cmdOPAInputs() }},
		{prefix: "opa explain ", handler: func(a string) error { return s.cmdOPAExplain(a) }, completer: completeSourceArgs},
		{prefix: "opa conditions", handler: func(_ string) error { return s.cmdOPAConditions() }},
		{prefix: "opa masks", handler: func(_ string) error { return s.cmdOPAMasks() }},
		{prefix: "opa off", handler: func(_ string) error { return s.cmdPluginOff([]string{"opa"}) }},
	}

	// Sort by prefix length descending so longest prefixes match first.
	sort.SliceStable(s.commands, func(i, j int) bool {
		return len(s.commands[i].prefix) > len(s.commands[j].prefix)
	})
}

// commandNames derives the command name list from the registry for tab completion.
func (s *Session) commandNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range s.commands {
		if cmd.hidden {
			continue
		}
		name := strings.TrimRight(cmd.prefix, " ")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	// exit/quit are handled by the REPL loop, not Execute().
	for _, extra := range []string{"exit", "quit"} {
		if !seen[extra] {
			names = append(names, extra)
		}
	}
	sort.Strings(names)
	return names
}

// --- Shared completion helpers ---

// completeJoinArgs handles completion for join prefixes:
// source name, then column refs once the ON clause starts.
func completeJoinArgs(args string) (completionContext, string) {
	words := strings.Fields(args)
	if len(words) == 0 {
		return contextSourceName, ""
	}
	if strings.Contains(args, " ") {
		if strings.HasSuffix(args, " ") {
			return contextOperator, ""
		}
		return contextColumnRef, words[len(words)-1]
	}
	return contextSourceName, args
}

// completeSourceArgs handles completion for commands naming one source
// (from, insert into, drop table|stream).
func completeSourceArgs(args string) (completionContext, string) {
	arg := strings.TrimSpace(args)
	if !strings.Contains(arg, " ") && !strings.HasSuffix(args, " ") {
		return contextSourceName, arg
	}
	return contextCommand, ""
}

// completeColumnArgs handles completion for column-ref commands
// (select, where, having, group, partition by).
func completeColumnArgs(args string) (completionContext, string) {
	last := lastToken(args)
	if strings.HasSuffix(args, " ") {
		prevTokens := strings.Fields(args)
		if len(prevTokens) > 0 && strings.Contains(prevTokens[len(prevTokens)-1], ".") {
			return contextOperator, ""
		}
		return contextColumnRef, ""
	}
	return contextColumnRef, last
}

// completePropertyArgs completes well-known WITH property keys.
func completePropertyArgs(args string) (completionContext, string) {
	last := lastToken(args)
	if strings.Contains(last, "=") {
		return contextCommand, ""
	}
	return contextProperty, last
}

// completeEngineArgs handles completion for the engine command.
func completeEngineArgs(args string) (completionContext, string) {
	return contextEngine, strings.TrimSpace(args)
}

// completePluginArgs handles completion for the plugin command:
// plugin names, or after "off" the names of enabled plugins.
func completePluginArgs(args string) (completionContext, string) {
	if strings.HasPrefix(strings.ToLower(args), "off ") {
		return contextPluginOff, strings.TrimSpace(args[4:])
	}
	arg := strings.TrimSpace(args)
	if !strings.Contains(arg, " ") {
		return contextPlugin, arg
	}
	return contextCommand, ""
}
