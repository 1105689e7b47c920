package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/plugins/softdelete"
)

// configureSoftdelete parses softdelete arguments and registers the plugin.
//
//	plugin softdelete
//	plugin softdelete REMOVED_AT
//	plugin softdelete REMOVED_AT on ORDERS USERS
//	plugin softdelete ORDERS.DELETED_AT, USERS.REMOVED_AT
func configureSoftdelete(s *Session, args string) error {
	rest := strings.TrimSpace(args)
	var opts []softdelete.Option
	var statusFn func() string

	switch {
	case strings.Contains(rest, "."):
		columns := map[string]string{}
		for _, pair := range strings.Split(rest, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			dot := strings.LastIndexByte(pair, '.')
			if dot <= 0 || dot == len(pair)-1 {
				return fmt.Errorf("invalid source.column pair: %q", pair)
			}
			source := strings.ToUpper(pair[:dot])
			col := strings.ToUpper(pair[dot+1:])
			opts = append(opts, softdelete.WithSourceColumn(source, col))
			columns[source] = col
		}
		statusFn = func() string {
			pairs := make([]string, 0, len(columns))
			for src, col := range columns {
				pairs = append(pairs, src+"."+col)
			}
			sort.Strings(pairs)
			return strings.Join(pairs, ", ")
		}
		_, _ = fmt.Fprintln(s.out, "  Soft-delete enabled (per-source columns)")

	case strings.Contains(strings.ToLower(rest), " on "):
		idx := strings.Index(strings.ToLower(rest), " on ")
		col := strings.ToUpper(strings.TrimSpace(rest[:idx]))
		sources := strings.Fields(strings.ToUpper(rest[idx+4:]))
		if col == "" || len(sources) == 0 {
			return errors.New("usage: plugin softdelete <column> on <source1> [source2 ...]")
		}
		opts = append(opts, softdelete.WithColumn(col), softdelete.WithSources(sources...))
		statusFn = func() string {
			return fmt.Sprintf("column: %s, sources: %s", col, strings.Join(sources, ", "))
		}
		_, _ = fmt.Fprintf(s.out, "  Soft-delete enabled (column: %s, sources: %s)\n", col, strings.Join(sources, ", "))

	case rest != "":
		col := strings.ToUpper(strings.Fields(rest)[0])
		opts = append(opts, softdelete.WithColumn(col))
		statusFn = func() string { return "column: " + col }
		_, _ = fmt.Fprintf(s.out, "  Soft-delete enabled (column: %s)\n", col)

	default:
		statusFn = func() string { return "column: DELETED_AT" }
		_, _ = fmt.Fprintln(s.out, "  Soft-delete enabled (column: DELETED_AT)")
	}

	s.plugins.enable(pluginEntry{
		name:    "softdelete",
		factory: func() plugins.Transformer { return softdelete.New(opts...) },
		status:  statusFn,
		color:   "#CC6666",
	})
	return nil
}
