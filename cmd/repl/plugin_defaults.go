package main

import (
	"fmt"
	"strings"

	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/plugins/defaults"
)

// configureDefaults registers the property defaults plugin, either from a
// YAML file or from inline KEY=VALUE pairs.
//
//	plugin defaults ksql-defaults.yaml
//	plugin defaults topic VALUE_FORMAT='JSON', PARTITIONS=4
func configureDefaults(s *Session, args string) error {
	rest := strings.TrimSpace(args)
	if strings.HasSuffix(rest, ".yaml") || strings.HasSuffix(rest, ".yml") {
		return s.loadDefaults(rest)
	}

	var opts []defaults.Option
	if len(rest) >= 5 && strings.EqualFold(rest[:5], "topic") && (len(rest) == 5 || rest[5] == ' ') {
		opts = append(opts, defaults.WithTopicFromName())
		rest = strings.TrimSpace(rest[5:])
	}
	if rest != "" {
		p, err := newParser(rest, s.line, s.col+strings.Index(args, rest))
		if err != nil {
			return fmt.Errorf("plugin defaults: %w", err)
		}
		props, err := p.properties()
		if err != nil {
			return fmt.Errorf("plugin defaults: %w", err)
		}
		for _, prop := range props {
			opts = append(opts, defaults.WithProperty(prop.Key, prop.Value))
		}
	}
	s.useDefaults(defaults.New(opts...))
	return nil
}

// loadDefaults reads a defaults config file and registers the result.
func (s *Session) loadDefaults(path string) error {
	d, err := defaults.LoadFile(path)
	if err != nil {
		return fmt.Errorf("plugin defaults: %w", err)
	}
	s.log.Debug("loaded defaults", "path", path, "keys", d.Keys())
	s.useDefaults(d)
	return nil
}

func (s *Session) useDefaults(d *defaults.Defaults) {
	keys := strings.Join(d.Keys(), ", ")
	if keys == "" {
		keys = "none"
	}
	s.plugins.enable(pluginEntry{
		name:    "defaults",
		factory: func() plugins.Transformer { return d },
		status:  func() string { return "keys: " + keys },
		color:   "#6699CC",
	})
	_, _ = fmt.Fprintf(s.out, "  Defaults enabled (%s)\n", keys)
}
