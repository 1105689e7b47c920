package main

import (
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

// pluginEntry is an enabled plugin.
type pluginEntry struct {
	name    string
	factory func() plugins.Transformer // fresh instance per build
	status  func() string
	color   string // DOT provenance cluster color
	off     func() // optional, runs when the plugin is disabled
}

// pluginConfigurer is a plugin the 'plugin <name> [args]' command can enable.
type pluginConfigurer struct {
	name      string
	configure func(s *Session, args string) error
}

// pluginRegistry knows every plugin and holds the enabled ones in the
// order they were first enabled, which is the order they transform in.
type pluginRegistry struct {
	known   []pluginConfigurer
	enabled []pluginEntry
}

func (r *pluginRegistry) configurer(name string) (pluginConfigurer, bool) {
	for _, c := range r.known {
		if c.name == name {
			return c, true
		}
	}
	return pluginConfigurer{}, false
}

func (r *pluginRegistry) knownNames() []string {
	out := make([]string, len(r.known))
	for i, c := range r.known {
		out[i] = c.name
	}
	return out
}

// enable adds entry, or reconfigures it in place when already enabled.
func (r *pluginRegistry) enable(entry pluginEntry) {
	for i, e := range r.enabled {
		if e.name == entry.name {
			r.enabled[i] = entry
			return
		}
	}
	r.enabled = append(r.enabled, entry)
}

// disable removes the named plugin and reports whether it was enabled.
func (r *pluginRegistry) disable(name string) bool {
	for i, e := range r.enabled {
		if e.name != name {
			continue
		}
		if e.off != nil {
			e.off()
		}
		r.enabled = append(r.enabled[:i:i], r.enabled[i+1:]...)
		return true
	}
	return false
}

func (r *pluginRegistry) disableAll() {
	for _, e := range r.enabled {
		if e.off != nil {
			e.off()
		}
	}
	r.enabled = nil
}

func (r *pluginRegistry) lookup(name string) (pluginEntry, bool) {
	for _, e := range r.enabled {
		if e.name == name {
			return e, true
		}
	}
	return pluginEntry{}, false
}

func (r *pluginRegistry) enabledNames() []string {
	out := make([]string, len(r.enabled))
	for i, e := range r.enabled {
		out[i] = e.name
	}
	return out
}

func (r *pluginRegistry) transformers() []plugins.Transformer {
	out := make([]plugins.Transformer, len(r.enabled))
	for i, e := range r.enabled {
		out[i] = e.factory()
	}
	return out
}

// trace applies the enabled plugins one at a time and attributes each WITH
// property a plugin adds to that plugin.
func (r *pluginRegistry) trace(stmt nodes.Statement) (nodes.Statement, *visitors.PluginProvenance, error) {
	prov := visitors.NewPluginProvenance()
	for _, e := range r.enabled {
		before := propertyKeys(stmt)
		next, err := plugins.Apply(stmt, e.factory())
		if err != nil {
			return nil, nil, err
		}
		for _, key := range propertyKeys(next).Keys() {
			if _, ok := before.Get(key); !ok {
				prov.AddProperty(e.name, e.color, key)
			}
		}
		stmt = next
	}
	return stmt, prov, nil
}

// propertyVisitor yields the WITH properties of CREATE ... AS SELECT
// statements and an empty bag for anything else.
type propertyVisitor struct {
	nodes.DefaultVisitor[nodes.Properties, struct{}]
}

var propertyReader = propertyVisitor{nodes.DefaultVisitor[nodes.Properties, struct{}]{
	Fallback: func(nodes.Node, struct{}) (nodes.Properties, error) { return nodes.Properties{}, nil },
}}

func (propertyVisitor) VisitCreateTableAsSelect(n *nodes.CreateTableAsSelect, _ struct{}) (nodes.Properties, error) {
	return n.Properties(), nil
}

func (propertyVisitor) VisitCreateStreamAsSelect(n *nodes.CreateStreamAsSelect, _ struct{}) (nodes.Properties, error) {
	return n.Properties(), nil
}

func propertyKeys(stmt nodes.Statement) nodes.Properties {
	props, _ := nodes.Accept[nodes.Properties, struct{}](stmt, propertyReader, struct{}{})
	return props
}
