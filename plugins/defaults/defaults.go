// Package defaults provides a Transformer that fills in missing WITH
// properties on CREATE ... AS SELECT statements.
//
// Properties the user wrote are never overridden; defaults are appended
// after them in the order they were configured.
//
// # Basic usage
//
//	d := defaults.New(
//	    defaults.WithProperty("VALUE_FORMAT", nodes.NewStringLiteral("JSON")),
//	    defaults.WithTopicFromName(),
//	)
//	ctas := managers.NewCreateTableAsSelectManager(name, query).Use(d)
//	// CREATE TABLE TOTALS WITH (VALUE_FORMAT='JSON', KAFKA_TOPIC='TOTALS') AS ...
//
// # Configuration file
//
//	topic_from_name: true
//	properties:
//	  VALUE_FORMAT: JSON
//	  PARTITIONS: 4
//
// Keys keep their file order. Scalars become string, integer, double or
// boolean literals according to their YAML type.
package defaults

import (
	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
)

// TopicProperty is the property naming the backing Kafka topic.
const TopicProperty = "KAFKA_TOPIC"

// Defaults is a Transformer that adds configured properties to CREATE
// TABLE/STREAM AS SELECT statements that lack them.
type Defaults struct {
	plugins.BaseTransformer
	entries       []nodes.Property
	topicFromName bool
}

// Option configures a Defaults transformer.
type Option func(*Defaults)

// WithProperty adds a default for key. A later option for the same key
// replaces the value but keeps the original position.
func WithProperty(key string, value nodes.Expression) Option {
	return func(d *Defaults) {
		for i, e := range d.entries {
			if e.Key == key {
				d.entries[i].Value = value
				return
			}
		}
		d.entries = append(d.entries, nodes.Property{Key: key, Value: value})
	}
}

// WithTopicFromName sets KAFKA_TOPIC to the sink name when absent.
func WithTopicFromName() Option {
	return func(d *Defaults) { d.topicFromName = true }
}

// New creates a Defaults transformer with the given options.
func New(opts ...Option) *Defaults {
	d := &Defaults{}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Keys returns the configured property keys in order.
func (d *Defaults) Keys() []string {
	keys := make([]string, 0, len(d.entries)+1)
	for _, e := range d.entries {
		keys = append(keys, e.Key)
	}
	if d.topicFromName && !d.has(TopicProperty) {
		keys = append(keys, TopicProperty)
	}
	return keys
}

func (d *Defaults) has(key string) bool {
	for _, e := range d.entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

func (d *Defaults) TransformCreateTableAsSelect(n *nodes.CreateTableAsSelect) (*nodes.CreateTableAsSelect, error) {
	props, changed, err := d.fill(n.Properties(), n.Sink().Name())
	if err != nil || !changed {
		return n, err
	}
	return n.WithProperties(props), nil
}

func (d *Defaults) TransformCreateStreamAsSelect(n *nodes.CreateStreamAsSelect) (*nodes.CreateStreamAsSelect, error) {
	props, changed, err := d.fill(n.Properties(), n.Sink().Name())
	if err != nil || !changed {
		return n, err
	}
	return n.WithProperties(props), nil
}

// fill appends every default whose key props lacks.
func (d *Defaults) fill(props nodes.Properties, sink string) (nodes.Properties, bool, error) {
	var missing []nodes.Property
	for _, e := range d.entries {
		if _, ok := props.Get(e.Key); !ok {
			missing = append(missing, e)
		}
	}
	if d.topicFromName && !d.has(TopicProperty) {
		if _, ok := props.Get(TopicProperty); !ok {
			missing = append(missing, nodes.Property{Key: TopicProperty, Value: nodes.NewStringLiteral(sink)})
		}
	}
	if len(missing) == 0 {
		return props, false, nil
	}
	out, err := props.Merge(missing...)
	if err != nil {
		return props, false, err
	}
	return out, true, nil
}
