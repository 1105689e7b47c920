package defaults

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bawdo/ksqltree/nodes"
)

// ErrInvalidConfig is returned for a malformed defaults file.
var ErrInvalidConfig = errors.New("defaults: invalid config")

// fileConfig is the on-disk layout. Properties stays a raw node so the
// mapping keeps its key order.
type fileConfig struct {
	TopicFromName bool      `yaml:"topic_from_name"`
	Properties    yaml.Node `yaml:"properties"`
}

// LoadFile reads a YAML defaults file.
func LoadFile(path string) (*Defaults, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	defer f.Close()
	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Load decodes a YAML defaults document from r.
func Load(r io.Reader) (*Defaults, error) {
	var cfg fileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	return New(opts...), nil
}

func (c fileConfig) options() ([]Option, error) {
	var opts []Option
	if c.TopicFromName {
		opts = append(opts, WithTopicFromName())
	}
	props := c.Properties
	if props.Kind == 0 {
		return opts, nil
	}
	if props.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: properties must be a mapping", ErrInvalidConfig, props.Line)
	}
	seen := make(map[string]bool, len(props.Content)/2)
	for i := 0; i+1 < len(props.Content); i += 2 {
		key, val := props.Content[i], props.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, fmt.Errorf("%w: line %d: property key must be a non-empty string", ErrInvalidConfig, key.Line)
		}
		if seen[key.Value] {
			return nil, fmt.Errorf("%w: line %d: duplicate property %q", ErrInvalidConfig, key.Line, key.Value)
		}
		seen[key.Value] = true
		expr, err := literal(val)
		if err != nil {
			return nil, fmt.Errorf("%w: property %s: %v", ErrInvalidConfig, key.Value, err)
		}
		opts = append(opts, WithProperty(key.Value, expr))
	}
	return opts, nil
}

// literal converts a YAML scalar to the matching literal node.
func literal(n *yaml.Node) (nodes.Expression, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: value must be a scalar", n.Line)
	}
	switch n.ShortTag() {
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return nodes.NewIntegerLiteral(v), nil
	case "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return nodes.NewDoubleLiteral(v), nil
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return nodes.NewBooleanLiteral(v), nil
	case "!!null":
		return nil, fmt.Errorf("line %d: %w", n.Line, nodes.ErrMissingProperties)
	default:
		return nodes.NewStringLiteral(n.Value), nil
	}
}
