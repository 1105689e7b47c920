package nodes

import (
	"fmt"
	"sort"
	"strings"
)

// Property is one key/value entry of a property bag.
type Property struct {
	Key   string
	Value Expression
}

// Properties is an immutable, insertion-ordered bag of statement
// properties such as VALUE_FORMAT or KAFKA_TOPIC. Order is kept for
// rendering only; Equal and Hash treat the bag as a set of entries.
//
// The zero value is an empty bag.
type Properties struct {
	keys   []string
	values map[string]Expression
}

// NewProperties copies entries into a new bag. Keys must be unique and
// non-empty and every value must be present.
func NewProperties(entries ...Property) (Properties, error) {
	if len(entries) == 0 {
		return Properties{}, nil
	}
	p := Properties{
		keys:   make([]string, 0, len(entries)),
		values: make(map[string]Expression, len(entries)),
	}
	for _, e := range entries {
		if e.Key == "" {
			return Properties{}, ErrInvalidProperty
		}
		if e.Value == nil {
			return Properties{}, fmt.Errorf("property %s: %w", e.Key, ErrMissingProperties)
		}
		if _, dup := p.values[e.Key]; dup {
			return Properties{}, fmt.Errorf("property %s: %w", e.Key, ErrDuplicateProperty)
		}
		p.keys = append(p.keys, e.Key)
		p.values[e.Key] = e.Value
	}
	return p, nil
}

// PropertiesFromMap copies m into a bag ordered by key.
func PropertiesFromMap(m map[string]Expression) (Properties, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]Property, len(keys))
	for i, k := range keys {
		entries[i] = Property{Key: k, Value: m[k]}
	}
	return NewProperties(entries...)
}

// MustProperties is like NewProperties but panics on error.
func MustProperties(entries ...Property) Properties {
	p, err := NewProperties(entries...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Properties) Len() int { return len(p.keys) }

func (p Properties) Get(key string) (Expression, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p Properties) Keys() []string {
	cp := make([]string, len(p.keys))
	copy(cp, p.keys)
	return cp
}

// Entries returns the entries in insertion order.
func (p Properties) Entries() []Property {
	out := make([]Property, len(p.keys))
	for i, k := range p.keys {
		out[i] = Property{Key: k, Value: p.values[k]}
	}
	return out
}

// Map returns a copy of the bag as a map. Changing it does not affect p.
func (p Properties) Map() map[string]Expression {
	out := make(map[string]Expression, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.values[k]
	}
	return out
}

// Merge returns a new bag with entries layered over p. Existing keys keep
// their position and take the new value; new keys are appended.
func (p Properties) Merge(entries ...Property) (Properties, error) {
	merged := p.Entries()
	index := make(map[string]int, len(merged))
	for i, e := range merged {
		index[e.Key] = i
	}
	for _, e := range entries {
		if i, ok := index[e.Key]; ok {
			merged[i].Value = e.Value
			continue
		}
		index[e.Key] = len(merged)
		merged = append(merged, e)
	}
	return NewProperties(merged...)
}

func (p Properties) Equal(o Properties) bool {
	if len(p.keys) != len(o.keys) {
		return false
	}
	for k, v := range p.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Hash is independent of insertion order.
func (p Properties) Hash() uint64 {
	var acc uint64
	for k, v := range p.values {
		acc += newHasher("Property").str(k).u64(v.Hash()).sum()
	}
	return newHasher("Properties").u64(uint64(len(p.keys))).u64(acc).sum()
}

func (p Properties) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p.values[k].String())
	}
	b.WriteByte('}')
	return b.String()
}
