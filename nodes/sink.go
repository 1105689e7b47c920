package nodes

import "fmt"

// Sink describes the output target of a CREATE ... AS SELECT statement.
// It is derived on demand from the statement and never stored.
type Sink struct {
	name       string
	table      bool
	properties Properties
}

func NewSink(name string, isTable bool, properties Properties) Sink {
	return Sink{name: name, table: isTable, properties: properties}
}

func (s Sink) Name() string           { return s.name }
func (s Sink) IsTable() bool          { return s.table }
func (s Sink) Properties() Properties { return s.properties }

func (s Sink) Equal(o Sink) bool {
	return s.name == o.name && s.table == o.table && s.properties.Equal(o.properties)
}

func (s Sink) String() string {
	return fmt.Sprintf("Sink{name=%s, isTable=%t, properties=%s}", s.name, s.table, s.properties)
}
