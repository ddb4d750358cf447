package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entity is the declarative definition of one JSON object type.
// Entities are immutable once added to a Registry.
type Entity struct {
	// Name identifies the entity (e.g., "Store", "LocalizedString").
	Name string `yaml:"entity"`

	// Description for documentation.
	Description string `yaml:"description,omitempty"`

	// Fields in declaration order. Serialization follows this order.
	Fields Fields `yaml:"fields"`

	index map[string]int
}

// Fields is an ordered field list. In YAML it is written as a mapping from
// field name to definition; the mapping order is kept.
type Fields []Field

// UnmarshalYAML decodes a field mapping while preserving key order.
func (fs *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping", node.Line)
	}
	out := make(Fields, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var f Field
		if err := node.Content[i+1].Decode(&f); err != nil {
			return fmt.Errorf("field %q: %w", node.Content[i].Value, err)
		}
		f.Name = node.Content[i].Value
		out = append(out, f)
	}
	*fs = out
	return nil
}

// NewEntity creates an entity from fields declared in Go.
func NewEntity(name string, fields ...Field) *Entity {
	e := &Entity{Name: name, Fields: fields}
	e.reindex()
	return e
}

// Prop declares a field of the given type.
func Prop(name string, t FieldType) Field {
	return Field{Name: name, Type: t}
}

// Of sets the target entity of an entity or collection field.
func (f Field) Of(entity string) Field {
	f.To = entity
	return f
}

// Opt marks the field optional.
func (f Field) Opt() Field {
	f.Optional = true
	return f
}

// Decorated attaches a named decorator.
func (f Field) Decorated(name string) Field {
	f.Decorator = name
	return f
}

func (e *Entity) reindex() {
	e.index = make(map[string]int, len(e.Fields))
	for i, f := range e.Fields {
		e.index[f.Name] = i
	}
}

// Field returns the named field definition.
func (e *Entity) Field(name string) (Field, bool) {
	i, ok := e.index[name]
	if !ok {
		return Field{}, false
	}
	return e.Fields[i], true
}

// Has reports whether the entity declares the field.
func (e *Entity) Has(name string) bool {
	_, ok := e.index[name]
	return ok
}

// FieldNames returns the field names in declaration order.
func (e *Entity) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks the entity definition in isolation. References to other
// entities are checked by Registry.Resolve.
func (e *Entity) Validate() error {
	var errs []string
	if !isValidIdentifier(e.Name) {
		errs = append(errs, fmt.Sprintf("entity name %q is not a valid identifier", e.Name))
	}
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if seen[f.Name] {
			errs = append(errs, fmt.Sprintf("field %q declared twice", f.Name))
		}
		seen[f.Name] = true
		if err := f.validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return joinErrors(errs)
}

// PagedQueryName is the name prefix of synthesized paged query entities.
const PagedQueryName = "PagedQueryResponse"

// PagedOf synthesizes the paged query result entity whose results are a
// collection of elem. elem must already be resolved.
func PagedOf(elem *Entity) *Entity {
	results := Prop("results", FieldTypeCollection).Of(elem.Name)
	results.ref = elem
	return NewEntity(PagedQueryName+elem.Name,
		Prop("limit", FieldTypeInt).Opt(),
		Prop("count", FieldTypeInt).Opt(),
		Prop("total", FieldTypeInt).Opt(),
		Prop("offset", FieldTypeInt).Opt(),
		results,
	)
}
