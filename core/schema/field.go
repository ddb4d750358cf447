package schema

import "fmt"

// Field defines one typed property of an entity.
type Field struct {
	// Name is the JSON property name. It is taken from the mapping key when
	// the field is declared in YAML.
	Name string `yaml:"-"`

	// Type is the field type. See FieldType constants.
	Type FieldType `yaml:"type"`

	// To names the target entity for entity and collection fields.
	To string `yaml:"to,omitempty"`

	// Optional allows the field to be explicitly set to nil.
	Optional bool `yaml:"optional,omitempty"`

	// Decorator names a post-processing hook registered on the Registry.
	Decorator string `yaml:"decorator,omitempty"`

	// Description for documentation.
	Description string `yaml:"description,omitempty"`

	// Resolved on Registry.Resolve.
	ref      *Entity
	decorate Decorator
}

// FieldType represents the type of a schema field.
type FieldType string

const (
	// Primitive types: raw values pass through unchanged.
	FieldTypeString   FieldType = "string"
	FieldTypeInt      FieldType = "int"
	FieldTypeFloat    FieldType = "float"
	FieldTypeBool     FieldType = "bool"
	FieldTypeDateTime FieldType = "datetime"
	FieldTypeArray    FieldType = "array"
	FieldTypeMap      FieldType = "map"
	FieldTypeAny      FieldType = "any"

	// Deserializable types: raw values are materialized into typed values.
	FieldTypeEntity     FieldType = "entity"     // Requires To
	FieldTypeCollection FieldType = "collection" // Requires To (element entity)
	FieldTypeLocalized  FieldType = "localized"  // language tag -> text
)

// Decorator post-processes a materialized, non-nil field value.
type Decorator func(value any) any

// IsPrimitive reports whether raw values of this type are passed through as is.
func (t FieldType) IsPrimitive() bool {
	switch t {
	case FieldTypeEntity, FieldTypeCollection, FieldTypeLocalized:
		return false
	}
	return true
}

// IsValid reports whether t is a known field type.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeString, FieldTypeInt, FieldTypeFloat, FieldTypeBool,
		FieldTypeDateTime, FieldTypeArray, FieldTypeMap, FieldTypeAny,
		FieldTypeEntity, FieldTypeCollection, FieldTypeLocalized:
		return true
	default:
		return false
	}
}

// NeedsTarget reports whether the type requires a target entity.
func (t FieldType) NeedsTarget() bool {
	return t == FieldTypeEntity || t == FieldTypeCollection
}

// Ref returns the resolved target entity, or nil for other field types or
// before the owning registry has been resolved.
func (f Field) Ref() *Entity {
	return f.ref
}

// Decorate applies the field's decorator. Nil values are never decorated.
func (f Field) Decorate(value any) any {
	if f.decorate == nil || value == nil {
		return value
	}
	return f.decorate(value)
}

// HasDecorator reports whether a decorator is attached.
func (f Field) HasDecorator() bool {
	return f.decorate != nil
}

// String renders the field type for error messages, e.g. "entity<Money>".
func (f Field) String() string {
	if f.To != "" {
		return fmt.Sprintf("%s<%s>", f.Type, f.To)
	}
	return string(f.Type)
}

func (f Field) validate() error {
	if !isValidIdentifier(f.Name) {
		return fmt.Errorf("field name %q is not a valid identifier", f.Name)
	}
	if !f.Type.IsValid() {
		return fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
	}
	if f.Type.NeedsTarget() && f.To == "" {
		return fmt.Errorf("field %q: %s type requires 'to' target", f.Name, f.Type)
	}
	if !f.Type.NeedsTarget() && f.To != "" {
		return fmt.Errorf("field %q: 'to' is only valid for entity and collection types", f.Name)
	}
	return nil
}
