/*
Package schema defines the declarative entity definitions that drive the
dynamic object model.

An entity is an ordered list of typed fields. Entities are usually written
in YAML and loaded into a Registry:

	entity: Store
	fields:
	  id:        { type: string, optional: true }
	  version:   { type: int, optional: true }
	  key:       { type: string }
	  name:      { type: localized, optional: true }
	  languages: { type: array, optional: true }

	---
	entity: Money
	fields:
	  currencyCode: { type: string }
	  centAmount:   { type: int }

# Field Types

Primitive types pass raw JSON values through unchanged:

  - string, int, float, bool
  - datetime: RFC 3339 string or time.Time
  - array:    JSON array
  - map:      JSON object without a schema
  - any:      anything

Deserializable types are materialized into typed values:

  - entity:     nested object of the entity named by "to"
  - collection: ordered list of the entity named by "to"
  - localized:  language tag to text mapping

# Optionality

Fields are required by default: setting a required field to nil is
rejected. Reading an absent field is always allowed.

# Decorators

A field may name a decorator registered with Registry.RegisterDecorator.
The decorator wraps every non-nil value stored in the field:

	price: { type: entity, to: Money, decorator: money }

# Resolution

Registry.Resolve links "to" names to entity definitions and attaches
decorators. It must succeed before objects are built from the registry.

	reg := schema.NewRegistry()
	entities, err := schema.ParseFile("schemas/store.yaml")
	err = reg.Add(entities...)
	err = reg.Resolve()
*/
package schema
