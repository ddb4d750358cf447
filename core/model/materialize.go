package model

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/artpar/commercekit/core/schema"
)

// materialize converts the raw value of f into its typed form.
// Primitive values pass through unchanged; absent deserializable values
// become empty typed values.
func (o *Object) materialize(f schema.Field) (any, error) {
	raw := o.raw[f.Name]

	switch f.Type {
	case schema.FieldTypeEntity:
		if f.Ref() == nil {
			return nil, o.fieldError(f.Name, f.String(), ErrUnresolved)
		}
		m, ok := asMap(raw)
		if !ok {
			if err := o.shapeError(f); err != nil {
				return nil, err
			}
			m = nil
		}
		return newObject(f.Ref(), m, o.ref), nil

	case schema.FieldTypeCollection:
		if f.Ref() == nil {
			return nil, o.fieldError(f.Name, f.String(), ErrUnresolved)
		}
		items, ok := asSlice(raw)
		if !ok {
			if err := o.shapeError(f); err != nil {
				return nil, err
			}
			items = nil
		}
		return newCollection(f.Ref(), items, o.ref), nil

	case schema.FieldTypeLocalized:
		ls, ok := localizedFromRaw(raw)
		if !ok {
			if err := o.shapeError(f); err != nil {
				return nil, err
			}
			ls = LocalizedString{}
		}
		return ls, nil

	default:
		return raw, nil
	}
}

// shapeError handles raw data that cannot be materialized as declared.
// Graceful contexts get the error reported and an empty value is used.
func (o *Object) shapeError(f schema.Field) error {
	err := o.fieldError(f.Name, f.String(), ErrWrongType)
	ctx := o.ref.ctx
	if ctx.Graceful() {
		ctx.Report(err)
		return nil
	}
	return err
}

func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case nil:
		return nil, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func asSlice(raw any) ([]any, bool) {
	switch s := raw.(type) {
	case nil:
		return nil, true
	case []any:
		return s, true
	}
	return nil, false
}

// coerce checks value against the kind declared by f and returns the form
// stored in the typed cache. Models are unwrapped to their Object.
// Only the kind is checked, not nested structure.
func coerce(f schema.Field, value any) (any, bool) {
	switch f.Type {
	case schema.FieldTypeString:
		_, ok := value.(string)
		return value, ok
	case schema.FieldTypeInt:
		return value, isInt(value)
	case schema.FieldTypeFloat:
		return value, isInt(value) || isFloat(value)
	case schema.FieldTypeBool:
		_, ok := value.(bool)
		return value, ok
	case schema.FieldTypeDateTime:
		switch value.(type) {
		case time.Time, string:
			return value, true
		}
		return value, false
	case schema.FieldTypeArray:
		switch value.(type) {
		case []any, []string, []int, []int64, []float64, []bool, []map[string]any:
			return value, true
		}
		return value, false
	case schema.FieldTypeMap:
		switch value.(type) {
		case map[string]any, map[string]string:
			return value, true
		}
		return value, false
	case schema.FieldTypeAny:
		return value, true
	case schema.FieldTypeEntity:
		m, ok := value.(Model)
		if !ok {
			return value, false
		}
		obj := m.Object()
		return obj, sameEntity(obj.entity, f.Ref(), f.To)
	case schema.FieldTypeCollection:
		c, ok := value.(*Collection)
		if !ok {
			return value, false
		}
		return c, sameEntity(c.elem, f.Ref(), f.To)
	case schema.FieldTypeLocalized:
		switch v := value.(type) {
		case LocalizedString:
			return v, true
		case map[string]string:
			return LocalizedString(v), true
		}
		return value, false
	}
	return value, false
}

func sameEntity(got, want *schema.Entity, wantName string) bool {
	if got == nil {
		return false
	}
	if want != nil {
		return got == want || got.Name == want.Name
	}
	return got.Name == wantName
}

func isInt(v any) bool {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := x.Int64()
		return err == nil
	}
	return false
}

func isFloat(v any) bool {
	switch x := v.(type) {
	case float32, float64:
		return true
	case json.Number:
		_, err := x.Float64()
		return err == nil
	}
	return false
}
