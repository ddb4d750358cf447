package model

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// decodeMap decodes a JSON object, keeping numbers as json.Number.
// Empty input and JSON null decode to an empty map.
func decodeMap(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := decodeJSON(data, &m); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// DecodeJSON decodes data with the model's number handling: numbers stay
// json.Number so integer fields survive a round trip unchanged.
func DecodeJSON(data []byte, v any) error {
	return decodeJSON(data, v)
}

// ToMap returns the plain representation of o: raw data overlaid with typed
// values, nested models converted recursively.
func (o *Object) ToMap() map[string]any {
	out := make(map[string]any, len(o.raw)+len(o.typed))
	for k, v := range o.raw {
		if !o.entity.Has(k) {
			out[k] = v
		}
	}
	for _, name := range o.entity.FieldNames() {
		if v, ok := o.fieldValue(name); ok {
			out[name] = plain(v)
		}
	}
	return out
}

// MarshalJSON emits declared fields in schema order, followed by undeclared
// raw keys in sorted order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	write := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", o.entity.Name, key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(data)
		return nil
	}

	for _, name := range o.entity.FieldNames() {
		v, ok := o.fieldValue(name)
		if !ok {
			continue
		}
		if err := write(name, v); err != nil {
			return nil, err
		}
	}

	extra := make([]string, 0)
	for k := range o.raw {
		if !o.entity.Has(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		if err := write(k, o.raw[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the raw data of o and drops all typed values.
// The entity must already be set, e.g. by New.
func (o *Object) UnmarshalJSON(data []byte) error {
	if o.entity == nil {
		return fmt.Errorf("unmarshal into object without entity: %w", ErrUnresolved)
	}
	raw, err := decodeMap(data)
	if err != nil {
		return err
	}
	o.raw = raw
	o.typed = make(map[string]any)
	o.initialized = make(map[string]bool)
	o.dirty = make(map[string]bool)
	if o.ref == nil {
		o.ref = newRef(nil)
	}
	return nil
}

// fieldValue returns the value to serialize for a declared field.
// A value materialized from an absent raw field is only emitted once it
// holds data.
func (o *Object) fieldValue(name string) (any, bool) {
	rawValue, inRaw := o.raw[name]
	if !o.initialized[name] {
		return rawValue, inRaw
	}
	v := o.typed[name]
	if !o.dirty[name] && isEmpty(v) {
		if inRaw && rawValue == nil {
			return nil, true
		}
		if !inRaw {
			return nil, false
		}
	}
	return v, true
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *Object:
		return x.empty()
	case *Collection:
		return x.Len() == 0
	case LocalizedString:
		return len(x) == 0
	case Model:
		inner := x.Object()
		return inner == nil || inner.empty()
	}
	return false
}

func (o *Object) empty() bool {
	for _, name := range o.entity.FieldNames() {
		if _, ok := o.fieldValue(name); ok {
			return false
		}
	}
	for k := range o.raw {
		if !o.entity.Has(k) {
			return false
		}
	}
	return true
}

// plain converts typed values into maps, slices and scalars.
func plain(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.ToMap()
	case *Collection:
		return x.ToSlice()
	case LocalizedString:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return m
	case Model:
		if inner := x.Object(); inner != nil {
			return inner.ToMap()
		}
		return nil
	}
	return v
}
