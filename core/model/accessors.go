package model

import (
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Typed accessors. Absent or nil values yield the zero value; values of
// another kind fail with ErrWrongType.

// GetString returns a string field.
func (o *Object) GetString(field string) (string, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", o.typeError(field)
	}
	return s, nil
}

// GetInt returns an integer field.
func (o *Object) GetInt(field string) (int64, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return 0, err
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, o.typeError(field)
	}
	return n, nil
}

// GetFloat returns a numeric field as float64.
func (o *Object) GetFloat(field string) (float64, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, o.typeError(field)
		}
		return f, nil
	}
	if n, ok := toInt64(v); ok {
		return float64(n), nil
	}
	return 0, o.typeError(field)
}

// GetBool returns a boolean field.
func (o *Object) GetBool(field string) (bool, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, o.typeError(field)
	}
	return b, nil
}

// GetTime returns a datetime field parsed as RFC 3339.
func (o *Object) GetTime(field string) (time.Time, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, o.typeError(field)
		}
		return t, nil
	}
	return time.Time{}, o.typeError(field)
}

// GetStrings returns an array field of strings.
func (o *Object) GetStrings(field string) ([]string, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return nil, err
	}
	switch x := v.(type) {
	case []string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, o.typeError(field)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, o.typeError(field)
}

// GetObject returns a nested entity field. Decorated values are unwrapped.
func (o *Object) GetObject(field string) (*Object, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return nil, err
	}
	m, ok := v.(Model)
	if !ok {
		return nil, o.typeError(field)
	}
	return m.Object(), nil
}

// GetCollection returns a collection field.
func (o *Object) GetCollection(field string) (*Collection, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return nil, err
	}
	c, ok := v.(*Collection)
	if !ok {
		return nil, o.typeError(field)
	}
	return c, nil
}

// GetLocalized returns a localized string field.
func (o *Object) GetLocalized(field string) (LocalizedString, error) {
	v, err := o.Get(field)
	if err != nil || v == nil {
		return nil, err
	}
	ls, ok := v.(LocalizedString)
	if !ok {
		return nil, o.typeError(field)
	}
	return ls, nil
}

func (o *Object) typeError(field string) error {
	f, _ := o.entity.Field(field)
	return o.fieldError(field, f.String(), ErrWrongType)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	case float64:
		// 2^63 itself is out of range; -2^63 is not.
		if x >= math.MinInt64 && x < math.MaxInt64 && x == math.Trunc(x) {
			return int64(x), true
		}
	case json.Number:
		n, err := strconv.ParseInt(string(x), 10, 64)
		return n, err == nil
	}
	return 0, false
}
