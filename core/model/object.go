package model

import (
	"github.com/artpar/commercekit/core/schema"
)

// Model is implemented by *Object and by typed wrappers around an Object.
type Model interface {
	Object() *Object
}

// Object is a dynamic entity instance backed by raw JSON data.
//
// Raw data is never modified. Typed values are materialized once per field
// and cached; Set replaces the cached value.
type Object struct {
	entity      *schema.Entity
	raw         map[string]any
	typed       map[string]any
	initialized map[string]bool
	dirty       map[string]bool
	ref         *contextRef
	err         error
}

// New creates an empty object of the given entity.
func New(entity *schema.Entity, ctx *Context) *Object {
	return newObject(entity, nil, newRef(ctx))
}

// FromMap creates an object backed by raw, typically decoded JSON.
func FromMap(entity *schema.Entity, raw map[string]any, ctx *Context) *Object {
	return newObject(entity, raw, newRef(ctx))
}

// FromJSON decodes data and creates an object backed by the result.
func FromJSON(entity *schema.Entity, data []byte, ctx *Context) (*Object, error) {
	raw, err := decodeMap(data)
	if err != nil {
		return nil, err
	}
	return FromMap(entity, raw, ctx), nil
}

func newObject(entity *schema.Entity, raw map[string]any, ref *contextRef) *Object {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Object{
		entity:      entity,
		raw:         raw,
		typed:       make(map[string]any),
		initialized: make(map[string]bool),
		dirty:       make(map[string]bool),
		ref:         ref,
	}
}

// Object returns o, so *Object satisfies Model.
func (o *Object) Object() *Object {
	return o
}

// Entity returns the schema of the object.
func (o *Object) Entity() *schema.Entity {
	return o.entity
}

// Context returns the context currently visible to the object's graph.
func (o *Object) Context() *Context {
	return o.ref.ctx
}

// SetContext replaces the context for every object sharing o's graph.
func (o *Object) SetContext(ctx *Context) {
	if ctx == nil {
		ctx = NewContext()
	}
	o.ref.ctx = ctx
}

// Raw returns the raw backing value of a field.
func (o *Object) Raw(field string) (any, bool) {
	v, ok := o.raw[field]
	return v, ok
}

// IsInitialized reports whether a field has been materialized or set.
func (o *Object) IsInitialized(field string) bool {
	return o.initialized[field]
}

// Get returns the typed value of a field, materializing it on first access.
func (o *Object) Get(field string) (any, error) {
	f, ok := o.entity.Field(field)
	if !ok {
		return nil, o.fieldError(field, "", ErrUnknownField)
	}
	if o.initialized[field] {
		return o.typed[field], nil
	}

	v, err := o.materialize(f)
	if err != nil {
		return nil, err
	}
	v = f.Decorate(v)

	o.typed[field] = v
	o.initialized[field] = true
	return v, nil
}

// Set validates value against the field's declared type and stores it.
// A Model value joins o's context graph.
func (o *Object) Set(field string, value any) (*Object, error) {
	f, ok := o.entity.Field(field)
	if !ok {
		return o, o.fieldError(field, "", ErrUnknownField)
	}

	if isNil(value) {
		if !f.Optional {
			return o, o.fieldError(field, f.String(), ErrExpectsParameter)
		}
		value = nil
	} else {
		v, ok := coerce(f, value)
		if !ok {
			return o, o.fieldError(field, f.String(), ErrWrongType)
		}
		value = v
	}

	switch v := value.(type) {
	case *Object:
		v.adopt(o.ref)
	case *Collection:
		v.adopt(o.ref)
	}
	value = f.Decorate(value)

	o.typed[field] = value
	o.initialized[field] = true
	o.dirty[field] = true
	return o, nil
}

// With is the chaining form of Set. The first failure is kept in Err and
// reported to the context error handler; later calls are skipped.
func (o *Object) With(field string, value any) *Object {
	if o.err != nil {
		return o
	}
	if _, err := o.Set(field, value); err != nil {
		o.err = err
		o.ref.ctx.Report(err)
	}
	return o
}

// Fail records err as if a With call had failed. It is used by builders
// that assemble values before setting them.
func (o *Object) Fail(err error) *Object {
	if o.err == nil && err != nil {
		o.err = err
		o.ref.ctx.Report(err)
	}
	return o
}

// Err returns the first error recorded by With.
func (o *Object) Err() error {
	return o.err
}

// Rebind returns a deep copy of o bound to a new context. o is unchanged.
func (o *Object) Rebind(ctx *Context) *Object {
	return o.cloneInto(newRef(ctx))
}

// adopt moves o and its materialized descendants onto ref.
func (o *Object) adopt(ref *contextRef) {
	if o.ref == ref {
		return
	}
	o.ref = ref
	for _, v := range o.typed {
		adoptValue(v, ref)
	}
}

func adoptValue(v any, ref *contextRef) {
	switch x := v.(type) {
	case *Object:
		x.adopt(ref)
	case *Collection:
		x.adopt(ref)
	case Model:
		if inner := x.Object(); inner != nil {
			inner.adopt(ref)
		}
	}
}

func (o *Object) cloneInto(ref *contextRef) *Object {
	c := newObject(o.entity, o.raw, ref)
	for name, v := range o.typed {
		f, _ := o.entity.Field(name)
		c.typed[name] = cloneValue(f, v, ref)
		c.initialized[name] = o.initialized[name]
		c.dirty[name] = o.dirty[name]
	}
	return c
}

func cloneValue(f schema.Field, v any, ref *contextRef) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *Object:
		return f.Decorate(x.cloneInto(ref))
	case *Collection:
		return x.cloneInto(ref)
	case LocalizedString:
		return x.clone()
	case Model:
		if inner := x.Object(); inner != nil {
			return f.Decorate(inner.cloneInto(ref))
		}
		return x
	default:
		return v
	}
}

func (o *Object) fieldError(field, typ string, err error) error {
	name := ""
	if o.entity != nil {
		name = o.entity.Name
	}
	return &FieldError{Entity: name, Field: field, Type: typ, Err: err}
}

// isNil reports nil interfaces and nil model pointers.
func isNil(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *Object:
		return x == nil
	case *Collection:
		return x == nil
	case LocalizedString:
		return x == nil
	case Model:
		return x.Object() == nil
	}
	return false
}
