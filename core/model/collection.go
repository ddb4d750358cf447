package model

import (
	"github.com/goccy/go-json"

	"github.com/artpar/commercekit/core/schema"
)

// Collection is an ordered list of objects of one entity type.
// The backing array is eager; elements decoded from raw JSON are
// materialized on first access.
type Collection struct {
	elem  *schema.Entity
	raw   []any
	items []*Object
	pos   int
	ref   *contextRef
}

// NewCollection creates an empty collection of elem objects.
func NewCollection(elem *schema.Entity, ctx *Context) *Collection {
	return newCollection(elem, nil, newRef(ctx))
}

// CollectionFromSlice creates a collection backed by raw JSON array items.
func CollectionFromSlice(elem *schema.Entity, raw []any, ctx *Context) *Collection {
	return newCollection(elem, raw, newRef(ctx))
}

func newCollection(elem *schema.Entity, raw []any, ref *contextRef) *Collection {
	return &Collection{
		elem:  elem,
		raw:   raw,
		items: make([]*Object, len(raw)),
		ref:   ref,
	}
}

// Elem returns the declared element entity.
func (c *Collection) Elem() *schema.Entity {
	return c.elem
}

// Context returns the context currently visible to the collection.
func (c *Collection) Context() *Context {
	return c.ref.ctx
}

// Len returns the number of elements.
func (c *Collection) Len() int {
	return len(c.items)
}

// Add appends an element after checking it is an object of the element
// entity. The element joins the collection's context graph.
func (c *Collection) Add(element Model) (*Collection, error) {
	if isNil(element) {
		return c, c.elemError(ErrExpectsParameter)
	}
	obj := element.Object()
	if !sameEntity(obj.entity, c.elem, c.elem.Name) {
		return c, c.elemError(ErrWrongType)
	}
	obj.adopt(c.ref)
	c.raw = append(c.raw, obj.raw)
	c.items = append(c.items, obj)
	return c, nil
}

// At returns the element at offset.
func (c *Collection) At(offset int) (*Object, error) {
	if offset < 0 || offset >= len(c.items) {
		return nil, outOfRange(offset, len(c.items))
	}
	if obj := c.items[offset]; obj != nil {
		return obj, nil
	}

	m, ok := asMap(c.raw[offset])
	if !ok {
		err := c.elemError(ErrWrongType)
		if !c.ref.ctx.Graceful() {
			return nil, err
		}
		c.ref.ctx.Report(err)
	}
	obj := newObject(c.elem, m, c.ref)
	c.items[offset] = obj
	return obj, nil
}

// Current returns the element under the cursor, or nil past the end.
func (c *Collection) Current() *Object {
	if !c.Valid() {
		return nil
	}
	obj, err := c.At(c.pos)
	if err != nil {
		return nil
	}
	return obj
}

// Key returns the cursor position.
func (c *Collection) Key() int {
	return c.pos
}

// Next advances the cursor.
func (c *Collection) Next() {
	c.pos++
}

// Rewind resets the cursor to the first element.
func (c *Collection) Rewind() {
	c.pos = 0
}

// Valid reports whether the cursor points at an element.
func (c *Collection) Valid() bool {
	return c.pos >= 0 && c.pos < len(c.items)
}

// Items materializes and returns all elements.
func (c *Collection) Items() ([]*Object, error) {
	out := make([]*Object, 0, len(c.items))
	for i := range c.items {
		obj, err := c.At(i)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// Filter returns the elements for which keep returns true. Elements that
// cannot be materialized are skipped.
func (c *Collection) Filter(keep func(*Object) bool) []*Object {
	var out []*Object
	for i := range c.items {
		obj, err := c.At(i)
		if err != nil {
			continue
		}
		if keep(obj) {
			out = append(out, obj)
		}
	}
	return out
}

// ByID returns the first element whose "id" field equals id.
func (c *Collection) ByID(id string) (*Object, bool) {
	return c.findBy("id", id)
}

// ByKey returns the first element whose "key" field equals key.
func (c *Collection) ByKey(key string) (*Object, bool) {
	return c.findBy("key", key)
}

func (c *Collection) findBy(field, want string) (*Object, bool) {
	if !c.elem.Has(field) {
		return nil, false
	}
	found := c.Filter(func(o *Object) bool {
		s, err := o.GetString(field)
		return err == nil && s == want
	})
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// ToSlice returns the plain representation of all elements.
func (c *Collection) ToSlice() []any {
	out := make([]any, len(c.items))
	for i, obj := range c.items {
		if obj != nil && !c.isNull(i) {
			out[i] = obj.ToMap()
		} else {
			out[i] = c.raw[i]
		}
	}
	return out
}

// MarshalJSON encodes the elements as a JSON array.
func (c *Collection) MarshalJSON() ([]byte, error) {
	out := make([]any, len(c.items))
	for i, obj := range c.items {
		if obj != nil && !c.isNull(i) {
			out[i] = obj
		} else {
			out[i] = c.raw[i]
		}
	}
	return json.Marshal(out)
}

// isNull reports whether element i was a JSON null that has not been
// given content since.
func (c *Collection) isNull(i int) bool {
	obj := c.items[i]
	return c.raw[i] == nil && (obj == nil || obj.empty())
}

func (c *Collection) adopt(ref *contextRef) {
	if c.ref == ref {
		return
	}
	c.ref = ref
	for _, obj := range c.items {
		if obj != nil {
			obj.adopt(ref)
		}
	}
}

func (c *Collection) cloneInto(ref *contextRef) *Collection {
	cp := newCollection(c.elem, append([]any(nil), c.raw...), ref)
	for i, obj := range c.items {
		if obj != nil {
			cp.items[i] = obj.cloneInto(ref)
		}
	}
	return cp
}

func (c *Collection) elemError(err error) error {
	return &FieldError{Entity: "Collection", Field: c.elem.Name, Type: "entity<" + c.elem.Name + ">", Err: err}
}
