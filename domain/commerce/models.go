package commerce

import (
	"time"

	"github.com/artpar/commercekit/core/model"
	"github.com/artpar/commercekit/domain/request"
)

// Resource wraps a fetched resource. All API resources carry id and version.
type Resource struct {
	*model.Object
}

// ID returns the resource id.
func (r Resource) ID() string {
	s, _ := r.GetString("id")
	return s
}

// Version returns the resource version.
func (r Resource) Version() int64 {
	n, _ := r.GetInt("version")
	return n
}

// Key returns the resource key, if the entity has one.
func (r Resource) Key() string {
	if !r.Entity().Has("key") {
		return ""
	}
	s, _ := r.GetString("key")
	return s
}

// CreatedAt returns the creation time.
func (r Resource) CreatedAt() time.Time {
	t, _ := r.GetTime("createdAt")
	return t
}

// Store is a fetched store.
type Store struct{ Resource }

// AsStore wraps obj.
func AsStore(obj *model.Object) Store { return Store{Resource{obj}} }

// Name returns the localized name.
func (s Store) Name() model.LocalizedString {
	ls, _ := s.GetLocalized("name")
	return ls
}

// Languages returns the store languages.
func (s Store) Languages() []string {
	langs, _ := s.GetStrings("languages")
	return langs
}

// Category is a fetched category.
type Category struct{ Resource }

// AsCategory wraps obj.
func AsCategory(obj *model.Object) Category { return Category{Resource{obj}} }

// Name returns the localized name.
func (c Category) Name() model.LocalizedString {
	ls, _ := c.GetLocalized("name")
	return ls
}

// Slug returns the localized slug.
func (c Category) Slug() model.LocalizedString {
	ls, _ := c.GetLocalized("slug")
	return ls
}

// OrderHint returns the sort hint.
func (c Category) OrderHint() string {
	s, _ := c.GetString("orderHint")
	return s
}

// Parent returns the parent reference, or nil.
func (c Category) Parent() *model.Object {
	raw, ok := c.Raw("parent")
	if (!ok || raw == nil) && !c.IsInitialized("parent") {
		return nil
	}
	obj, _ := c.GetObject("parent")
	return obj
}

// Assets returns the asset collection.
func (c Category) Assets() *model.Collection {
	col, _ := c.GetCollection("assets")
	return col
}

// Cart is a fetched cart.
type Cart struct{ Resource }

// AsCart wraps obj.
func AsCart(obj *model.Object) Cart { return Cart{Resource{obj}} }

// Country returns the cart country.
func (c Cart) Country() string {
	s, _ := c.GetString("country")
	return s
}

// TotalPrice returns the decorated total price.
func (c Cart) TotalPrice() *model.Money {
	v, err := c.Get("totalPrice")
	if err != nil {
		return nil
	}
	m, _ := v.(*model.Money)
	return m
}

// CustomLineItems returns the custom line item collection.
func (c Cart) CustomLineItems() *model.Collection {
	col, _ := c.GetCollection("customLineItems")
	return col
}

// Zone is a fetched zone.
type Zone struct{ Resource }

// AsZone wraps obj.
func AsZone(obj *model.Object) Zone { return Zone{Resource{obj}} }

// Name returns the zone name.
func (z Zone) Name() string {
	s, _ := z.GetString("name")
	return s
}

// Locations returns the location collection.
func (z Zone) Locations() *model.Collection {
	col, _ := z.GetCollection("locations")
	return col
}

// CustomObject is a stored JSON value.
type CustomObject struct{ Resource }

// AsCustomObject wraps obj.
func AsCustomObject(obj *model.Object) CustomObject { return CustomObject{Resource{obj}} }

// Container returns the container name.
func (c CustomObject) Container() string {
	s, _ := c.GetString("container")
	return s
}

// Value returns the stored value.
func (c CustomObject) Value() any {
	v, _ := c.Get("value")
	return v
}

// ResultsOf wraps the results of a paged query object.
func ResultsOf[T any](paged *model.Object, wrap func(*model.Object) T) ([]T, error) {
	col, err := request.Results(paged)
	if err != nil {
		return nil, err
	}
	items, err := col.Items()
	if err != nil {
		return nil, err
	}
	out := make([]T, len(items))
	for i, obj := range items {
		out[i] = wrap(obj)
	}
	return out, nil
}
