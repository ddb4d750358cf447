package commerce

import (
	"github.com/artpar/commercekit/core/model"
)

// StoreDraft is the body of a store creation.
type StoreDraft struct{ *model.Object }

// NewStoreDraft creates an empty store draft.
func NewStoreDraft(ctx *model.Context) StoreDraft {
	return StoreDraft{model.New(entity("StoreDraft"), ctx)}
}

// StoreDraftOfKey creates a store draft with a key.
func StoreDraftOfKey(key string, ctx *model.Context) StoreDraft {
	return NewStoreDraft(ctx).SetKey(key)
}

// StoreDraftOfKeyAndName creates a store draft with key and name.
func StoreDraftOfKeyAndName(key string, name model.LocalizedString, ctx *model.Context) StoreDraft {
	return NewStoreDraft(ctx).SetKey(key).SetName(name)
}

func (d StoreDraft) SetKey(key string) StoreDraft {
	d.With("key", key)
	return d
}

func (d StoreDraft) SetName(name model.LocalizedString) StoreDraft {
	d.With("name", name)
	return d
}

func (d StoreDraft) SetLanguages(langs ...string) StoreDraft {
	d.With("languages", langs)
	return d
}

// CategoryDraft is the body of a category creation.
type CategoryDraft struct{ *model.Object }

// CategoryDraftOfNameAndSlug creates a category draft.
func CategoryDraftOfNameAndSlug(name, slug model.LocalizedString, ctx *model.Context) CategoryDraft {
	d := CategoryDraft{model.New(entity("CategoryDraft"), ctx)}
	d.With("name", name).With("slug", slug)
	return d
}

func (d CategoryDraft) SetKey(key string) CategoryDraft {
	d.With("key", key)
	return d
}

func (d CategoryDraft) SetOrderHint(hint string) CategoryDraft {
	d.With("orderHint", hint)
	return d
}

func (d CategoryDraft) SetDescription(desc model.LocalizedString) CategoryDraft {
	d.With("description", desc)
	return d
}

// AddAsset appends an asset draft, creating the collection on first use.
func (d CategoryDraft) AddAsset(asset AssetDraft) CategoryDraft {
	if d.Err() != nil {
		return d
	}
	col, err := d.GetCollection("assets")
	if err == nil {
		if _, err = col.Add(asset); err == nil {
			_, err = d.Set("assets", col)
		}
	}
	d.Fail(err)
	return d
}

// AssetDraft is an asset to add to a category.
type AssetDraft struct{ *model.Object }

// AssetDraftOfNameAndSources creates an asset draft.
func AssetDraftOfNameAndSources(name model.LocalizedString, ctx *model.Context, sources ...AssetSource) AssetDraft {
	d := AssetDraft{model.New(entity("AssetDraft"), ctx)}
	col := model.NewCollection(entity("AssetSource"), ctx)
	for _, s := range sources {
		if _, err := col.Add(s); err != nil {
			d.Fail(err)
			return d
		}
	}
	d.With("name", name).With("sources", col)
	return d
}

func (d AssetDraft) SetKey(key string) AssetDraft {
	d.With("key", key)
	return d
}

// AssetSource is one URI of an asset.
type AssetSource struct{ *model.Object }

// AssetSourceOfURI creates an asset source.
func AssetSourceOfURI(uri string, ctx *model.Context) AssetSource {
	s := AssetSource{model.New(entity("AssetSource"), ctx)}
	s.With("uri", uri)
	return s
}

func (s AssetSource) SetKey(key string) AssetSource {
	s.With("key", key)
	return s
}

// CartDraft is the body of a cart creation.
type CartDraft struct{ *model.Object }

// CartDraftOfCurrency creates a cart draft in a currency.
func CartDraftOfCurrency(currency string, ctx *model.Context) CartDraft {
	d := CartDraft{model.New(entity("CartDraft"), ctx)}
	d.With("currency", currency)
	return d
}

func (d CartDraft) SetCountry(country string) CartDraft {
	d.With("country", country)
	return d
}

func (d CartDraft) SetCustomerEmail(email string) CartDraft {
	d.With("customerEmail", email)
	return d
}

func (d CartDraft) SetKey(key string) CartDraft {
	d.With("key", key)
	return d
}

// ZoneDraft is the body of a zone creation.
type ZoneDraft struct{ *model.Object }

// ZoneDraftOfNameAndLocations creates a zone draft.
func ZoneDraftOfNameAndLocations(name string, ctx *model.Context, locations ...Location) ZoneDraft {
	d := ZoneDraft{model.New(entity("ZoneDraft"), ctx)}
	col := model.NewCollection(entity("Location"), ctx)
	for _, l := range locations {
		if _, err := col.Add(l); err != nil {
			d.Fail(err)
			return d
		}
	}
	d.With("name", name).With("locations", col)
	return d
}

// Location is a country with an optional state.
type Location struct{ *model.Object }

// LocationOf creates a location.
func LocationOf(country, state string, ctx *model.Context) Location {
	l := Location{model.New(entity("Location"), ctx)}
	l.With("country", country)
	if state != "" {
		l.With("state", state)
	}
	return l
}

// CustomObjectDraft is the body of a custom object create-or-update.
type CustomObjectDraft struct{ *model.Object }

// CustomObjectDraftOf creates a custom object draft.
func CustomObjectDraftOf(container, key string, value any, ctx *model.Context) CustomObjectDraft {
	d := CustomObjectDraft{model.New(entity("CustomObjectDraft"), ctx)}
	d.With("container", container).With("key", key).With("value", value)
	return d
}

// SetVersion makes the write conditional on the current version.
func (d CustomObjectDraft) SetVersion(version int64) CustomObjectDraft {
	d.With("version", version)
	return d
}

// OrderEditDraftOf creates an order edit of the order with orderID.
func OrderEditDraftOf(orderID string, ctx *model.Context) *model.Object {
	ref := model.New(entity("Reference"), ctx).With("typeId", "order").With("id", orderID)
	return model.New(entity("OrderEditDraft"), ctx).With("resource", ref)
}
