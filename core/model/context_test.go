package model

import (
	"testing"

	"golang.org/x/text/language"
)

func TestContextPropagation(t *testing.T) {
	reg := testRegistry(t)
	ctx := NewContext(WithLocale(language.German))
	cart := mustCart(t, reg, ctx)

	addr, _ := cart.GetObject("shippingAddress")
	items, _ := cart.GetCollection("lineItems")
	item, _ := items.At(0)
	price, _ := item.GetObject("price")

	for name, got := range map[string]*Context{
		"address":    addr.Context(),
		"collection": items.Context(),
		"item":       item.Context(),
		"price":      price.Context(),
	} {
		if got != ctx {
			t.Errorf("%s context = %p, want %p", name, got, ctx)
		}
	}
}

func TestContextSetContextReachesGraph(t *testing.T) {
	reg := testRegistry(t)
	cart := mustCart(t, reg, NewContext())
	items, _ := cart.GetCollection("lineItems")
	item, _ := items.At(1)

	next := NewContext(WithLocale(language.French))
	cart.SetContext(next)

	if item.Context() != next {
		t.Error("materialized descendant should see the new context")
	}
	later, _ := items.At(0)
	if later.Context() != next {
		t.Error("descendant materialized later should see the new context")
	}
}

func TestContextSetJoinsGraph(t *testing.T) {
	reg := testRegistry(t)
	ctx := NewContext(WithLocale(language.English))
	cart := New(reg.MustEntity("Cart"), ctx)

	addr := New(reg.MustEntity("Address"), NewContext())
	if _, err := cart.Set("shippingAddress", addr); err != nil {
		t.Fatal(err)
	}
	if addr.Context() != ctx {
		t.Error("set value should adopt the parent's context")
	}

	items := NewCollection(reg.MustEntity("LineItem"), nil)
	item := New(reg.MustEntity("LineItem"), nil)
	if _, err := items.Add(item); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.Set("lineItems", items); err != nil {
		t.Fatal(err)
	}
	if item.Context() != ctx {
		t.Error("collection elements should adopt the parent's context")
	}
}

func TestContextRebind(t *testing.T) {
	reg := testRegistry(t)
	orig := NewContext()
	cart := mustCart(t, reg, orig)
	addr, _ := cart.GetObject("shippingAddress")

	next := NewContext(WithLocale(language.Italian))
	copied := cart.Rebind(next)

	if cart.Context() != orig || addr.Context() != orig {
		t.Error("Rebind must not change the original graph")
	}
	copiedAddr, _ := copied.GetObject("shippingAddress")
	if copiedAddr == addr {
		t.Error("Rebind should deep copy materialized children")
	}
	if copiedAddr.Context() != next {
		t.Error("copied children should see the new context")
	}

	if _, err := copiedAddr.Set("city", "Roma"); err != nil {
		t.Fatal(err)
	}
	if city, _ := addr.GetString("city"); city != "Berlin" {
		t.Errorf("original city = %q, want Berlin", city)
	}
}

func TestContextWithCopies(t *testing.T) {
	base := NewContext(WithLanguages(language.English))
	derived := base.With(WithGraceful(true))

	if base.Graceful() {
		t.Error("With must not modify the receiver")
	}
	if !derived.Graceful() || len(derived.Languages()) != 1 {
		t.Errorf("derived = %+v", derived)
	}

	var nilCtx *Context
	if nilCtx.Graceful() || nilCtx.Locale() != language.Und || nilCtx.BaseURI() != "" {
		t.Error("nil context getters should return zero values")
	}
	nilCtx.Report(nil)
}
