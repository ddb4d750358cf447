package model

import (
	"testing"

	"github.com/artpar/commercekit/core/schema"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	err := reg.Add(
		schema.NewEntity("Money",
			schema.Prop("type", schema.FieldTypeString).Opt(),
			schema.Prop("currencyCode", schema.FieldTypeString),
			schema.Prop("centAmount", schema.FieldTypeInt),
			schema.Prop("fractionDigits", schema.FieldTypeInt).Opt(),
		),
		schema.NewEntity("Address",
			schema.Prop("key", schema.FieldTypeString).Opt(),
			schema.Prop("country", schema.FieldTypeString),
			schema.Prop("city", schema.FieldTypeString).Opt(),
		),
		schema.NewEntity("LineItem",
			schema.Prop("id", schema.FieldTypeString),
			schema.Prop("key", schema.FieldTypeString).Opt(),
			schema.Prop("name", schema.FieldTypeLocalized).Opt(),
			schema.Prop("quantity", schema.FieldTypeInt),
			schema.Prop("price", schema.FieldTypeEntity).Of("Money").Decorated(MoneyDecorator),
		),
		schema.NewEntity("Cart",
			schema.Prop("id", schema.FieldTypeString),
			schema.Prop("version", schema.FieldTypeInt),
			schema.Prop("active", schema.FieldTypeBool).Opt(),
			schema.Prop("createdAt", schema.FieldTypeDateTime).Opt(),
			schema.Prop("customerEmail", schema.FieldTypeString).Opt(),
			schema.Prop("name", schema.FieldTypeLocalized).Opt(),
			schema.Prop("shippingAddress", schema.FieldTypeEntity).Of("Address").Opt(),
			schema.Prop("lineItems", schema.FieldTypeCollection).Of("LineItem").Opt(),
			schema.Prop("totalPrice", schema.FieldTypeEntity).Of("Money").Decorated(MoneyDecorator).Opt(),
			schema.Prop("tags", schema.FieldTypeArray).Opt(),
			schema.Prop("custom", schema.FieldTypeMap).Opt(),
		),
	)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	reg.RegisterDecorator(MoneyDecorator, DecorateMoney)
	if err := reg.Resolve(); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return reg
}

const cartJSON = `{
	"id": "cart-1",
	"version": 3,
	"customerEmail": "jane@example.com",
	"shippingAddress": {"country": "DE", "city": "Berlin"},
	"lineItems": [
		{"id": "li-1", "key": "socks", "quantity": 2, "price": {"currencyCode": "EUR", "centAmount": 1299}},
		{"id": "li-2", "quantity": 1, "price": {"currencyCode": "EUR", "centAmount": 500}}
	],
	"totalPrice": {"currencyCode": "EUR", "centAmount": 3098, "fractionDigits": 2},
	"origin": "Customer"
}`

func mustCart(t *testing.T, reg *schema.Registry, ctx *Context) *Object {
	t.Helper()
	cart, err := FromJSON(reg.MustEntity("Cart"), []byte(cartJSON), ctx)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	return cart
}
