package model

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/message"
)

// MoneyDecorator is the decorator name used by schemas for monetary fields.
const MoneyDecorator = "money"

// Money decorates a Money or TypedMoney object with currency-aware helpers.
type Money struct {
	obj *Object
}

// DecorateMoney wraps an *Object in a Money. Values that are already Money
// are returned unchanged.
func DecorateMoney(v any) any {
	switch x := v.(type) {
	case *Money:
		return x
	case *Object:
		return &Money{obj: x}
	}
	return v
}

// Object returns the underlying object.
func (m *Money) Object() *Object {
	if m == nil {
		return nil
	}
	return m.obj
}

// CurrencyCode returns the ISO 4217 currency code.
func (m *Money) CurrencyCode() string {
	s, _ := m.obj.GetString("currencyCode")
	return s
}

// CentAmount returns the amount in the smallest currency unit.
func (m *Money) CentAmount() int64 {
	n, _ := m.obj.GetInt("centAmount")
	return n
}

// FractionDigits returns the declared fraction digits, falling back to the
// currency's standard scale.
func (m *Money) FractionDigits() int {
	if m.obj.entity.Has("fractionDigits") {
		v, err := m.obj.Get("fractionDigits")
		if err == nil && v != nil {
			if n, ok := toInt64(v); ok {
				return int(n)
			}
		}
	}
	unit, err := currency.ParseISO(m.CurrencyCode())
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// Amount returns the amount in major units.
func (m *Money) Amount() float64 {
	return float64(m.CentAmount()) / math.Pow10(m.FractionDigits())
}

// Format renders the amount with the currency symbol in the context locale.
// Unknown currency codes are rendered as "<amount> <code>".
func (m *Money) Format(ctx *Context) string {
	if ctx == nil {
		ctx = m.obj.Context()
	}
	p := message.NewPrinter(ctx.Locale())
	unit, err := currency.ParseISO(m.CurrencyCode())
	if err != nil {
		return fmt.Sprintf("%.*f %s", m.FractionDigits(), m.Amount(), m.CurrencyCode())
	}
	return p.Sprint(currency.Symbol(unit.Amount(m.Amount())))
}

// MarshalJSON encodes the underlying object.
func (m *Money) MarshalJSON() ([]byte, error) {
	return m.obj.MarshalJSON()
}

func (m *Money) String() string {
	return m.Format(nil)
}
