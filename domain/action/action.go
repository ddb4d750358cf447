// Package action defines the closed set of update actions sent in update
// request bodies as {"action": "<name>", ...fields}.
package action

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Resource names a resource family that accepts update actions.
type Resource string

// Resource families.
const (
	Store       Resource = "store"
	Category    Resource = "category"
	Cart        Resource = "cart"
	Zone        Resource = "zone"
	StagedOrder Resource = "staged-order"
	OrderEdit   Resource = "order-edit"
)

// ErrInvalid is returned when an action lacks a required value.
var ErrInvalid = errors.New("invalid update action")

// Action is an update action. The set of implementations is closed.
type Action interface {
	// ActionName returns the wire name, e.g. "setName".
	ActionName() string
	// Supports reports whether the resource family accepts the action.
	Supports(r Resource) bool

	sealed()
}

// variant is embedded by every action to close the set.
type variant struct{}

func (variant) sealed() {}

// supported maps action names to the resource families accepting them.
var supported = map[string][]Resource{
	"setKey":              {Store, Category, Cart, Zone},
	"setName":             {Store},
	"setLanguages":        {Store},
	"changeName":          {Category},
	"changeSlug":          {Category},
	"changeOrderHint":     {Category},
	"changeParent":        {Category},
	"setDescription":      {Category},
	"setExternalId":       {Category},
	"setMetaTitle":        {Category},
	"setMetaDescription":  {Category},
	"setMetaKeywords":     {Category},
	"addAsset":            {Category},
	"removeAsset":         {Category},
	"changeAssetName":     {Category},
	"setAssetDescription": {Category},
	"setAssetKey":         {Category},
	"setAssetTags":        {Category},
	"setAssetSources":     {Category},
	"setCountry":          {Cart, StagedOrder},
	"setCustomerEmail":    {Cart, StagedOrder},
	"removeDelivery":      {StagedOrder},
	"setCustomField":      {Store, Category, Cart, StagedOrder},
	"addStagedAction":     {OrderEdit},
}

func supports(name string, r Resource) bool {
	for _, s := range supported[name] {
		if s == r {
			return true
		}
	}
	return false
}

// Resources returns the resource families accepting the named action.
func Resources(name string) []Resource {
	return append([]Resource(nil), supported[name]...)
}

// Validate checks that a carries the values its wire form requires.
func Validate(a Action) error {
	if a == nil {
		return fmt.Errorf("%w: nil action", ErrInvalid)
	}
	if v, ok := a.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, a.ActionName(), err)
		}
	}
	return nil
}

// encode marshals fields and prepends the action name.
func encode(name string, fields any) ([]byte, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode action %s: %w", name, err)
	}
	var buf bytes.Buffer
	buf.WriteString(`{"action":`)
	n, _ := json.Marshal(name)
	buf.Write(n)
	body := bytes.TrimSpace(data)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1 : len(body)-1])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode marshals a list of actions as a JSON array.
func Encode(actions []Action) ([]byte, error) {
	if actions == nil {
		actions = []Action{}
	}
	return json.Marshal(actions)
}
