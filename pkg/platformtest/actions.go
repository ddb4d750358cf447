package platformtest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/artpar/commercekit/pkg/apierror"
)

// actionValueField maps actions whose value field is not named after the
// target field.
var actionValueField = map[string]string{
	"customerEmail": "email",
}

// applyAction applies one update action to obj in place.
// set* actions assign or, with a missing value, remove a field; change*
// actions require a value. Asset, custom field, delivery and staged
// actions have dedicated handling.
func applyAction(obj map[string]any, a map[string]any) *apierror.Error {
	name, _ := a["action"].(string)
	switch name {
	case "":
		return apierror.RequiredField("action")
	case "setCustomField":
		return setCustomField(obj, a)
	case "addAsset":
		return addAsset(obj, a)
	case "removeAsset":
		return removeAsset(obj, a)
	case "removeDelivery":
		return removeDelivery(obj, a)
	case "addStagedAction":
		return addStagedAction(obj, a)
	}

	if strings.HasPrefix(name, "setAsset") || strings.HasPrefix(name, "changeAsset") {
		return updateAsset(obj, a, name)
	}

	var field string
	var required bool
	switch {
	case strings.HasPrefix(name, "set") && len(name) > 3:
		field = lowerFirst(name[3:])
	case strings.HasPrefix(name, "change") && len(name) > 6:
		field = lowerFirst(name[6:])
		required = true
	default:
		return unknownAction(name)
	}

	valueField := field
	if f, ok := actionValueField[field]; ok {
		valueField = f
	}
	value, ok := a[valueField]
	if !ok || value == nil {
		if required {
			return apierror.RequiredField(valueField)
		}
		delete(obj, field)
		return nil
	}
	obj[field] = value
	return nil
}

func setCustomField(obj map[string]any, a map[string]any) *apierror.Error {
	name, _ := a["name"].(string)
	if name == "" {
		return apierror.RequiredField("name")
	}
	custom, _ := obj["custom"].(map[string]any)
	if custom == nil {
		custom = map[string]any{}
		obj["custom"] = custom
	}
	fields, _ := custom["fields"].(map[string]any)
	if fields == nil {
		fields = map[string]any{}
		custom["fields"] = fields
	}
	if v, ok := a["value"]; ok && v != nil {
		fields[name] = v
	} else {
		delete(fields, name)
	}
	return nil
}

func assets(obj map[string]any) []any {
	list, _ := obj["assets"].([]any)
	return list
}

// findAsset returns the index of the asset addressed by assetId or assetKey.
func findAsset(obj map[string]any, a map[string]any) (int, *apierror.Error) {
	id, _ := a["assetId"].(string)
	key, _ := a["assetKey"].(string)
	if id == "" && key == "" {
		msg := "Either assetId or assetKey is required."
		return -1, apierror.New(http.StatusBadRequest, msg).Code(apierror.CodeInvalidOperation, msg).Build()
	}
	for i, raw := range assets(obj) {
		asset, _ := raw.(map[string]any)
		if asset == nil {
			continue
		}
		if (id != "" && asset["id"] == id) || (key != "" && asset["key"] == key) {
			return i, nil
		}
	}
	ref := id
	if ref == "" {
		ref = "key=" + key
	}
	return -1, apierror.NotFound("Asset", ref)
}

func addAsset(obj map[string]any, a map[string]any) *apierror.Error {
	asset, _ := a["asset"].(map[string]any)
	if asset == nil {
		return apierror.RequiredField("asset")
	}
	asset = clone(asset)
	if _, ok := asset["id"]; !ok {
		asset["id"] = uuid.NewString()
	}
	list := assets(obj)
	pos := len(list)
	if raw, ok := a["position"]; ok {
		p, ok := toInt64(raw)
		if !ok || p < 0 || int(p) > len(list) {
			return apierror.InvalidField("position", fmt.Sprintf("Position %v is out of range.", raw))
		}
		pos = int(p)
	}
	list = append(list, nil)
	copy(list[pos+1:], list[pos:])
	list[pos] = asset
	obj["assets"] = list
	return nil
}

func removeAsset(obj map[string]any, a map[string]any) *apierror.Error {
	i, apiErr := findAsset(obj, a)
	if apiErr != nil {
		return apiErr
	}
	list := assets(obj)
	obj["assets"] = append(list[:i], list[i+1:]...)
	return nil
}

func updateAsset(obj map[string]any, a map[string]any, name string) *apierror.Error {
	i, apiErr := findAsset(obj, a)
	if apiErr != nil {
		return apiErr
	}
	field := strings.TrimPrefix(strings.TrimPrefix(name, "setAsset"), "changeAsset")
	if field == "" {
		return unknownAction(name)
	}
	field = lowerFirst(field)

	asset := assets(obj)[i].(map[string]any)
	if v, ok := a[field]; ok && v != nil {
		asset[field] = v
	} else if strings.HasPrefix(name, "changeAsset") {
		return apierror.RequiredField(field)
	} else {
		delete(asset, field)
	}
	return nil
}

func removeDelivery(obj map[string]any, a map[string]any) *apierror.Error {
	id, _ := a["deliveryId"].(string)
	if id == "" {
		return apierror.RequiredField("deliveryId")
	}
	info, _ := obj["shippingInfo"].(map[string]any)
	deliveries, _ := info["deliveries"].([]any)
	for i, raw := range deliveries {
		if d, _ := raw.(map[string]any); d != nil && d["id"] == id {
			info["deliveries"] = append(deliveries[:i], deliveries[i+1:]...)
			return nil
		}
	}
	return apierror.NotFound("Delivery", id)
}

func addStagedAction(obj map[string]any, a map[string]any) *apierror.Error {
	staged, _ := a["stagedAction"].(map[string]any)
	if staged == nil {
		return apierror.RequiredField("stagedAction")
	}
	if name, _ := staged["action"].(string); name == "" {
		return apierror.RequiredField("stagedAction.action")
	}
	list, _ := obj["stagedActions"].([]any)
	obj["stagedActions"] = append(list, clone(staged))
	return nil
}

func unknownAction(name string) *apierror.Error {
	return apierror.InvalidOperation(fmt.Sprintf("Unknown update action '%s'.", name))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// predicates is a conjunction of equality tests on top-level or dotted
// fields, e.g. key="summer" and name.en="Shop".
type predicates []predicate

type predicate struct {
	path  []string
	value string
}

func parsePredicates(where []string) (predicates, error) {
	var out predicates
	for _, w := range where {
		for _, clause := range splitAnd(w) {
			field, value, ok := strings.Cut(clause, "=")
			field = strings.TrimSpace(field)
			value = strings.TrimSpace(value)
			if !ok || field == "" || strings.ContainsAny(field, " <>!") {
				return nil, fmt.Errorf("malformed parameter: where: unsupported predicate %q", clause)
			}
			value = strings.Trim(value, `"`)
			out = append(out, predicate{path: strings.Split(field, "."), value: value})
		}
	}
	return out, nil
}

func splitAnd(s string) []string {
	parts := strings.Split(s, " and ")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (ps predicates) match(obj map[string]any) bool {
	for _, p := range ps {
		var cur any = obj
		for _, seg := range p.path {
			m, ok := cur.(map[string]any)
			if !ok {
				return false
			}
			cur = m[seg]
		}
		if cur == nil || fmt.Sprint(cur) != p.value {
			return false
		}
	}
	return true
}
