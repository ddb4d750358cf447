package commerce

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/artpar/commercekit/domain/action"
	"github.com/artpar/commercekit/domain/request"
)

// Endpoints of the supported resources.
var (
	Stores        = request.Endpoint{Path: "stores", Entity: entity("Store"), Resource: action.Store}
	Categories    = request.Endpoint{Path: "categories", Entity: entity("Category"), Resource: action.Category}
	Carts         = request.Endpoint{Path: "carts", Entity: entity("Cart"), Resource: action.Cart}
	Zones         = request.Endpoint{Path: "zones", Entity: entity("Zone"), Resource: action.Zone}
	CustomObjects = request.Endpoint{Path: "custom-objects", Entity: entity("CustomObject")}
	OrderEdits    = request.Endpoint{Path: "orders/edits", Entity: entity("OrderEdit"), Resource: action.OrderEdit}
)

// Endpoints maps resource names, as used on the command line, to endpoints.
var Endpoints = map[string]request.Endpoint{
	"stores":         Stores,
	"categories":     Categories,
	"carts":          Carts,
	"zones":          Zones,
	"custom-objects": CustomObjects,
	"order-edits":    OrderEdits,
}

// CustomObjectFetchByContainerAndKey gets a custom object.
func CustomObjectFetchByContainerAndKey(container, key string) *request.Request {
	return request.New(http.MethodGet, CustomObjects, container, key)
}

// CustomObjectDeleteByContainerAndKey deletes a custom object. A version
// greater than zero makes the delete conditional.
func CustomObjectDeleteByContainerAndKey(container, key string, version int64) *request.Request {
	r := request.New(http.MethodDelete, CustomObjects, container, key)
	if version > 0 {
		r.Param("version", strconv.FormatInt(version, 10))
	}
	return r
}

// CustomObjectsInContainer lists the custom objects of a container.
func CustomObjectsInContainer(container string) *request.Request {
	return request.Query(CustomObjects).Where(`container=` + quote(container))
}

var predicateEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote renders s as a string literal of the query predicate language.
func quote(s string) string {
	return `"` + predicateEscaper.Replace(s) + `"`
}
