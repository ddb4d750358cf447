// Package commerce provides the entity schemas, endpoints and typed
// wrappers of the commerce API resources.
package commerce

import (
	"embed"
	"fmt"
	"sync"

	"github.com/artpar/commercekit/core/model"
	"github.com/artpar/commercekit/core/schema"
)

//go:embed schemas
var schemaFS embed.FS

var registry = sync.OnceValues(func() (*schema.Registry, error) {
	return NewRegistry()
})

// Registry returns the shared resolved registry of the built-in entities.
// It panics if the embedded schemas are invalid.
func Registry() *schema.Registry {
	reg, err := registry()
	if err != nil {
		panic(err)
	}
	return reg
}

// NewRegistry builds a fresh resolved registry of the built-in entities
// plus extra. Extra entities may reference built-in ones.
func NewRegistry(extra ...*schema.Entity) (*schema.Registry, error) {
	entities, err := schema.ParseFS(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("parse schemas: %w", err)
	}

	reg := schema.NewRegistry()
	reg.RegisterDecorator(model.MoneyDecorator, model.DecorateMoney)
	if err := reg.Add(entities...); err != nil {
		return nil, err
	}
	if err := reg.Add(extra...); err != nil {
		return nil, err
	}
	if err := reg.Resolve(); err != nil {
		return nil, fmt.Errorf("resolve schemas: %w", err)
	}
	return reg, nil
}

func entity(name string) *schema.Entity {
	return Registry().MustEntity(name)
}
