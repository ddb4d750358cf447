// Package idgen provides ID generation implementations.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/artpar/commercekit/ports"
)

// UUID generates random UUIDs, optionally prefixed. Used for correlation ids.
type UUID struct {
	Prefix string
}

// New generates a new prefixed UUID v4.
func (g UUID) New() string {
	return g.Prefix + uuid.NewString()
}

var _ ports.IDGenerator = UUID{}

// Sequential generates predictable ids for tests and the fake platform.
type Sequential struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New generates the next sequential ID.
func (s *Sequential) New() string {
	return s.prefix + strconv.FormatUint(s.counter.Add(1), 10)
}

var _ ports.IDGenerator = (*Sequential)(nil)
