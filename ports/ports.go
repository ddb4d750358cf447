// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/commercekit/domain/oauth"
	"github.com/artpar/commercekit/domain/transport"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// Adapter executes API calls over some transport.
// Implementations are safe for concurrent use.
type Adapter interface {
	// Execute sends one request and waits for the response.
	// A non-2xx status is a response, not an error; errors are transport failures.
	Execute(ctx context.Context, req transport.Request) (*transport.Response, error)

	// ExecuteBatch sends requests concurrently. Results are ordered like reqs
	// and each slot carries its own response or error.
	ExecuteBatch(ctx context.Context, reqs []transport.Request) []transport.Result

	// ExecuteAsync sends a request in the background.
	ExecuteAsync(ctx context.Context, req transport.Request) *transport.Future[*transport.Response]

	// Authenticate posts form to the token endpoint using client credentials
	// as basic auth and returns the raw response.
	Authenticate(ctx context.Context, tokenURL, clientID, clientSecret string, form url.Values) (*transport.Response, error)

	// SetLogger replaces the logger.
	SetLogger(logger zerolog.Logger)
}

// -----------------------------------------------------------------------------
// Authentication Ports
// -----------------------------------------------------------------------------

// TokenStore caches access tokens by cache key.
type TokenStore interface {
	// Get returns the cached token, if any.
	Get(ctx context.Context, key string) (oauth.Token, bool, error)

	// Set stores a token.
	Set(ctx context.Context, key string, token oauth.Token) error

	// Delete removes a token.
	Delete(ctx context.Context, key string) error
}

// TokenSource provides a valid access token.
type TokenSource interface {
	// Token returns a cached token or obtains a new one.
	Token(ctx context.Context) (oauth.Token, error)

	// Invalidate drops the cached token so the next call re-authenticates.
	Invalidate(ctx context.Context) error
}
