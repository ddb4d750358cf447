// Package app provides the client that ties request building, transport,
// authentication and response mapping together.
package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/artpar/commercekit/core/model"
	"github.com/artpar/commercekit/domain/request"
	"github.com/artpar/commercekit/domain/transport"
	"github.com/artpar/commercekit/pkg/apierror"
	"github.com/artpar/commercekit/ports"
)

// ErrNoProjectKey is returned when the client has no project configured.
var ErrNoProjectKey = errors.New("project key is not configured")

// Client executes requests against one project.
// It is safe for concurrent use.
type Client struct {
	adapter ports.Adapter
	tokens  ports.TokenSource
	logger  zerolog.Logger

	// Dynamic configuration (hot-reloadable)
	dynamicCfg atomic.Pointer[DynamicConfig]
}

// DynamicConfig contains hot-reloadable configuration.
type DynamicConfig struct {
	ProjectKey string
	Context    *model.Context
}

// ClientDeps contains dependencies for Client.
type ClientDeps struct {
	Adapter ports.Adapter
	Tokens  ports.TokenSource // nil sends requests unauthenticated
	Logger  zerolog.Logger
}

// ClientConfig contains configuration for Client.
type ClientConfig struct {
	ProjectKey string

	// Context is applied to requests that carry none.
	Context *model.Context
}

// NewClient creates a client.
func NewClient(deps ClientDeps, cfg ClientConfig) *Client {
	c := &Client{
		adapter: deps.Adapter,
		tokens:  deps.Tokens,
		logger:  deps.Logger,
	}
	c.UpdateConfig(cfg.ProjectKey, cfg.Context)
	return c
}

// UpdateConfig updates the hot-reloadable configuration.
// This is thread-safe and can be called while requests are in flight.
func (c *Client) UpdateConfig(projectKey string, ctx *model.Context) {
	c.dynamicCfg.Store(&DynamicConfig{
		ProjectKey: strings.Trim(projectKey, "/"),
		Context:    ctx,
	})
}

// ProjectKey returns the current project key.
func (c *Client) ProjectKey() string {
	return c.dynamicCfg.Load().ProjectKey
}

// Adapter returns the underlying adapter.
func (c *Client) Adapter() ports.Adapter {
	return c.adapter
}

// Execute sends r and maps the response.
// Non-2xx responses fail with *apierror.Error and transport failures with
// *apierror.NetworkError. A rejected token is dropped so the next call
// re-authenticates; the call itself is not retried.
func (c *Client) Execute(ctx context.Context, r *request.Request) (*model.Object, error) {
	req, err := c.prepare(ctx, r)
	if err != nil {
		return nil, err
	}
	resp, err := c.adapter.Execute(ctx, req)
	return c.finish(ctx, r, resp, err)
}

// Result is the outcome of one request of a batch.
type Result struct {
	Object *model.Object
	Err    error
}

// ExecuteBatch sends reqs concurrently. Results are ordered like reqs and
// each slot succeeds or fails on its own.
func (c *Client) ExecuteBatch(ctx context.Context, reqs []*request.Request) []Result {
	results := make([]Result, len(reqs))

	// Requests that fail to build never reach the adapter.
	sendIdx := make([]int, 0, len(reqs))
	send := make([]transport.Request, 0, len(reqs))
	for i, r := range reqs {
		req, err := c.prepare(ctx, r)
		if err != nil {
			results[i].Err = err
			continue
		}
		sendIdx = append(sendIdx, i)
		send = append(send, req)
	}

	if len(send) > 0 {
		for j, res := range c.adapter.ExecuteBatch(ctx, send) {
			i := sendIdx[j]
			results[i].Object, results[i].Err = c.finish(ctx, reqs[i], res.Response, res.Err)
		}
	}
	return results
}

// ExecuteAsync sends r in the background.
func (c *Client) ExecuteAsync(ctx context.Context, r *request.Request) *transport.Future[*model.Object] {
	req, err := c.prepare(ctx, r)
	if err != nil {
		f := transport.NewFuture[*model.Object]()
		f.Resolve(nil, err)
		return f
	}
	return transport.Then(c.adapter.ExecuteAsync(ctx, req), func(resp *transport.Response, err error) (*model.Object, error) {
		return c.finish(ctx, r, resp, err)
	})
}

// prepare converts r into a transport request addressed to the project and
// authorized with the current token.
func (c *Client) prepare(ctx context.Context, r *request.Request) (transport.Request, error) {
	cfg := c.dynamicCfg.Load()
	if cfg.ProjectKey == "" {
		return transport.Request{}, ErrNoProjectKey
	}
	if r.Context() == nil && cfg.Context != nil {
		r.WithContext(cfg.Context)
	}

	req, err := r.HTTPRequest()
	if err != nil {
		return transport.Request{}, err
	}
	req.Path = "/" + cfg.ProjectKey + req.Path

	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return transport.Request{}, err
		}
		req = req.WithHeader("Authorization", tok.Authorization())
	}
	return req, nil
}

func (c *Client) finish(ctx context.Context, r *request.Request, resp *transport.Response, err error) (*model.Object, error) {
	if err == nil && resp != nil && resp.Status == http.StatusUnauthorized && c.tokens != nil {
		if ierr := c.tokens.Invalidate(ctx); ierr != nil {
			c.logger.Warn().Err(ierr).Msg("failed to invalidate token")
		}
	}

	obj, err := r.MapResult(resp, err)
	if err != nil {
		ev := c.logger.Debug()
		if apiErr, ok := apierror.AsError(err); ok {
			ev = ev.Int("status", apiErr.StatusCode).Str("code", apiErr.Code())
		}
		ev.Err(err).Str("request", r.String()).Msg("request failed")
	}
	return obj, err
}
