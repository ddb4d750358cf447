// Package oauth provides the token source that authenticates API calls.
package oauth

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/artpar/commercekit/adapters/clock"
	"github.com/artpar/commercekit/adapters/memory"
	"github.com/artpar/commercekit/adapters/metrics"
	"github.com/artpar/commercekit/domain/oauth"
	"github.com/artpar/commercekit/pkg/apierror"
	"github.com/artpar/commercekit/ports"
)

// Config holds the token endpoint and the credentials used against it.
type Config struct {
	TokenURL    string
	Credentials oauth.Credentials

	// Leeway renews tokens this long before they expire.
	// Zero uses oauth.DefaultLeeway.
	Leeway time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.TokenURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("oauth: invalid token url %q", c.TokenURL)
	}
	return c.Credentials.Validate()
}

func (c Config) leeway() time.Duration {
	if c.Leeway > 0 {
		return c.Leeway
	}
	return oauth.DefaultLeeway
}

// Provider obtains tokens through a ports.Adapter and caches them in a
// ports.TokenStore. Concurrent callers missing the cache share one exchange.
type Provider struct {
	mu  sync.RWMutex
	cfg Config

	adapter ports.Adapter
	store   ports.TokenStore
	clock   ports.Clock
	metrics *metrics.Collector
	logger  zerolog.Logger

	flight singleflight.Group
}

// Option customizes a Provider.
type Option func(*Provider)

// WithStore sets the token store. The default is an in-memory store.
func WithStore(s ports.TokenStore) Option {
	return func(p *Provider) { p.store = s }
}

// WithClock sets the clock used for expiry.
func WithClock(c ports.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// NewProvider creates a provider. It fails if cfg is invalid.
func NewProvider(cfg Config, adapter ports.Adapter, opts ...Option) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Provider{
		cfg:     cfg,
		adapter: adapter,
		store:   memory.NewTokenStore(),
		clock:   clock.Real{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Token returns a cached token that is not about to expire, or obtains a
// new one from the token endpoint.
func (p *Provider) Token(ctx context.Context) (oauth.Token, error) {
	cfg := p.config()
	key := cfg.Credentials.CacheKey(cfg.TokenURL)

	tok, ok, err := p.store.Get(ctx, key)
	if err != nil {
		return oauth.Token{}, fmt.Errorf("oauth: read token cache: %w", err)
	}
	if ok && !tok.IsExpired(p.clock.Now(), cfg.leeway()) {
		p.metrics.ObserveTokenCacheHit()
		return tok, nil
	}

	// The shared exchange must not be cancelled by whichever caller started it.
	ch := p.flight.DoChan(key, func() (any, error) {
		return p.fetch(context.WithoutCancel(ctx), cfg, key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return oauth.Token{}, res.Err
		}
		return res.Val.(oauth.Token), nil
	case <-ctx.Done():
		return oauth.Token{}, ctx.Err()
	}
}

func (p *Provider) fetch(ctx context.Context, cfg Config, key string) (oauth.Token, error) {
	creds := cfg.Credentials
	start := p.clock.Now()
	resp, err := p.adapter.Authenticate(ctx, cfg.TokenURL, creds.ClientID, creds.ClientSecret, creds.Form())
	if err != nil {
		p.metrics.ObserveTokenFetch("error")
		return oauth.Token{}, err
	}
	if !resp.IsSuccess() {
		p.metrics.ObserveTokenFetch("error")
		apiErr := apierror.Parse(resp.Status, resp.Body, resp.CorrelationID)
		p.logger.Warn().
			Int("status", resp.Status).
			Str("code", apiErr.Code()).
			Str("client_id", creds.ClientID).
			Msg("token request rejected")
		return oauth.Token{}, apiErr
	}

	tok, err := oauth.ParseToken(resp.Body, p.clock.Now())
	if err != nil {
		p.metrics.ObserveTokenFetch("error")
		return oauth.Token{}, fmt.Errorf("oauth: %w", err)
	}
	p.metrics.ObserveTokenFetch("ok")

	if err := p.store.Set(ctx, key, tok); err != nil {
		p.logger.Warn().Err(err).Msg("failed to cache token")
	}
	p.logger.Debug().
		Str("client_id", creds.ClientID).
		Str("scope", tok.Scope).
		Time("expires_at", tok.ExpiresAt).
		Dur("duration", clock.Since(p.clock, start)).
		Msg("token obtained")
	return tok, nil
}

// Invalidate drops the cached token so the next Token call re-authenticates.
func (p *Provider) Invalidate(ctx context.Context) error {
	cfg := p.config()
	key := cfg.Credentials.CacheKey(cfg.TokenURL)
	p.flight.Forget(key)
	return p.store.Delete(ctx, key)
}

// Reconfigure switches to new credentials. Tokens of the old credentials
// stay cached under their own key and are no longer used.
func (p *Provider) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	old := p.cfg
	p.cfg = cfg
	p.mu.Unlock()

	if old.Credentials.CacheKey(old.TokenURL) != cfg.Credentials.CacheKey(cfg.TokenURL) {
		p.logger.Info().
			Str("token_url", cfg.TokenURL).
			Str("client_id", cfg.Credentials.ClientID).
			Msg("oauth credentials changed")
	}
	return nil
}

var _ ports.TokenSource = (*Provider)(nil)
