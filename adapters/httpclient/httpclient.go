// Package httpclient provides the net/http implementation of ports.Adapter.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/artpar/commercekit/adapters/idgen"
	"github.com/artpar/commercekit/adapters/metrics"
	"github.com/artpar/commercekit/domain/transport"
	"github.com/artpar/commercekit/pkg/apierror"
	"github.com/artpar/commercekit/ports"
)

const (
	// DefaultTimeout bounds a call when neither the request nor the config sets one.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchLimit bounds concurrent calls of one batch.
	DefaultBatchLimit = 8

	// MaxResponseBytes caps the body read from one response.
	MaxResponseBytes = 50 << 20

	// CorrelationHeader carries the per-call correlation id.
	CorrelationHeader = "X-Correlation-ID"
)

// ErrResponseTooLarge is returned when a body exceeds MaxResponseBytes.
var ErrResponseTooLarge = errors.New("response body too large")

// Config configures the adapter.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	BatchLimit int
	Headers    map[string]string
}

// Adapter sends transport requests with net/http.
type Adapter struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	batchLimit int
	headers    map[string]string

	logger  atomic.Pointer[zerolog.Logger]
	ids     ports.IDGenerator
	metrics *metrics.Collector
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Adapter) { a.logger.Store(&l) }
}

// WithIDGenerator sets the correlation id generator.
func WithIDGenerator(g ports.IDGenerator) Option {
	return func(a *Adapter) { a.ids = g }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(a *Adapter) { a.metrics = m }
}

// New creates an adapter.
func New(cfg Config, opts ...Option) *Adapter {
	a := &Adapter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		batchLimit: cfg.BatchLimit,
		headers:    cfg.Headers,
		ids:        idgen.UUID{},
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if a.batchLimit <= 0 {
		a.batchLimit = DefaultBatchLimit
	}
	if a.userAgent == "" {
		a.userAgent = "commercekit"
	}
	nop := zerolog.Nop()
	a.logger.Store(&nop)

	for _, opt := range opts {
		opt(a)
	}
	if a.httpClient == nil {
		a.httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return a
}

// BaseURL returns the URL request paths are resolved against.
func (a *Adapter) BaseURL() string {
	return a.baseURL
}

// SetLogger replaces the logger. Safe to call while requests are in flight.
func (a *Adapter) SetLogger(logger zerolog.Logger) {
	a.logger.Store(&logger)
}

func (a *Adapter) log() *zerolog.Logger {
	return a.logger.Load()
}

// Execute sends one request. A non-2xx status is returned as a response;
// errors are *apierror.NetworkError.
func (a *Adapter) Execute(ctx context.Context, req transport.Request) (*transport.Response, error) {
	if req.CorrelationID == "" {
		req.CorrelationID = a.ids.New()
	}
	target := req.URL(a.baseURL)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &apierror.NetworkError{Method: req.Method, URL: target, Err: fmt.Errorf("create request: %w", err)}
	}
	for k, v := range a.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("User-Agent", a.userAgent)
	httpReq.Header.Set(CorrelationHeader, req.CorrelationID)

	a.metrics.InFlight(1)
	defer a.metrics.InFlight(-1)

	start := time.Now()
	resp, err := a.do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		kind := "network"
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			kind = "timeout"
		} else if errors.Is(err, ErrResponseTooLarge) {
			kind = "too_large"
		}
		a.metrics.ObserveTransportError(kind)
		a.log().Warn().
			Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Str("correlation_id", req.CorrelationID).
			Dur("duration", elapsed).
			Msg("request failed")
		return nil, &apierror.NetworkError{Method: req.Method, URL: target, Err: err}
	}

	resp.LatencyMs = elapsed.Milliseconds()
	if id := resp.Header(CorrelationHeader); id != "" {
		resp.CorrelationID = id
	} else {
		resp.CorrelationID = req.CorrelationID
	}
	a.metrics.ObserveRequest(req.Method, req.Path, resp.Status, elapsed)
	a.log().Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.Status).
		Int64("latency_ms", resp.LatencyMs).
		Str("correlation_id", resp.CorrelationID).
		Msg("request")
	return resp, nil
}

func (a *Adapter) do(httpReq *http.Request) (*transport.Response, error) {
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) > MaxResponseBytes {
		return nil, ErrResponseTooLarge
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return &transport.Response{
		Status:  resp.StatusCode,
		Headers: headers,
		Body:    data,
	}, nil
}

// ExecuteBatch sends reqs concurrently, at most BatchLimit at a time.
// Results keep the order of reqs; a failed call does not cancel the others.
func (a *Adapter) ExecuteBatch(ctx context.Context, reqs []transport.Request) []transport.Result {
	results := make([]transport.Result, len(reqs))
	a.metrics.ObserveBatch(len(reqs))

	var g errgroup.Group
	g.SetLimit(a.batchLimit)
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := a.Execute(ctx, req)
			results[i] = transport.Result{Response: resp, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ExecuteAsync sends req in the background.
func (a *Adapter) ExecuteAsync(ctx context.Context, req transport.Request) *transport.Future[*transport.Response] {
	return transport.Go(func() (*transport.Response, error) {
		return a.Execute(ctx, req)
	})
}

// Authenticate posts form to tokenURL with the client credentials as basic
// auth. tokenURL is absolute; it is not resolved against the base URL.
func (a *Adapter) Authenticate(ctx context.Context, tokenURL, clientID, clientSecret string, form url.Values) (*transport.Response, error) {
	u, err := url.Parse(tokenURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &apierror.NetworkError{Method: http.MethodPost, URL: tokenURL, Err: fmt.Errorf("invalid token url %q", tokenURL)}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &apierror.NetworkError{Method: http.MethodPost, URL: tokenURL, Err: err}
	}
	httpReq.SetBasicAuth(url.QueryEscape(clientID), url.QueryEscape(clientSecret))
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", a.userAgent)
	correlationID := a.ids.New()
	httpReq.Header.Set(CorrelationHeader, correlationID)

	start := time.Now()
	resp, err := a.do(httpReq)
	if err != nil {
		a.metrics.ObserveTransportError("network")
		a.log().Warn().Err(err).Str("url", tokenURL).Msg("token request failed")
		return nil, &apierror.NetworkError{Method: http.MethodPost, URL: tokenURL, Err: err}
	}
	resp.LatencyMs = time.Since(start).Milliseconds()
	resp.CorrelationID = correlationID
	a.log().Debug().
		Str("url", tokenURL).
		Int("status", resp.Status).
		Int64("latency_ms", resp.LatencyMs).
		Msg("token request")
	return resp, nil
}

var _ ports.Adapter = (*Adapter)(nil)
