package oauth

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/artpar/commercekit/adapters/clock"
	"github.com/artpar/commercekit/adapters/memory"
	"github.com/artpar/commercekit/adapters/metrics"
	domainoauth "github.com/artpar/commercekit/domain/oauth"
	"github.com/artpar/commercekit/domain/transport"
	"github.com/artpar/commercekit/pkg/apierror"
)

// fakeAdapter answers Authenticate with a canned response.
type fakeAdapter struct {
	calls    atomic.Int32
	gate     chan struct{}
	status   int
	body     string
	err      error
	lastForm url.Values
	lastID   string
	mu       sync.Mutex
}

func (f *fakeAdapter) Execute(ctx context.Context, req transport.Request) (*transport.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAdapter) ExecuteBatch(ctx context.Context, reqs []transport.Request) []transport.Result {
	return nil
}

func (f *fakeAdapter) ExecuteAsync(ctx context.Context, req transport.Request) *transport.Future[*transport.Response] {
	return nil
}

func (f *fakeAdapter) Authenticate(ctx context.Context, tokenURL, clientID, clientSecret string, form url.Values) (*transport.Response, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.lastForm = form
	f.lastID = clientID
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = 200
	}
	return &transport.Response{Status: status, Body: []byte(f.body)}, nil
}

func (f *fakeAdapter) SetLogger(zerolog.Logger) {}

func testConfig() Config {
	return Config{
		TokenURL: "https://auth.example.com/oauth/token",
		Credentials: domainoauth.Credentials{
			ClientID:     "client",
			ClientSecret: "secret",
			Scopes:       []string{"manage_project:demo"},
		},
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad url", Config{TokenURL: "nope", Credentials: testConfig().Credentials}},
		{"missing secret", Config{TokenURL: "https://a.example.com/t", Credentials: domainoauth.Credentials{ClientID: "c"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProvider(tt.cfg, &fakeAdapter{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestToken_FetchesAndCaches(t *testing.T) {
	adapter := &fakeAdapter{body: `{"access_token":"abc","token_type":"bearer","expires_in":3600,"scope":"manage_project:demo"}`}
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	p, err := NewProvider(testConfig(), adapter, WithClock(clk), WithMetrics(m))
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	ctx := context.Background()
	tok, err := p.Token(ctx)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if tok.AccessToken != "abc" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
	if tok.Authorization() != "Bearer abc" {
		t.Errorf("Authorization = %q", tok.Authorization())
	}
	if adapter.lastForm.Get("grant_type") != "client_credentials" {
		t.Errorf("grant_type = %q", adapter.lastForm.Get("grant_type"))
	}
	if adapter.lastForm.Get("scope") != "manage_project:demo" {
		t.Errorf("scope = %q", adapter.lastForm.Get("scope"))
	}

	if _, err := p.Token(ctx); err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if n := adapter.calls.Load(); n != 1 {
		t.Errorf("Authenticate calls = %d, want 1", n)
	}
	if got := testutil.ToFloat64(m.TokenCacheHits); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TokenFetches.WithLabelValues("ok")); got != 1 {
		t.Errorf("fetches = %v, want 1", got)
	}
}

func TestToken_RenewsBeforeExpiry(t *testing.T) {
	adapter := &fakeAdapter{body: `{"access_token":"abc","expires_in":120}`}
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p, _ := NewProvider(testConfig(), adapter, WithClock(clk))

	ctx := context.Background()
	p.Token(ctx)
	clk.Advance(80 * time.Second)
	p.Token(ctx)
	if n := adapter.calls.Load(); n != 1 {
		t.Fatalf("calls = %d, want 1 before leeway", n)
	}

	clk.Advance(15 * time.Second) // 95s: within 30s leeway of 120s
	p.Token(ctx)
	if n := adapter.calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2 after leeway", n)
	}
}

func TestToken_ConcurrentCallersShareExchange(t *testing.T) {
	adapter := &fakeAdapter{
		body: `{"access_token":"abc","expires_in":3600}`,
		gate: make(chan struct{}),
	}
	p, _ := NewProvider(testConfig(), adapter)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Token(context.Background()); err != nil {
				errs <- err
			}
		}()
	}

	// Let the callers pile up behind the first exchange.
	time.Sleep(50 * time.Millisecond)
	close(adapter.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Token error: %v", err)
	}
	if n := adapter.calls.Load(); n != 1 {
		t.Errorf("Authenticate calls = %d, want 1", n)
	}
}

func TestToken_Rejected(t *testing.T) {
	adapter := &fakeAdapter{
		status: 401,
		body:   `{"error":"invalid_client","error_description":"Please provide valid client credentials."}`,
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p, _ := NewProvider(testConfig(), adapter, WithMetrics(m))

	_, err := p.Token(context.Background())
	apiErr, ok := apierror.AsError(err)
	if !ok {
		t.Fatalf("error = %v, want *apierror.Error", err)
	}
	if apiErr.Code() != apierror.CodeInvalidClient {
		t.Errorf("Code = %q", apiErr.Code())
	}
	if !errors.Is(err, apierror.ErrUnauthorized) {
		t.Error("expected ErrUnauthorized")
	}
	if got := testutil.ToFloat64(m.TokenFetches.WithLabelValues("error")); got != 1 {
		t.Errorf("error fetches = %v, want 1", got)
	}
}

func TestToken_TransportError(t *testing.T) {
	adapter := &fakeAdapter{err: &apierror.NetworkError{Method: "POST", URL: "x", Err: errors.New("refused")}}
	p, _ := NewProvider(testConfig(), adapter)

	_, err := p.Token(context.Background())
	if !apierror.IsNetwork(err) {
		t.Errorf("error = %v, want NetworkError", err)
	}
}

func TestToken_MissingAccessToken(t *testing.T) {
	adapter := &fakeAdapter{body: `{"token_type":"bearer"}`}
	p, _ := NewProvider(testConfig(), adapter)

	_, err := p.Token(context.Background())
	if !errors.Is(err, domainoauth.ErrNoAccessToken) {
		t.Errorf("error = %v, want ErrNoAccessToken", err)
	}
}

func TestInvalidate(t *testing.T) {
	adapter := &fakeAdapter{body: `{"access_token":"abc","expires_in":3600}`}
	store := memory.NewTokenStore()
	p, _ := NewProvider(testConfig(), adapter, WithStore(store))

	ctx := context.Background()
	p.Token(ctx)
	if store.Len() != 1 {
		t.Fatalf("store.Len() = %d, want 1", store.Len())
	}
	if err := p.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d after Invalidate", store.Len())
	}
	p.Token(ctx)
	if n := adapter.calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestReconfigure(t *testing.T) {
	adapter := &fakeAdapter{body: `{"access_token":"abc","expires_in":3600}`}
	p, _ := NewProvider(testConfig(), adapter)

	ctx := context.Background()
	p.Token(ctx)

	cfg := testConfig()
	cfg.Credentials.ClientID = "other"
	if err := p.Reconfigure(cfg); err != nil {
		t.Fatalf("Reconfigure error: %v", err)
	}
	p.Token(ctx)

	if n := adapter.calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
	if adapter.lastID != "other" {
		t.Errorf("client id = %q, want other", adapter.lastID)
	}

	bad := cfg
	bad.TokenURL = ""
	if err := p.Reconfigure(bad); err == nil {
		t.Error("expected error for invalid config")
	}
	if p.config().Credentials.ClientID != "other" {
		t.Error("invalid Reconfigure replaced the config")
	}
}
