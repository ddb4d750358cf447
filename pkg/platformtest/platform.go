// Package platformtest provides an in-process fake of the commerce platform
// for tests: a token endpoint, versioned resource storage and fault
// injection, served over httptest.
package platformtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/artpar/commercekit/pkg/apierror"
)

// Defaults used when no option overrides them.
const (
	DefaultProjectKey   = "test-project"
	DefaultClientID     = "test-client"
	DefaultClientSecret = "test-secret"
	DefaultTokenTTL     = 48 * time.Hour
)

// Resources served under /{projectKey}/.
var Resources = []string{"stores", "categories", "carts", "zones", "orders/edits"}

// Platform is a running fake platform.
type Platform struct {
	ProjectKey   string
	ClientID     string
	ClientSecret string
	TokenTTL     time.Duration

	server *httptest.Server

	mu       sync.Mutex
	data     map[string]map[string]map[string]any // resource -> id -> object
	order    map[string][]string                  // resource -> ids in creation order
	tokens   map[string]struct{}
	faults   []fault
	requests []RecordedRequest

	tokenRequests atomic.Int32
	now           func() time.Time
}

// RecordedRequest is a request the platform received.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	CorrelationID string
}

type faultKind int

const (
	faultStatus faultKind = iota
	faultDrop
	faultDelay
)

type fault struct {
	kind   faultKind
	status int
	delay  time.Duration
	match  string // path substring; empty matches all
}

// Option configures a Platform.
type Option func(*Platform)

// WithProjectKey sets the project key.
func WithProjectKey(key string) Option {
	return func(p *Platform) { p.ProjectKey = key }
}

// WithClient sets the accepted client credentials.
func WithClient(id, secret string) Option {
	return func(p *Platform) {
		p.ClientID = id
		p.ClientSecret = secret
	}
}

// WithTokenTTL sets the lifetime announced for issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(p *Platform) { p.TokenTTL = d }
}

// New starts a platform. It is closed when the test ends.
func New(t testing.TB, opts ...Option) *Platform {
	t.Helper()
	p := NewServer(opts...)
	t.Cleanup(p.Close)
	return p
}

// NewServer starts a platform the caller must Close.
func NewServer(opts ...Option) *Platform {
	p := &Platform{
		ProjectKey:   DefaultProjectKey,
		ClientID:     DefaultClientID,
		ClientSecret: DefaultClientSecret,
		TokenTTL:     DefaultTokenTTL,
		data:         make(map[string]map[string]map[string]any),
		order:        make(map[string][]string),
		tokens:       make(map[string]struct{}),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	p.server = httptest.NewServer(p.Router())
	return p
}

// Close shuts the server down.
func (p *Platform) Close() {
	p.server.Close()
}

// URL returns the API base URL.
func (p *Platform) URL() string {
	return p.server.URL
}

// TokenURL returns the token endpoint URL.
func (p *Platform) TokenURL() string {
	return p.server.URL + "/oauth/token"
}

// TokenRequests returns how many token requests were received.
func (p *Platform) TokenRequests() int {
	return int(p.tokenRequests.Load())
}

// Requests returns the API requests received so far.
func (p *Platform) Requests() []RecordedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RecordedRequest(nil), p.requests...)
}

// RevokeTokens invalidates every issued token.
func (p *Platform) RevokeTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = make(map[string]struct{})
}

// FailNext makes the next API request whose path contains match answer
// with status. An empty match applies to any request.
func (p *Platform) FailNext(match string, status int) {
	p.addFault(fault{kind: faultStatus, status: status, match: match})
}

// DropNext makes the next API request whose path contains match lose its
// connection without a response.
func (p *Platform) DropNext(match string) {
	p.addFault(fault{kind: faultDrop, match: match})
}

// DelayNext delays the next API request whose path contains match.
func (p *Platform) DelayNext(match string, d time.Duration) {
	p.addFault(fault{kind: faultDelay, delay: d, match: match})
}

func (p *Platform) addFault(f fault) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults = append(p.faults, f)
}

// takeFault removes and returns the first fault matching path.
func (p *Platform) takeFault(path string) (fault, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, f := range p.faults {
		if f.match == "" || strings.Contains(path, f.match) {
			p.faults = append(p.faults[:i], p.faults[i+1:]...)
			return f, true
		}
	}
	return fault{}, false
}

// Router returns the platform's HTTP handler.
func (p *Platform) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/oauth/token", p.handleToken)

	r.Route("/{project}", func(r chi.Router) {
		r.Use(p.record, p.authenticate, p.injectFaults)

		for _, name := range Resources {
			res := name
			r.Route("/"+res, func(r chi.Router) {
				r.Post("/", p.handleCreate(res))
				r.Get("/", p.handleQuery(res))
				r.Get("/{ref}", p.handleFetch(res))
				r.Post("/{ref}", p.handleUpdate(res))
				r.Delete("/{ref}", p.handleDelete(res))
			})
		}

		r.Route("/custom-objects", func(r chi.Router) {
			r.Post("/", p.handleCustomObjectUpsert)
			r.Get("/", p.handleQuery(customObjects))
			r.Get("/{container}", p.handleCustomObjectContainer)
			r.Get("/{container}/{key}", p.handleCustomObjectFetch)
			r.Delete("/{container}/{key}", p.handleCustomObjectDelete)
		})
	})
	return r
}

func (p *Platform) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.requests = append(p.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			CorrelationID: r.Header.Get("X-Correlation-ID"),
		})
		p.mu.Unlock()
		if id := r.Header.Get("X-Correlation-ID"); id != "" {
			w.Header().Set("X-Correlation-ID", id)
		} else {
			w.Header().Set("X-Correlation-ID", "platform-"+uuid.NewString())
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Platform) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		tok, ok := strings.CutPrefix(auth, "Bearer ")
		p.mu.Lock()
		_, valid := p.tokens[tok]
		p.mu.Unlock()
		if !ok || !valid {
			apierror.Write(w, apierror.InvalidToken())
			return
		}
		if chi.URLParam(r, "project") != p.ProjectKey {
			apierror.Write(w, apierror.New(http.StatusNotFound, "Project not found").
				Code(apierror.CodeResourceNotFound, "The project '"+chi.URLParam(r, "project")+"' does not exist.").
				Build())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Platform) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := p.takeFault(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		switch f.kind {
		case faultStatus:
			apierror.Write(w, apierror.New(f.status, http.StatusText(f.status)).
				Code(apierror.CodeGeneral, http.StatusText(f.status)).
				Build())
		case faultDrop:
			hj, ok := w.(http.Hijacker)
			if !ok {
				apierror.Write(w, apierror.Internal("connection cannot be dropped"))
				return
			}
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
		case faultDelay:
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		}
	})
}

// handleToken issues client_credentials tokens to the configured client.
func (p *Platform) handleToken(w http.ResponseWriter, r *http.Request) {
	p.tokenRequests.Add(1)

	id, secret, ok := r.BasicAuth()
	if !ok || id != p.ClientID || secret != p.ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"statusCode":        http.StatusUnauthorized,
			"message":           "Please provide valid client credentials using HTTP Basic Authentication.",
			"error":             apierror.CodeInvalidClient,
			"error_description": "Please provide valid client credentials using HTTP Basic Authentication.",
		})
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"statusCode":        http.StatusBadRequest,
			"message":           "Unsupported grant type.",
			"error":             "unsupported_grant_type",
			"error_description": "Unsupported grant type.",
		})
		return
	}

	scope := r.PostForm.Get("scope")
	if scope == "" {
		scope = "manage_project:" + p.ProjectKey
	}
	token := uuid.NewString()
	p.mu.Lock()
	p.tokens[token] = struct{}{}
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(p.TokenTTL / time.Second),
		"scope":        scope,
	})
}
