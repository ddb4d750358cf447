// Package request builds API requests and maps their responses onto
// schema-backed models.
//
// A Request is built without I/O, converted once to a transport request
// and mapped once: Built -> Sent -> Mapped or Failed.
package request

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/artpar/commercekit/core/model"
	"github.com/artpar/commercekit/core/schema"
	"github.com/artpar/commercekit/domain/action"
	"github.com/artpar/commercekit/domain/transport"
)

// Errors returned by request building and mapping.
var (
	ErrRequestConsumed    = errors.New("request already consumed")
	ErrActionNotSupported = errors.New("update action not supported by resource")
	ErrNoEndpoint         = errors.New("endpoint has no result entity")
)

// Kind distinguishes single-object and paged results.
type Kind int

const (
	Single Kind = iota
	Paged
)

// State is the lifecycle position of a Request.
type State int

const (
	Built State = iota
	Sent
	Mapped
	Failed
)

func (s State) String() string {
	switch s {
	case Built:
		return "built"
	case Sent:
		return "sent"
	case Mapped:
		return "mapped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Endpoint describes one resource collection of the API.
type Endpoint struct {
	// Path below the project, e.g. "stores" or "orders/edits".
	Path string
	// Entity of single results.
	Entity *schema.Entity
	// Resource family for update actions; empty when updates take no actions.
	Resource action.Resource
}

// Request is a single API call under construction.
type Request struct {
	method   string
	endpoint Endpoint
	segments []string
	where    []string
	params   url.Values
	body     any
	kind     Kind
	id       string
	key      string
	version  int64
	actions  []action.Action
	timeout  time.Duration
	ctx      *model.Context

	state State
	err   error
}

func newRequest(method string, ep Endpoint, kind Kind) *Request {
	r := &Request{
		method:   method,
		endpoint: ep,
		params:   url.Values{},
		kind:     kind,
	}
	if ep.Entity == nil {
		r.err = fmt.Errorf("%w: %s", ErrNoEndpoint, ep.Path)
	}
	return r
}

// New creates a request against the endpoint path extended by segments.
func New(method string, ep Endpoint, segments ...string) *Request {
	r := newRequest(method, ep, Single)
	r.segments = append(r.segments, segments...)
	return r
}

// Create posts a draft.
func Create(ep Endpoint, draft model.Model) *Request {
	r := newRequest(http.MethodPost, ep, Single)
	if draft == nil || draft.Object() == nil {
		r.fail(fmt.Errorf("create %s: %w", ep.Path, model.ErrExpectsParameter))
		return r
	}
	r.body = draft
	return r
}

// FetchByID gets a resource by id.
func FetchByID(ep Endpoint, id string) *Request {
	r := newRequest(http.MethodGet, ep, Single)
	r.id = id
	r.segments = []string{id}
	return r
}

// FetchByKey gets a resource by key.
func FetchByKey(ep Endpoint, key string) *Request {
	r := newRequest(http.MethodGet, ep, Single)
	r.key = key
	r.segments = []string{"key=" + key}
	return r
}

// Query lists resources matching predicates.
func Query(ep Endpoint) *Request {
	return newRequest(http.MethodGet, ep, Paged)
}

// UpdateByID updates a resource by id at the expected version.
func UpdateByID(ep Endpoint, id string, version int64) *Request {
	r := newRequest(http.MethodPost, ep, Single)
	r.id = id
	r.version = version
	r.segments = []string{id}
	return r
}

// UpdateByKey updates a resource by key at the expected version.
func UpdateByKey(ep Endpoint, key string, version int64) *Request {
	r := newRequest(http.MethodPost, ep, Single)
	r.key = key
	r.version = version
	r.segments = []string{"key=" + key}
	return r
}

// DeleteByID deletes a resource by id at the expected version.
func DeleteByID(ep Endpoint, id string, version int64) *Request {
	r := newRequest(http.MethodDelete, ep, Single)
	r.id = id
	r.segments = []string{id}
	r.params.Set("version", strconv.FormatInt(version, 10))
	r.version = version
	return r
}

// DeleteByKey deletes a resource by key at the expected version.
func DeleteByKey(ep Endpoint, key string, version int64) *Request {
	r := newRequest(http.MethodDelete, ep, Single)
	r.key = key
	r.segments = []string{"key=" + key}
	r.params.Set("version", strconv.FormatInt(version, 10))
	r.version = version
	return r
}

// Where adds a query predicate. Predicates are passed through unchanged.
func (r *Request) Where(predicate string) *Request {
	r.where = append(r.where, predicate)
	return r
}

// Sort adds a sort expression, e.g. "createdAt desc".
func (r *Request) Sort(expr string) *Request {
	r.params.Add("sort", expr)
	return r
}

// Limit sets the page size.
func (r *Request) Limit(n int) *Request {
	r.params.Set("limit", strconv.Itoa(n))
	return r
}

// Offset sets the page offset.
func (r *Request) Offset(n int) *Request {
	r.params.Set("offset", strconv.Itoa(n))
	return r
}

// WithTotal controls whether the total count is computed.
func (r *Request) WithTotal(total bool) *Request {
	r.params.Set("withTotal", strconv.FormatBool(total))
	return r
}

// Expand adds a reference expansion path.
func (r *Request) Expand(path string) *Request {
	r.params.Add("expand", path)
	return r
}

// Param sets an arbitrary query parameter.
func (r *Request) Param(name, value string) *Request {
	r.params.Set(name, value)
	return r
}

// Timeout bounds the call. Zero uses the adapter default.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// WithContext sets the model context used when mapping the response.
func (r *Request) WithContext(ctx *model.Context) *Request {
	r.ctx = ctx
	return r
}

// AddAction appends an update action. Actions the endpoint's resource does
// not accept fail the request with ErrActionNotSupported.
func (r *Request) AddAction(a action.Action) *Request {
	if r.err != nil {
		return r
	}
	if err := action.Validate(a); err != nil {
		r.err = err
		return r
	}
	if r.endpoint.Resource == "" || !a.Supports(r.endpoint.Resource) {
		r.err = fmt.Errorf("%w: %s on %s", ErrActionNotSupported, a.ActionName(), r.endpoint.Path)
		return r
	}
	r.actions = append(r.actions, a)
	return r
}

// SetActions replaces the update actions.
func (r *Request) SetActions(actions ...action.Action) *Request {
	r.actions = nil
	for _, a := range actions {
		r.AddAction(a)
	}
	return r
}

// Err returns the first building error.
func (r *Request) Err() error {
	return r.err
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// Endpoint returns the endpoint.
func (r *Request) Endpoint() Endpoint { return r.endpoint }

// Kind returns the result kind.
func (r *Request) Kind() Kind { return r.kind }

// ID returns the addressed id, if any.
func (r *Request) ID() string { return r.id }

// Key returns the addressed key, if any.
func (r *Request) Key() string { return r.key }

// Version returns the expected version of updates and deletes.
func (r *Request) Version() int64 { return r.version }

// Actions returns the update actions.
func (r *Request) Actions() []action.Action { return r.actions }

// State returns the lifecycle state.
func (r *Request) State() State { return r.state }

// Context returns the model context, nil if none was set.
func (r *Request) Context() *model.Context { return r.ctx }

// Path returns the path relative to the project.
func (r *Request) Path() string {
	parts := []string{strings.Trim(r.endpoint.Path, "/")}
	for _, s := range r.segments {
		parts = append(parts, url.PathEscape(s))
	}
	return "/" + strings.Join(parts, "/")
}

// Query returns the encoded query parameters.
func (r *Request) Query() url.Values {
	q := url.Values{}
	for k, v := range r.params {
		q[k] = append([]string(nil), v...)
	}
	for _, w := range r.where {
		q.Add("where", w)
	}
	return q
}

func (r *Request) String() string {
	s := r.method + " " + r.Path()
	if q := r.Query().Encode(); q != "" {
		s += "?" + q
	}
	return s
}

// HTTPRequest freezes the request and converts it to a transport request.
// It can be called once.
func (r *Request) HTTPRequest() (transport.Request, error) {
	if r.state != Built {
		return transport.Request{}, fmt.Errorf("%w: %s (%s)", ErrRequestConsumed, r, r.state)
	}
	if r.err != nil {
		r.state = Failed
		return transport.Request{}, r.err
	}

	body, err := r.encodeBody()
	if err != nil {
		r.state = Failed
		return transport.Request{}, err
	}

	headers := map[string]string{"Accept": "application/json"}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}

	r.state = Sent
	return transport.Request{
		Method:  r.method,
		Path:    r.Path(),
		Query:   r.Query(),
		Headers: headers,
		Body:    body,
		Timeout: r.timeout,
	}, nil
}

type updateBody struct {
	Version int64           `json:"version"`
	Actions []action.Action `json:"actions"`
}

func (r *Request) encodeBody() ([]byte, error) {
	switch {
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", r.endpoint.Path, err)
		}
		return data, nil
	case r.method == http.MethodPost && r.kind == Single && (r.id != "" || r.key != ""):
		actions := r.actions
		if actions == nil {
			actions = []action.Action{}
		}
		data, err := json.Marshal(updateBody{Version: r.version, Actions: actions})
		if err != nil {
			return nil, fmt.Errorf("encode %s update: %w", r.endpoint.Path, err)
		}
		return data, nil
	}
	return nil, nil
}

func (r *Request) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// WithBody sets a JSON body for requests built with New.
func (r *Request) WithBody(v any) *Request {
	r.body = v
	return r
}
