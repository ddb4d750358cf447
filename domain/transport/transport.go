// Package transport provides request/response value types exchanged with
// the HTTP adapter.
package transport

import (
	"net/url"
	"strings"
	"time"
)

// Request represents an outgoing API call (value type).
// It is produced by the request builders and handed to an adapter.
type Request struct {
	// HTTP request details
	Method  string
	Path    string // relative to the adapter base URL, e.g. "/my-project/stores"
	Query   url.Values
	Headers map[string]string
	Body    []byte

	// Timeout bounds this call. Zero uses the adapter default.
	Timeout time.Duration

	// Metadata
	CorrelationID string
}

// Response represents a raw API response (value type).
type Response struct {
	// HTTP response
	Status  int
	Headers map[string]string
	Body    []byte

	// Metadata (for logging)
	LatencyMs     int64
	CorrelationID string
}

// Result is a response or a transport failure, one slot of a batch.
type Result struct {
	Response *Response
	Err      error
}

// URL joins base and the request path and encodes the query.
func (r Request) URL(base string) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(r.Path, "/")
	if q := r.Query.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// Header returns a request header, matching the name case-insensitively.
func (r Request) Header(name string) string {
	return lookup(r.Headers, name)
}

// WithHeader returns a copy of r with the header set.
func (r Request) WithHeader(name, value string) Request {
	h := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		h[k] = v
	}
	h[name] = value
	r.Headers = h
	return r
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Header returns a response header, matching the name case-insensitively.
func (r *Response) Header(name string) string {
	if r == nil {
		return ""
	}
	return lookup(r.Headers, name)
}

func lookup(h map[string]string, name string) string {
	if v, ok := h[name]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
