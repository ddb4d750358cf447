package model

import (
	"golang.org/x/text/language"
)

// Context is the ambient configuration shared by an object graph.
// A Context is never modified after construction; With returns a copy.
type Context struct {
	locale       language.Tag
	languages    []language.Tag
	graceful     bool
	errorHandler func(error)
	baseURI      string
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLocale sets the locale used for formatting and localized lookups.
func WithLocale(tag language.Tag) ContextOption {
	return func(c *Context) { c.locale = tag }
}

// WithLanguages sets the preferred languages, most preferred first.
func WithLanguages(tags ...language.Tag) ContextOption {
	return func(c *Context) { c.languages = append([]language.Tag(nil), tags...) }
}

// WithGraceful makes materialization problems go to the error handler
// instead of failing the access.
func WithGraceful(graceful bool) ContextOption {
	return func(c *Context) { c.graceful = graceful }
}

// WithErrorHandler sets the callback receiving reported errors.
func WithErrorHandler(fn func(error)) ContextOption {
	return func(c *Context) { c.errorHandler = fn }
}

// WithBaseURI sets the API base URI models may use to build links.
func WithBaseURI(uri string) ContextOption {
	return func(c *Context) { c.baseURI = uri }
}

// NewContext creates a context. The zero configuration has an undetermined
// locale, no languages and strict error handling.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{locale: language.Und}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with opts applied.
func (c *Context) With(opts ...ContextOption) *Context {
	var cp Context
	if c != nil {
		cp = *c
		cp.languages = append([]language.Tag(nil), c.languages...)
	} else {
		cp.locale = language.Und
	}
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Locale returns the configured locale.
func (c *Context) Locale() language.Tag {
	if c == nil {
		return language.Und
	}
	return c.locale
}

// Languages returns the preferred languages.
func (c *Context) Languages() []language.Tag {
	if c == nil {
		return nil
	}
	return c.languages
}

// Graceful reports whether materialization errors are reported instead of returned.
func (c *Context) Graceful() bool {
	return c != nil && c.graceful
}

// BaseURI returns the configured base URI.
func (c *Context) BaseURI() string {
	if c == nil {
		return ""
	}
	return c.baseURI
}

// Report passes err to the error handler, if any.
func (c *Context) Report(err error) {
	if c == nil || c.errorHandler == nil || err == nil {
		return
	}
	c.errorHandler(err)
}

// preferred returns the language preference list: the locale first, then
// the configured languages.
func (c *Context) preferred() []language.Tag {
	if c == nil {
		return nil
	}
	tags := make([]language.Tag, 0, len(c.languages)+1)
	if c.locale != language.Und {
		tags = append(tags, c.locale)
	}
	return append(tags, c.languages...)
}

// contextRef is the shared slot through which every object of one graph
// sees the current Context.
type contextRef struct {
	ctx *Context
}

func newRef(ctx *Context) *contextRef {
	if ctx == nil {
		ctx = NewContext()
	}
	return &contextRef{ctx: ctx}
}
