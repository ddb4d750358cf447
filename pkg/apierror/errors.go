package apierror

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Builder provides a fluent API for building Error documents.
type Builder struct {
	err Error
}

// New creates a Builder with the given status and message.
func New(status int, message string) *Builder {
	return &Builder{err: Error{StatusCode: status, Message: message}}
}

// Newf creates a Builder with a formatted message.
func Newf(status int, format string, args ...any) *Builder {
	return New(status, fmt.Sprintf(format, args...))
}

// Code adds an error entry without a field.
func (b *Builder) Code(code, message string) *Builder {
	b.err.Errors = append(b.err.Errors, FieldError{Code: code, Message: message})
	return b
}

// Field adds an error entry for a field.
func (b *Builder) Field(field, code, message string) *Builder {
	b.err.Errors = append(b.err.Errors, FieldError{Code: code, Message: message, Field: field})
	return b
}

// InvalidValue sets the offending value on the last entry.
func (b *Builder) InvalidValue(v any) *Builder {
	if n := len(b.err.Errors); n > 0 {
		b.err.Errors[n-1].InvalidValue = v
	}
	return b
}

// CurrentVersion sets the server version on the last entry.
func (b *Builder) CurrentVersion(v int64) *Builder {
	if n := len(b.err.Errors); n > 0 {
		b.err.Errors[n-1].CurrentVersion = &v
	}
	return b
}

// CorrelationID sets the correlation id.
func (b *Builder) CorrelationID(id string) *Builder {
	b.err.CorrelationID = id
	return b
}

// Build returns the constructed Error. The document code defaults to the
// code of the first entry.
func (b *Builder) Build() *Error {
	e := b.err
	e.Errors = append([]FieldError(nil), b.err.Errors...)
	if e.ErrorCode == "" && len(e.Errors) > 0 {
		e.ErrorCode = e.Errors[0].Code
	}
	return &e
}

// Common error constructors

// NotFound creates a 404 error for a resource.
func NotFound(resourceType, id string) *Error {
	msg := fmt.Sprintf("The Resource with ID '%s' was not found.", id)
	if resourceType != "" {
		msg = fmt.Sprintf("The %s with ID '%s' was not found.", resourceType, id)
	}
	return New(404, msg).Code(CodeResourceNotFound, msg).Build()
}

// Conflict creates a 409 error for a version mismatch.
func Conflict(expected, current int64) *Error {
	msg := fmt.Sprintf("Object version %d does not match current version %d.", expected, current)
	return New(409, msg).
		Code(CodeConcurrentModification, msg).
		CurrentVersion(current).
		Build()
}

// InvalidField creates a 400 error for a field.
func InvalidField(field, message string) *Error {
	return New(400, message).Field(field, CodeInvalidField, message).Build()
}

// RequiredField creates a 400 error for a missing field.
func RequiredField(field string) *Error {
	msg := fmt.Sprintf("A value is required for field %s.", field)
	return New(400, msg).Field(field, CodeRequiredField, msg).Build()
}

// InvalidOperation creates a 400 error for an unsupported operation.
func InvalidOperation(message string) *Error {
	return New(400, message).Code(CodeInvalidOperation, message).Build()
}

// InvalidToken creates a 401 error.
func InvalidToken() *Error {
	msg := "invalid_token"
	return New(401, msg).Code(CodeInvalidToken, msg).Build()
}

// Internal creates a 500 error.
func Internal(detail string) *Error {
	if detail == "" {
		detail = "An internal error occurred."
	}
	return New(500, detail).Code(CodeGeneral, detail).Build()
}

// oauthError is the error document of the token endpoint.
type oauthError struct {
	StatusCode       int          `json:"statusCode"`
	Code             string       `json:"code"`
	Message          string       `json:"message"`
	Error            string       `json:"error"`
	ErrorDescription string       `json:"error_description"`
	Errors           []FieldError `json:"errors"`
}

// Parse decodes an error document. Token endpoint errors of the form
// {"error", "error_description"} are normalized into the same structure.
// Bodies that cannot be decoded yield an error carrying the status text.
func Parse(status int, body []byte, correlationID string) *Error {
	e := &Error{StatusCode: status, CorrelationID: correlationID}

	var doc oauthError
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if len(bytes.TrimSpace(body)) == 0 || dec.Decode(&doc) != nil {
		e.Message = http.StatusText(status)
		if e.Message == "" {
			e.Message = string(bytes.TrimSpace(body))
		}
		return e
	}

	e.ErrorCode = doc.Code
	e.Message = doc.Message
	e.Errors = doc.Errors
	if doc.Error != "" && len(e.Errors) == 0 {
		msg := doc.ErrorDescription
		if msg == "" {
			msg = doc.Error
		}
		e.Errors = []FieldError{{Code: doc.Error, Message: msg}}
		if e.ErrorCode == "" {
			e.ErrorCode = doc.Error
		}
		if e.Message == "" {
			e.Message = msg
		}
	}
	if e.Message == "" {
		if len(e.Errors) > 0 {
			e.Message = e.Errors[0].Message
		} else {
			e.Message = http.StatusText(status)
		}
	}
	return e
}

// Encode returns the JSON error document for e.
func Encode(e *Error) []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte(fmt.Sprintf(`{"statusCode":%d,"message":%q}`, e.StatusCode, e.Message))
	}
	return data
}
