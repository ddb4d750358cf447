// Package apierror provides the error taxonomy of the commerce API: server
// rejections decoded from error documents and transport failures.
package apierror

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by errors.Is against an *Error.
var (
	ErrConflict     = errors.New("concurrent modification")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error codes used by the platform.
const (
	CodeConcurrentModification = "ConcurrentModification"
	CodeResourceNotFound       = "ResourceNotFound"
	CodeInvalidInput           = "InvalidInput"
	CodeInvalidField           = "InvalidField"
	CodeRequiredField          = "RequiredField"
	CodeInvalidOperation       = "InvalidOperation"
	CodeInvalidToken           = "invalid_token"
	CodeInvalidClient          = "invalid_client"
	CodeInsufficientScope      = "insufficient_scope"
	CodeGeneral                = "General"
)

// Error represents an API error document.
type Error struct {
	StatusCode int          `json:"statusCode"`
	ErrorCode  string       `json:"code,omitempty"`
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors,omitempty"`

	// Populated from the response, not the document body.
	CorrelationID string `json:"-"`
}

// FieldError represents one entry of the errors array.
type FieldError struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	Field          string `json:"field,omitempty"`
	InvalidValue   any    `json:"invalidValue,omitempty"`
	CurrentVersion *int64 `json:"currentVersion,omitempty"`
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error %d", e.StatusCode)
	if code := e.Code(); code != "" {
		fmt.Fprintf(&b, " %s", code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.CorrelationID != "" {
		fmt.Fprintf(&b, " (correlation id %s)", e.CorrelationID)
	}
	return b.String()
}

// Is matches the package sentinels by status code or error code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConflict:
		return e.IsConflict()
	case ErrNotFound:
		return e.StatusCode == 404 || e.HasCode(CodeResourceNotFound)
	case ErrUnauthorized:
		return e.StatusCode == 401
	}
	return false
}

// Code returns the code of the first error entry, or the document's
// top-level code when there are no entries.
func (e *Error) Code() string {
	if len(e.Errors) == 0 || e.Errors[0].Code == "" {
		return e.ErrorCode
	}
	return e.Errors[0].Code
}

// HasCode reports whether the document or any error entry carries code.
func (e *Error) HasCode(code string) bool {
	if e.ErrorCode == code {
		return true
	}
	for _, fe := range e.Errors {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// IsConflict reports a version mismatch.
func (e *Error) IsConflict() bool {
	return e.StatusCode == 409 || e.HasCode(CodeConcurrentModification)
}

// CurrentVersion returns the server's current version reported with a
// conflict, if any.
func (e *Error) CurrentVersion() (int64, bool) {
	for _, fe := range e.Errors {
		if fe.CurrentVersion != nil {
			return *fe.CurrentVersion, true
		}
	}
	return 0, false
}

// FieldErrors returns the entries that name a field.
func (e *Error) FieldErrors() []FieldError {
	var out []FieldError
	for _, fe := range e.Errors {
		if fe.Field != "" {
			out = append(out, fe)
		}
	}
	return out
}

// NetworkError reports a transport failure: no response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// AsError returns the *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsConflict reports whether err is a version conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
