package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
		wantErrors  int
	}{
		{
			name:        "platform document",
			status:      400,
			body:        `{"statusCode":400,"message":"name missing","errors":[{"code":"RequiredField","message":"name missing","field":"name"}]}`,
			wantMessage: "name missing",
			wantCode:    CodeRequiredField,
			wantErrors:  1,
		},
		{
			name:        "oauth document",
			status:      401,
			body:        `{"error":"invalid_client","error_description":"Please provide valid client credentials."}`,
			wantMessage: "Please provide valid client credentials.",
			wantCode:    CodeInvalidClient,
			wantErrors:  1,
		},
		{
			name:        "top-level code only",
			status:      400,
			body:        `{"code":"InvalidInput","message":"bad input"}`,
			wantMessage: "bad input",
			wantCode:    CodeInvalidInput,
		},
		{
			name:        "message only",
			status:      500,
			body:        `{"statusCode":500,"message":"boom"}`,
			wantMessage: "boom",
		},
		{
			name:        "empty body",
			status:      503,
			body:        "",
			wantMessage: "Service Unavailable",
		},
		{
			name:        "html body",
			status:      502,
			body:        "<html>bad gateway</html>",
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Parse(tt.status, []byte(tt.body), "corr-1")
			if e.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", e.StatusCode, tt.status)
			}
			if e.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMessage)
			}
			if e.Code() != tt.wantCode {
				t.Errorf("Code = %q, want %q", e.Code(), tt.wantCode)
			}
			if len(e.Errors) != tt.wantErrors {
				t.Errorf("len(Errors) = %d, want %d", len(e.Errors), tt.wantErrors)
			}
			if e.CorrelationID != "corr-1" {
				t.Errorf("CorrelationID = %q", e.CorrelationID)
			}
		})
	}
}

func TestConflict(t *testing.T) {
	body := Encode(Conflict(3, 5))
	e := Parse(409, body, "")

	if !e.IsConflict() {
		t.Fatal("IsConflict = false")
	}
	v, ok := e.CurrentVersion()
	if !ok || v != 5 {
		t.Errorf("CurrentVersion = %d, %v; want 5", v, ok)
	}

	var err error = fmt.Errorf("update store: %w", e)
	if !errors.Is(err, ErrConflict) || !IsConflict(err) {
		t.Error("wrapped error should match ErrConflict")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("conflict should not match ErrNotFound")
	}
	got, ok := AsError(err)
	if !ok || got != e {
		t.Error("AsError should return the wrapped *Error")
	}
}

func TestConflict_TopLevelCode(t *testing.T) {
	e := Parse(400, []byte(`{"statusCode":400,"code":"ConcurrentModification","message":"stale version"}`), "")

	if !e.HasCode(CodeConcurrentModification) {
		t.Error("HasCode(ConcurrentModification) = false")
	}
	if !errors.Is(e, ErrConflict) {
		t.Error("top-level ConcurrentModification should match ErrConflict")
	}
	if _, ok := e.CurrentVersion(); ok {
		t.Error("CurrentVersion reported without an entry")
	}
}

func TestCurrentVersion_Zero(t *testing.T) {
	e := Parse(409, Encode(Conflict(1, 0)), "")

	v, ok := e.CurrentVersion()
	if !ok || v != 0 {
		t.Errorf("CurrentVersion = %d, %v; want 0, true", v, ok)
	}
}

func TestEncode_DocumentCode(t *testing.T) {
	e := Parse(404, Encode(NotFound("Store", "s1")), "")
	if e.ErrorCode != CodeResourceNotFound {
		t.Errorf("ErrorCode = %q, want %q", e.ErrorCode, CodeResourceNotFound)
	}
}

func TestSentinels(t *testing.T) {
	if !IsNotFound(NotFound("Store", "s1")) {
		t.Error("NotFound should match ErrNotFound")
	}
	if !errors.Is(InvalidToken(), ErrUnauthorized) {
		t.Error("InvalidToken should match ErrUnauthorized")
	}
	if errors.Is(Internal(""), ErrConflict) {
		t.Error("500 should not match ErrConflict")
	}
}

func TestBuilder(t *testing.T) {
	e := New(400, "bad").
		Field("key", CodeInvalidField, "bad key").
		InvalidValue("x y").
		Code(CodeGeneral, "other").
		CorrelationID("c").
		Build()

	want := []FieldError{
		{Code: CodeInvalidField, Message: "bad key", Field: "key", InvalidValue: "x y"},
		{Code: CodeGeneral, Message: "other"},
	}
	if diff := cmp.Diff(want, e.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
	if fe := e.FieldErrors(); len(fe) != 1 || fe[0].Field != "key" {
		t.Errorf("FieldErrors = %v", fe)
	}
	if got := e.Error(); got != "api error 400 InvalidField: bad (correlation id c)" {
		t.Errorf("Error() = %q", got)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNetworkError(t *testing.T) {
	var netErr net.Error = timeoutErr{}
	err := fmt.Errorf("execute: %w", &NetworkError{Method: "GET", URL: "http://x", Err: netErr})

	if !IsNetwork(err) {
		t.Fatal("IsNetwork = false")
	}
	var ne *NetworkError
	errors.As(err, &ne)
	if !ne.Timeout() {
		t.Error("Timeout = false, want true")
	}

	cancelled := &NetworkError{Method: "GET", URL: "http://x", Err: context.Canceled}
	if cancelled.Timeout() {
		t.Error("cancellation is not a timeout")
	}
	if !errors.Is(cancelled, context.Canceled) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if IsNetwork(NotFound("", "x")) {
		t.Error("api errors are not network errors")
	}
}
