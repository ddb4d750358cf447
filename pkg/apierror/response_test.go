package apierror

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWrite(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, Conflict(3, 4))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("Content-Type = %q", ct)
	}

	e := Parse(w.Code, w.Body.Bytes(), "")
	if !e.IsConflict() {
		t.Errorf("round-tripped error is not a conflict: %v", e)
	}
	if v, ok := e.CurrentVersion(); !ok || v != 4 {
		t.Errorf("CurrentVersion = %d, %v", v, ok)
	}
}

func TestWrite_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
