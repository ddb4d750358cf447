package apierror

import "net/http"

// ContentType is the media type of error documents.
const ContentType = "application/json"

// Write writes e as an error response. The status is taken from e,
// defaulting to 500.
func Write(w http.ResponseWriter, e *Error) {
	if e == nil {
		e = Internal("")
	}
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	w.Write(Encode(e))
}
