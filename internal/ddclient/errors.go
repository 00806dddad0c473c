package ddclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the shape every failed vendor call collapses into. StatusCode
// is the HTTP status the vendor reported, defaulting to 500 when the failure
// happened before a response existed. Validation failures are plain errors,
// not APIErrors.
type APIError struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// newAPIError wraps a vendor failure, taking the status from the HTTP
// response when one was received.
func newAPIError(op string, resp *http.Response, cause error) *APIError {
	status := http.StatusInternalServerError
	if resp != nil && resp.StatusCode != 0 {
		status = resp.StatusCode
	}
	return &APIError{
		Message:    fmt.Sprintf("failed to %s", op),
		StatusCode: status,
		Cause:      cause,
	}
}

// StatusCode extracts the vendor HTTP status from an error chain. Zero means
// the error was local (validation) and carries no status.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
