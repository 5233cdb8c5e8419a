package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a classified fetch failure carrying an HTTP-style status code
// that the hosting layer can surface directly.
type Error struct {
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified fetch error.
func NewError(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// invalidURL reports a provider URL the normalizers could not make sense of.
func invalidURL(format string, args ...interface{}) *Error {
	return NewError(http.StatusBadRequest, format, args...)
}

// unreachable reports a transport-level failure reaching the remote host.
func unreachable(url string, cause error) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("unable to retrieve resource at %s", url),
		Cause:   cause,
	}
}

// StatusOf extracts the HTTP-style status code from an error. Unclassified
// errors map to 500.
func StatusOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Status
	}
	return http.StatusInternalServerError
}
