package fault

import (
	"fmt"
	"net/http"
)

// FromHTTPStatus maps an HTTP error status from a remote service to
// the matching category. Client-side rejections (bad voice, bad model)
// count as configuration problems, server failures as network ones.
func FromHTTPStatus(service string, status int, msg string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Service: service, Message: msg}
	case http.StatusTooManyRequests:
		return &RateLimitError{Service: service}
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return &ConfigurationError{Setting: service, Message: msg}
	default:
		return &NetworkError{Service: service, Err: fmt.Errorf("status %d: %s", status, msg)}
	}
}
