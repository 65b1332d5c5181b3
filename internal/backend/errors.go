package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer of the remote storefront API.
type APIError struct {
	Operation string
	Status    int
	Message   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: remote status %d: %s", e.Operation, e.Status, e.Message)
}

func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

func (e *APIError) Forbidden() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func (e *APIError) temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Forbidden()
}

var errorMessagePaths = []string{"error.message", "error", "message", "detail"}

// errorMessage extracts a human readable message from an error response body.
func errorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range errorMessagePaths {
			res := gjson.GetBytes(body, path)
			if res.Type == gjson.String && res.Str != "" {
				return res.Str
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && !gjson.ValidBytes(body) {
		return text
	}

	return http.StatusText(status)
}
