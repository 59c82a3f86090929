package pipedrive

import (
	"fmt"
	"strings"
)

// APIError is the single error type every failed Pipedrive call collapses
// into, whether the failure was a transport error, an HTTP error status, or
// a 200 response carrying "success": false.
type APIError struct {
	// Message is the human-readable failure description.
	Message string
	// StatusCode is the HTTP status, or 0 when the request never produced a
	// response (network error, timeout).
	StatusCode int
	// ErrorInfo carries the API's supplementary error_info field, if any.
	ErrorInfo string
	// Response holds the parsed response body for diagnostics, or a
	// {"raw_error": ...} wrapper when the body was not valid JSON.
	Response map[string]any
}

func (e *APIError) Error() string {
	var details []string
	if e.StatusCode != 0 {
		details = append(details, fmt.Sprintf("status: %d", e.StatusCode))
	}
	if e.ErrorInfo != "" {
		details = append(details, "info: "+e.ErrorInfo)
	}
	if len(details) == 0 {
		return "pipedrive: " + e.Message
	}
	return fmt.Sprintf("pipedrive: %s (%s)", e.Message, strings.Join(details, ", "))
}
