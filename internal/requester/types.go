package requester

import (
	"fmt"
	"net/http"
	"net/url"
)

// Request describes a call to the provider API
type Request struct {
	// Operation names the call in logs and metrics
	Operation string
	Method    string
	Path      string
	Query     url.Values
	// Body is encoded as JSON when non-nil
	Body interface{}
	Auth AuthManager
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// StatusError is returned for provider responses with a 4xx/5xx status
type StatusError struct {
	Operation  string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, string(e.Body))
}
