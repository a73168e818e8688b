package httpclient

import (
	"context"
	"io"
	"net/http"
)

// HTTPRequest is a single call made through HTTPClient.Do
type HTTPRequest struct {
	URL     string
	Method  string // GET when empty
	Headers map[string]string
	Body    io.Reader
	Context context.Context
}

// HTTPResponse holds a fully read response
type HTTPResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *HTTPResponse) IsSuccess() bool {
	return r != nil && r.StatusCode/100 == 2
}
