package http

import (
	"encoding/json"
	"strings"
	"time"
)

// Response is the result of one exchange.
type Response struct {
	// StatusCode is the HTTP status reported by the transport.
	StatusCode int

	// Headers holds every received header line in arrival order. A later
	// line with the same key overwrites the earlier value. Lines without a
	// ':' separator (the status line) carry the value HeaderPresent.
	Headers *Params

	// Body is the raw response body. It is empty for HEAD.
	Body []byte

	// Elapsed is the wall-clock duration of the exchange.
	Elapsed time.Duration
}

func newResponse() *Response {
	return &Response{Headers: NewParams()}
}

// Header returns the value of the named header. An exact match wins;
// otherwise the last case-insensitive match is returned.
func (r *Response) Header(key string) string {
	if v, ok := r.Headers.Get(key); ok {
		return v
	}
	var found string
	r.Headers.Each(func(k, v string) {
		if strings.EqualFold(k, key) {
			found = v
		}
	})
	return found
}

// StatusLine returns the last received line that starts with "HTTP/", or "".
func (r *Response) StatusLine() string {
	var line string
	r.Headers.Each(func(k, v string) {
		if v == HeaderPresent && strings.HasPrefix(k, "HTTP/") {
			line = k
		}
	})
	return line
}

// BodyString returns the body as a string.
func (r *Response) BodyString() string {
	return string(r.Body)
}

// JSON unmarshals the body into v.
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// IsSuccess returns true if the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError returns true if the status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}
