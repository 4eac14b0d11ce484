package http

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CallConfig describes a typed call: the method, an optional body and an
// optional content type.
type CallConfig struct {
	Method      Method
	Body        []byte
	ContentType string
}

// Call is a Request that carries its own body and content type, so it can
// be performed with just a timeout. ID and CreatedAt are for the caller's
// bookkeeping and are never transmitted.
type Call struct {
	*Request

	ID        string
	CreatedAt time.Time

	body        []byte
	contentType string
}

// NewCall validates cfg and creates the call. GET and HEAD calls must not
// have a body. The body is copied.
func NewCall(t Transport, host, path string, cfg CallConfig) (*Call, error) {
	if cfg.Body != nil && !cfg.Method.CarriesBody() {
		return nil, fmt.Errorf("%w: %s", ErrBodyNotAllowed, cfg.Method)
	}

	req, err := NewRequest(t, host, path, cfg.Method)
	if err != nil {
		return nil, err
	}

	var body []byte
	if cfg.Body != nil {
		body = append([]byte{}, cfg.Body...)
	}

	return &Call{
		Request:     req,
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		body:        body,
		contentType: cfg.ContentType,
	}, nil
}

// Get creates a GET call.
func Get(t Transport, host, path string) (*Call, error) {
	return NewCall(t, host, path, CallConfig{Method: MethodGet})
}

// Head creates a HEAD call.
func Head(t Transport, host, path string) (*Call, error) {
	return NewCall(t, host, path, CallConfig{Method: MethodHead})
}

// Post creates a POST call with body.
func Post(t Transport, host, path string, body []byte) (*Call, error) {
	return NewCall(t, host, path, CallConfig{Method: MethodPost, Body: body})
}

// Put creates a PUT call whose body is streamed on upload.
func Put(t Transport, host, path string, body []byte) (*Call, error) {
	return NewCall(t, host, path, CallConfig{Method: MethodPut, Body: body})
}

// Delete creates a DELETE call. body may be nil.
func Delete(t Transport, host, path string, body []byte) (*Call, error) {
	return NewCall(t, host, path, CallConfig{Method: MethodDelete, Body: body})
}

// Body returns the call's body.
func (c *Call) Body() []byte { return c.body }

// ContentType returns the declared content type.
func (c *Call) ContentType() string { return c.contentType }

// SetContentType declares the content type sent with every exchange.
func (c *Call) SetContentType(contentType string) {
	c.contentType = contentType
}

// Perform runs one exchange with the call's body and content type.
func (c *Call) Perform(ctx context.Context, timeout time.Duration) (*Response, error) {
	return c.Request.Perform(ctx, c.body, c.contentType, timeout)
}

// Clone copies the call onto a new handle. The clone is a separate call
// with its own ID and creation time.
func (c *Call) Clone() (*Call, error) {
	req, err := c.Request.Clone()
	if err != nil {
		return nil, err
	}
	return &Call{
		Request:     req,
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		body:        c.body,
		contentType: c.contentType,
	}, nil
}
