package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// ContentTypeHeader is the header that carries the content type given to
// Perform. It is Accept rather than Content-Type so requests stay
// byte-for-byte compatible with servers built against the existing wire
// contract.
const ContentTypeHeader = "Accept"

// Request is a configurable HTTP request bound to one transport handle.
// Use NewRequest to create one and Close to release its handle.
//
// The method is fixed at construction. Headers and query parameters may be
// changed between exchanges; each call to Perform runs exactly one
// exchange with the state present at that moment.
type Request struct {
	base      string
	uri       string
	method    Method
	headers   *Params
	query     *Params
	follow    bool
	sink      TraceSink
	lastBody  []byte
	transport Transport
	handle    Handle
}

// NewRequest creates a request for host+path. The two are concatenated
// as given, without normalization or escaping.
//
// Example:
//
//	req, err := http.NewRequest(engine, "https://api.example.com", "/users", http.MethodGet)
//	if err != nil {
//	    return err
//	}
//	defer req.Close()
//	req.AddQuery("limit", "10")
func NewRequest(t Transport, host, path string, method Method) (*Request, error) {
	r := &Request{
		base:      host + path,
		uri:       host + path,
		method:    method,
		headers:   NewParams(),
		query:     NewParams(),
		follow:    true,
		transport: t,
	}
	if err := r.acquire(); err != nil {
		return nil, err
	}
	return r, nil
}

// acquire obtains a fresh handle and arms it for r.method.
func (r *Request) acquire() error {
	if r.transport == nil {
		return fmt.Errorf("%w: no transport", ErrTransportInit)
	}
	h, err := r.transport.Acquire()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransportInit, err)
	}
	if h == nil {
		return ErrTransportInit
	}

	switch r.method {
	case MethodGet:
	case MethodPut:
		h.SetUploadMode(true)
	case MethodPost:
		h.SetPostMode(true)
	case MethodDelete:
		h.SetCustomMethod("DELETE")
	case MethodHead:
		h.SetNoBody(true)
	default:
		h.Close()
		return fmt.Errorf("%w: %s", ErrInvalidMethod, r.method)
	}

	r.handle = h
	return nil
}

// Clone returns a copy of r with its own handle. Headers and query
// parameters are deep-copied; the trace sink and last body are shared.
func (r *Request) Clone() (*Request, error) {
	if r.handle == nil {
		return nil, ErrClosed
	}
	c := &Request{
		base:      r.base,
		uri:       r.uri,
		method:    r.method,
		headers:   r.headers.Clone(),
		query:     r.query.Clone(),
		follow:    r.follow,
		sink:      r.sink,
		lastBody:  r.lastBody,
		transport: r.transport,
	}
	if err := c.acquire(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close resets and releases the handle. Calling Close more than once is safe.
func (r *Request) Close() error {
	if r.handle == nil {
		return nil
	}
	h := r.handle
	r.handle = nil
	h.Reset()
	return h.Close()
}

// Method returns the request method.
func (r *Request) Method() Method { return r.method }

// URI returns the target of the most recent exchange, or host+path if
// Perform has not been called yet.
func (r *Request) URI() string { return r.uri }

// LastBody returns the body sent by the most recent exchange.
func (r *Request) LastBody() []byte { return r.lastBody }

// AddHeader upserts a header.
func (r *Request) AddHeader(key, value string) {
	r.headers.Set(key, value)
}

// DelHeader removes a header. It is a no-op if the header is absent.
func (r *Request) DelHeader(key string) {
	r.headers.Del(key)
}

// SetHeaders replaces every header with the contents of headers.
func (r *Request) SetHeaders(headers map[string]string) {
	r.headers = ParamsFromMap(headers)
}

// Headers returns a copy of the headers.
func (r *Request) Headers() map[string]string {
	return r.headers.Map()
}

// HeaderParams returns an ordered copy of the headers.
func (r *Request) HeaderParams() *Params {
	return r.headers.Clone()
}

// AddQuery upserts a query parameter. Parameters are encoded into the URI
// by Perform, in insertion order.
func (r *Request) AddQuery(key, value string) {
	r.query.Set(key, value)
}

// Query returns an ordered copy of the query parameters.
func (r *Request) Query() *Params {
	return r.query.Clone()
}

// SetFollowRedirects controls automatic redirect following. It is on by default.
func (r *Request) SetFollowRedirects(follow bool) {
	r.follow = follow
}

// FollowRedirects reports whether redirects are followed.
func (r *Request) FollowRedirects() bool { return r.follow }

// SetTraceSink enables wire tracing into sink. nil disables tracing.
func (r *Request) SetTraceSink(sink TraceSink) {
	r.sink = sink
}

// Perform runs one exchange. body is sent for PUT (streamed), POST and
// DELETE when non-empty. A non-empty contentType is upserted under
// ContentTypeHeader. timeout bounds the exchange; zero means no bound.
//
// The query string is rebuilt from the base URI on every call, so
// repeated calls never accumulate query strings.
//
// Perform returns a fully populated Response or an error, never both.
// Transport failures are reported as *TransferError.
func (r *Request) Perform(ctx context.Context, body []byte, contentType string, timeout time.Duration) (*Response, error) {
	if r.handle == nil {
		return nil, ErrClosed
	}
	h := r.handle
	resp := newResponse()

	r.uri = r.base + r.encodeQuery()
	h.SetURL(r.uri)

	if r.method != MethodHead {
		h.SetWriteFunc(bodyWriter(resp))
	}
	h.SetHeaderFunc(headerParser(resp))
	defer func() {
		h.SetWriteFunc(nil)
		h.SetHeaderFunc(nil)
	}()

	if contentType != "" {
		r.AddHeader(ContentTypeHeader, contentType)
	}

	list, err := r.headerList()
	if err != nil {
		return nil, err
	}
	h.SetHeaderList(list)
	defer h.SetHeaderList(nil)

	if len(body) > 0 {
		r.lastBody = body
		switch r.method {
		case MethodPut:
			cursor := newUploadCursor(body)
			h.SetUploadMode(true)
			h.SetReadFunc(cursor.Read)
			h.SetUploadSize(int64(len(body)))
			defer h.SetReadFunc(nil)
		case MethodPost, MethodDelete:
			h.SetPostFields(body)
			defer h.SetPostFields(nil)
		}
	}

	h.SetTraceFunc(r.trace)
	defer h.SetTraceFunc(nil)
	h.SetVerbose(r.sink != nil)

	h.SetTimeout(timeout)
	if timeout != 0 {
		h.SetNoSignal(true)
	}
	h.SetFollowLocation(r.follow)

	start := time.Now()
	code, cause := h.Perform(ctx)
	resp.Elapsed = time.Since(start)
	if code != CodeOK {
		return nil, &TransferError{Message: code.String(), Code: code, Err: cause}
	}

	resp.StatusCode = h.ResponseCode()
	return resp, nil
}

// encodeQuery returns "?k=v&k2=v2" with every key and value escaped by the
// handle, or "" when there are no parameters.
func (r *Request) encodeQuery() string {
	if r.query.Len() == 0 {
		return ""
	}
	var b strings.Builder
	r.query.Each(func(key, value string) {
		if b.Len() == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(r.handle.Escape(key))
		b.WriteByte('=')
		b.WriteString(r.handle.Escape(value))
	})
	return b.String()
}

// headerList serializes the headers into "Key: value" lines. Nothing is
// returned if any header is not a valid HTTP field.
func (r *Request) headerList() ([]string, error) {
	list := make([]string, 0, r.headers.Len())
	for _, key := range r.headers.Keys() {
		value := r.headers.Value(key)
		if !httpguts.ValidHeaderFieldName(key) || !httpguts.ValidHeaderFieldValue(value) {
			return nil, &HeaderError{Key: key}
		}
		list = append(list, key+": "+value)
	}
	return list, nil
}

// trace is installed on every exchange; it only formats when a sink is set.
func (r *Request) trace(kind TraceKind, data []byte) {
	if r.sink == nil {
		return
	}
	if text, ok := FormatTrace(kind, data); ok {
		r.sink.Trace(text)
	}
}
