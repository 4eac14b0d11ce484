// Package nettransport implements the transfer engine used by the http
// package on top of net/http.
//
// Every handle owns a private net/http Transport with keep-alives
// disabled, so handles never share connections. A handle speaks HTTP/1.1;
// https connections are dialed by the handle itself so their raw bytes can
// be traced.
//
// Redirects are followed only when follow-location is set. A custom verb
// is kept on every hop, while POST is turned into GET on 301, 302 and 303
// with its body dropped. 307 and 308 resend in-memory bodies (post fields);
// a streamed upload cannot be replayed, so a 307 or 308 answer to it is
// returned to the caller unfollowed.
package nettransport

import (
	"errors"
	"sync"
	"time"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// ErrHandleLimit is returned by Acquire when the configured number of live
// handles has been reached.
var ErrHandleLimit = errors.New("nettransport: handle limit reached")

// Transport hands out net/http-backed handles. It is safe for concurrent
// use; the handles it returns are not.
type Transport struct {
	opts options

	mu   sync.Mutex
	live int
}

type options struct {
	maxRedirects int
	insecure     bool
	userAgent    string
	handleLimit  int
	dialTimeout  time.Duration
}

// Option configures a Transport.
type Option func(*options)

// WithMaxRedirects sets how many redirects a handle follows before
// failing with CodeTooManyRedirects. The default is 50.
func WithMaxRedirects(n int) Option {
	return func(o *options) {
		o.maxRedirects = n
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(o *options) {
		o.insecure = skip
	}
}

// WithUserAgent sets the User-Agent sent when the request has none.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithHandleLimit caps the number of live handles. Zero means no cap.
func WithHandleLimit(n int) Option {
	return func(o *options) {
		o.handleLimit = n
	}
}

// WithDialTimeout bounds connection establishment separately from the
// exchange timeout. Zero leaves only the exchange timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// New creates a Transport with the given options.
//
// Example:
//
//	engine := nettransport.New(
//	    nettransport.WithUserAgent("oneshot/1.0"),
//	    nettransport.WithMaxRedirects(10),
//	)
func New(opts ...Option) *Transport {
	o := options{maxRedirects: 50}
	for _, opt := range opts {
		opt(&o)
	}
	return &Transport{opts: o}
}

// Acquire returns a new handle.
func (t *Transport) Acquire() (oshttp.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opts.handleLimit > 0 && t.live >= t.opts.handleLimit {
		return nil, ErrHandleLimit
	}
	t.live++
	return newHandle(t), nil
}

// Live returns the number of handles acquired and not yet closed.
func (t *Transport) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

func (t *Transport) release() {
	t.mu.Lock()
	t.live--
	t.mu.Unlock()
}
