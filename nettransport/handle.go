package nettransport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http/httpguts"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// maxWriteSize is the largest chunk handed to a WriteFunc.
const maxWriteSize = 16 * 1024

// formContentType is sent with post fields when no Content-Type is set.
const formContentType = "application/x-www-form-urlencoded"

type handle struct {
	owner     *Transport
	rt        *http.Transport
	dialer    *net.Dialer
	tlsConfig *tls.Config

	mu     sync.Mutex
	active *exchange

	closed bool
	status int

	url        string
	upload     bool
	post       bool
	custom     string
	noBody     bool
	headerList []string
	postFields []byte
	readFn     oshttp.ReadFunc
	uploadSize int64
	writeFn    oshttp.WriteFunc
	headerFn   oshttp.WriteFunc
	traceFn    oshttp.TraceFunc
	verbose    bool
	timeout    time.Duration
	noSignal   bool
	follow     bool
}

func newHandle(t *Transport) *handle {
	h := &handle{
		owner:     t,
		dialer:    &net.Dialer{Timeout: t.opts.dialTimeout},
		tlsConfig: &tls.Config{InsecureSkipVerify: t.opts.insecure},
	}
	h.rt = &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		DialContext:        h.dialer.DialContext,
		DialTLSContext:     h.dialTLS,
		TLSClientConfig:    h.tlsConfig,
		DisableKeepAlives:  true,
		DisableCompression: true,
	}
	return h
}

func (h *handle) SetURL(uri string) { h.url = uri }
func (h *handle) SetUploadMode(on bool) { h.upload = on }
func (h *handle) SetPostMode(on bool) { h.post = on }
func (h *handle) SetCustomMethod(method string) { h.custom = method }
func (h *handle) SetNoBody(on bool) { h.noBody = on }
func (h *handle) SetHeaderList(lines []string) { h.headerList = lines }
func (h *handle) SetPostFields(body []byte) { h.postFields = body }
func (h *handle) SetReadFunc(fn oshttp.ReadFunc) { h.readFn = fn }
func (h *handle) SetUploadSize(n int64) { h.uploadSize = n }
func (h *handle) SetWriteFunc(fn oshttp.WriteFunc) { h.writeFn = fn }
func (h *handle) SetHeaderFunc(fn oshttp.WriteFunc) { h.headerFn = fn }
func (h *handle) SetTraceFunc(fn oshttp.TraceFunc) { h.traceFn = fn }
func (h *handle) SetVerbose(on bool) { h.verbose = on }
func (h *handle) SetTimeout(d time.Duration) { h.timeout = d }
func (h *handle) SetNoSignal(on bool) { h.noSignal = on }
func (h *handle) SetFollowLocation(on bool) { h.follow = on }
func (h *handle) ResponseCode() int { return h.status }

// Escape leaves RFC 3986 unreserved characters alone and percent-encodes
// everything else, space included.
func (h *handle) Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Reset restores every option to its default.
func (h *handle) Reset() {
	h.status = 0
	h.url = ""
	h.upload = false
	h.post = false
	h.custom = ""
	h.noBody = false
	h.headerList = nil
	h.postFields = nil
	h.readFn = nil
	h.uploadSize = 0
	h.writeFn = nil
	h.headerFn = nil
	h.traceFn = nil
	h.verbose = false
	h.timeout = 0
	h.noSignal = false
	h.follow = false
}

// Close drops the handle's connections and frees its slot in the owner.
func (h *handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.rt.CloseIdleConnections()
	h.owner.release()
	return nil
}

// Perform runs one exchange with the current options.
func (h *handle) Perform(ctx context.Context) (oshttp.Code, error) {
	if h.closed {
		return oshttp.CodeUnknown, errClosed
	}
	h.status = 0
	if h.url == "" {
		return oshttp.CodeURLMalformed, errNoURL
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	x := &exchange{}
	if h.verbose && h.traceFn != nil {
		x.trace = h.traceFn
		ctx = httptrace.WithClientTrace(ctx, x.clientTrace())
	}
	h.setExchange(x)
	defer func() {
		x.finish()
		h.setExchange(nil)
	}()

	req, code, err := h.newRequest(ctx, x)
	if err != nil {
		return code, err
	}

	client := &http.Client{
		Transport:     h.rt,
		CheckRedirect: h.redirectPolicy(x),
	}

	x.startRequest(req)
	resp, err := client.Do(req)
	if err != nil {
		code := classify(ctx, err)
		x.info("Closing connection: %s", code)
		return code, err
	}
	defer resp.Body.Close()

	h.status = resp.StatusCode
	if code, err := h.deliverHeaders(x, resp); err != nil {
		return code, err
	}

	if h.noBody || resp.Request.Method == http.MethodHead {
		return oshttp.CodeOK, nil
	}
	return h.deliverBody(ctx, x, resp.Body)
}

func (h *handle) setExchange(x *exchange) {
	h.mu.Lock()
	h.active = x
	h.mu.Unlock()
}

func (h *handle) current() *exchange {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// method picks the verb from the armed options.
func (h *handle) method() string {
	switch {
	case h.custom != "":
		return h.custom
	case h.noBody:
		return http.MethodHead
	case h.upload:
		return http.MethodPut
	case h.post || h.postFields != nil:
		return http.MethodPost
	}
	return http.MethodGet
}

func (h *handle) newRequest(ctx context.Context, x *exchange) (*http.Request, oshttp.Code, error) {
	u, err := url.Parse(h.url)
	if err != nil {
		return nil, oshttp.CodeURLMalformed, err
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return nil, oshttp.CodeUnsupportedProtocol, fmt.Errorf("nettransport: protocol %q not supported", u.Scheme)
	}
	if u.Host == "" {
		return nil, oshttp.CodeURLMalformed, fmt.Errorf("nettransport: no host in %q", h.url)
	}

	body, length, getBody := h.body(x)
	req, err := http.NewRequestWithContext(ctx, h.method(), h.url, body)
	if err != nil {
		return nil, oshttp.CodeURLMalformed, err
	}
	req.ContentLength = length
	req.GetBody = getBody

	if err := h.applyHeaders(req); err != nil {
		return nil, oshttp.CodeSendError, err
	}
	return req, oshttp.CodeOK, nil
}

// body returns the outbound body, its length (-1 if unknown) and, for
// in-memory bodies, a GetBody func so 307/308 redirects can resend it.
func (h *handle) body(x *exchange) (io.Reader, int64, func() (io.ReadCloser, error)) {
	wrap := func(r io.Reader) io.Reader {
		if x.tracing() {
			return &traceReader{r: r, x: x}
		}
		return r
	}

	switch {
	case h.noBody:
		return nil, 0, nil
	case h.upload:
		if h.readFn == nil {
			return http.NoBody, 0, nil
		}
		length := h.uploadSize
		if length <= 0 {
			length = -1
		}
		return wrap(&readFuncReader{fn: h.readFn}), length, nil
	case h.postFields != nil:
		fields := h.postFields
		getBody := func() (io.ReadCloser, error) {
			return io.NopCloser(wrap(bytes.NewReader(fields))), nil
		}
		return wrap(bytes.NewReader(fields)), int64(len(fields)), getBody
	case h.post:
		return http.NoBody, 0, nil
	}
	return nil, 0, nil
}

// applyHeaders copies the header list onto req. A line "Key:" removes
// the header, including ones net/http would add by default.
func (h *handle) applyHeaders(req *http.Request) error {
	removed := make(map[string]bool)
	for _, line := range h.headerList {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !httpguts.ValidHeaderFieldName(key) || !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("nettransport: invalid header line %q", line)
		}

		canonical := http.CanonicalHeaderKey(key)
		switch {
		case value == "":
			removed[canonical] = true
			req.Header.Del(key)
		case canonical == "Host":
			req.Host = value
		default:
			req.Header.Set(key, value)
		}
	}

	if removed["User-Agent"] {
		// an empty value stops net/http from adding its own
		req.Header.Set("User-Agent", "")
	} else if ua := h.owner.opts.userAgent; ua != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", ua)
	}

	if h.postFields != nil && req.Header.Get("Content-Type") == "" && !removed["Content-Type"] {
		req.Header.Set("Content-Type", formContentType)
	}
	return nil
}

func (h *handle) redirectPolicy(x *exchange) func(*http.Request, []*http.Request) error {
	return func(next *http.Request, via []*http.Request) error {
		if !h.follow {
			return http.ErrUseLastResponse
		}
		if next.Response != nil {
			if _, err := h.deliverHeaders(x, next.Response); err != nil {
				return err
			}
		}
		if len(via) > h.owner.opts.maxRedirects {
			x.info("Maximum (%d) redirects followed", h.owner.opts.maxRedirects)
			return errTooManyRedirects
		}
		// net/http turns the verb into GET on 301/302/303; a custom verb sticks
		if h.custom != "" {
			next.Method = h.custom
		}
		x.info("Issue another request to this URL: '%s'", next.URL)
		x.startRequest(next)
		return nil
	}
}

// deliverHeaders feeds the status line, each header line and the blank
// terminator to the header callback.
func (h *handle) deliverHeaders(x *exchange, resp *http.Response) (oshttp.Code, error) {
	lines := headerLines(resp)
	if x.tracing() {
		x.emit(oshttp.TraceHeaderIn, []byte(strings.Join(lines, "")))
	}
	if h.headerFn == nil {
		return oshttp.CodeOK, nil
	}
	for _, line := range lines {
		if h.headerFn([]byte(line)) != len(line) {
			return oshttp.CodeWriteError, errWriteAborted
		}
	}
	return oshttp.CodeOK, nil
}

func headerLines(resp *http.Response) []string {
	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+2)
	lines = append(lines, fmt.Sprintf("%s %s\r\n", resp.Proto, resp.Status))
	for _, k := range keys {
		for _, v := range resp.Header[k] {
			lines = append(lines, k+": "+v+"\r\n")
		}
	}
	return append(lines, "\r\n")
}

func (h *handle) deliverBody(ctx context.Context, x *exchange, body io.Reader) (oshttp.Code, error) {
	buf := make([]byte, maxWriteSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			x.emit(oshttp.TraceDataIn, chunk)
			if h.writeFn != nil && h.writeFn(chunk) != n {
				return oshttp.CodeWriteError, errWriteAborted
			}
		}
		if err == io.EOF {
			return oshttp.CodeOK, nil
		}
		if err != nil {
			return classify(ctx, err), err
		}
	}
}

// dialTLS dials https targets itself so the raw socket can be traced
// underneath the TLS layer.
func (h *handle) dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	raw, err := h.dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	x := h.current()
	if x != nil && x.tracing() {
		raw = &traceConn{Conn: raw, x: x}
	}

	cfg := h.tlsConfig.Clone()
	if cfg.ServerName == "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		cfg.ServerName = host
	}

	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, err
	}
	if x != nil {
		x.tlsDone(conn.ConnectionState())
	}
	return conn, nil
}
