package nettransport

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httptrace"
	"strings"
	"sync"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// exchange is the tracing state of one Perform call. net/http reports
// events from its own goroutines, so every emission is serialized and
// nothing is emitted once the exchange has finished.
type exchange struct {
	trace oshttp.TraceFunc

	mu      sync.Mutex
	done    bool
	reqLine string
	fields  bytes.Buffer
}

func (x *exchange) tracing() bool {
	return x.trace != nil
}

func (x *exchange) emit(kind oshttp.TraceKind, data []byte) {
	if x.trace == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.done {
		return
	}
	x.trace(kind, data)
}

func (x *exchange) info(format string, args ...interface{}) {
	if x.trace == nil {
		return
	}
	x.emit(oshttp.TraceText, []byte(fmt.Sprintf(format, args...)+"\n"))
}

func (x *exchange) finish() {
	x.mu.Lock()
	x.done = true
	x.mu.Unlock()
}

// startRequest begins a new outgoing header block for req.
func (x *exchange) startRequest(req *http.Request) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.reqLine = fmt.Sprintf("%s %s HTTP/1.1\r\n", req.Method, req.URL.RequestURI())
	x.fields.Reset()
}

func (x *exchange) wroteField(key string, values []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, v := range values {
		fmt.Fprintf(&x.fields, "%s: %s\r\n", key, v)
	}
}

func (x *exchange) wroteHeaders() {
	x.mu.Lock()
	block := x.reqLine + x.fields.String() + "\r\n"
	x.fields.Reset()
	x.mu.Unlock()
	x.emit(oshttp.TraceHeaderOut, []byte(block))
}

func (x *exchange) tlsDone(state tls.ConnectionState) {
	x.info("SSL connection using %s / %s", tls.VersionName(state.Version), tls.CipherSuiteName(state.CipherSuite))
}

func (x *exchange) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(info httptrace.DNSStartInfo) {
			x.info("Resolving %s", info.Host)
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			if info.Err != nil {
				x.info("Could not resolve host: %v", info.Err)
				return
			}
			addrs := make([]string, 0, len(info.Addrs))
			for _, a := range info.Addrs {
				addrs = append(addrs, a.String())
			}
			x.info("Resolved to %s", strings.Join(addrs, ", "))
		},
		ConnectStart: func(network, addr string) {
			x.info("  Trying %s...", addr)
		},
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				x.info("connect to %s failed: %v", addr, err)
				return
			}
			x.info("Connected to %s", addr)
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err != nil {
				x.info("TLS handshake failed: %v", err)
				return
			}
			x.tlsDone(state)
		},
		WroteHeaderField: x.wroteField,
		WroteHeaders:     x.wroteHeaders,
		Got100Continue: func() {
			x.info("HTTP 100 Continue received")
		},
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err != nil {
				x.info("Failed writing request: %v", info.Err)
			}
		},
	}
}
