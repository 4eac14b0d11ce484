package nettransport

import (
	"io"
	"net"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// traceConn reports every byte crossing the socket. It wraps the raw TCP
// connection underneath TLS, so what it sees is ciphertext.
type traceConn struct {
	net.Conn
	x *exchange
}

func (c *traceConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.x.emit(oshttp.TraceSSLDataIn, p[:n])
	}
	return n, err
}

func (c *traceConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if n > 0 {
		c.x.emit(oshttp.TraceSSLDataOut, p[:n])
	}
	return n, err
}

// readFuncReader pulls an upload body through a ReadFunc.
type readFuncReader struct {
	fn   oshttp.ReadFunc
	done bool
}

func (r *readFuncReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := r.fn(p)
	if n < 0 || n > len(p) {
		return 0, errReadAborted
	}
	if n == 0 {
		r.done = true
		return 0, io.EOF
	}
	return n, nil
}

// traceReader reports outbound body bytes as they are consumed.
type traceReader struct {
	r io.Reader
	x *exchange
}

func (t *traceReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.x.emit(oshttp.TraceDataOut, p[:n])
	}
	return n, err
}
