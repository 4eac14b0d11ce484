package nettransport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

var (
	errClosed           = errors.New("nettransport: handle is closed")
	errWriteAborted     = errors.New("nettransport: write callback aborted the transfer")
	errReadAborted      = errors.New("nettransport: read callback returned an invalid length")
	errTooManyRedirects = errors.New("nettransport: too many redirects")
	errNoURL            = errors.New("nettransport: no URL set")
)

// classify maps an exchange error onto a transport result code. ctx is the
// exchange context; its state takes precedence over the error text.
func classify(ctx context.Context, err error) oshttp.Code {
	switch {
	case errors.Is(err, errWriteAborted):
		return oshttp.CodeWriteError
	case errors.Is(err, errReadAborted):
		return oshttp.CodeReadError
	case errors.Is(err, errTooManyRedirects):
		return oshttp.CodeTooManyRedirects
	}

	switch ctx.Err() {
	case context.DeadlineExceeded:
		return oshttp.CodeOperationTimedOut
	case context.Canceled:
		return oshttp.CodeAbortedByCallback
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return oshttp.CodeOperationTimedOut
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return oshttp.CodeCouldNotResolveHost
	}

	if isTLSError(err) {
		return oshttp.CodeSSLConnectError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return oshttp.CodeOperationTimedOut
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch opErr.Op {
		case "dial":
			return oshttp.CodeCouldNotConnect
		case "write":
			return oshttp.CodeSendError
		}
	}

	if strings.Contains(err.Error(), "unsupported protocol scheme") {
		return oshttp.CodeUnsupportedProtocol
	}
	return oshttp.CodeRecvError
}

func isTLSError(err error) bool {
	var (
		recordErr  tls.RecordHeaderError
		verifyErr  *tls.CertificateVerificationError
		authErr    x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		alertErr   tls.AlertError
	)
	return errors.As(err, &recordErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &alertErr)
}
