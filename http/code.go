package http

// Code is the result of one transport exchange. CodeOK means the exchange
// completed; any other value is a transport-level failure. HTTP error
// statuses such as 404 are not transport failures.
type Code int

const (
	CodeOK Code = iota
	CodeUnsupportedProtocol
	CodeURLMalformed
	CodeCouldNotResolveHost
	CodeCouldNotConnect
	CodeWriteError
	CodeReadError
	CodeOperationTimedOut
	CodeTooManyRedirects
	CodeSSLConnectError
	CodeSendError
	CodeRecvError
	CodeAbortedByCallback
	CodeUnknown
)

var codeMessages = [...]string{
	CodeOK:                  "No error",
	CodeUnsupportedProtocol: "Unsupported protocol",
	CodeURLMalformed:        "URL using bad/illegal format or missing URL",
	CodeCouldNotResolveHost: "Couldn't resolve host name",
	CodeCouldNotConnect:     "Couldn't connect to server",
	CodeWriteError:          "Failed writing received data to disk/application",
	CodeReadError:           "Failed to open/read local data from file/application",
	CodeOperationTimedOut:   "Timeout was reached",
	CodeTooManyRedirects:    "Number of redirects hit maximum amount",
	CodeSSLConnectError:     "SSL connect error",
	CodeSendError:           "Failed sending data to the peer",
	CodeRecvError:           "Failure when receiving data from the peer",
	CodeAbortedByCallback:   "Operation was aborted by an application callback",
	CodeUnknown:             "Unknown error",
}

// String returns the human-readable message for c.
func (c Code) String() string {
	if c < 0 || int(c) >= len(codeMessages) {
		return codeMessages[CodeUnknown]
	}
	return codeMessages[c]
}
