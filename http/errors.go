package http

import (
	"errors"
	"fmt"
)

var (
	// ErrTransportInit is returned when the transport cannot hand out a handle.
	ErrTransportInit = errors.New("http: couldn't initialize transport handle")

	// ErrInvalidMethod is returned for a Method outside the supported set.
	ErrInvalidMethod = errors.New("http: invalid HTTP method")

	// ErrInvalidHeader is wrapped by HeaderError.
	ErrInvalidHeader = errors.New("http: invalid header field")

	// ErrBodyNotAllowed is returned when a GET or HEAD call is given a body.
	ErrBodyNotAllowed = errors.New("http: method does not carry a body")

	// ErrClosed is returned when a closed Request is used.
	ErrClosed = errors.New("http: request is closed")
)

// TransferError reports a failed exchange. Code is the transport's result
// code and Message its human-readable text. Err holds the underlying cause
// when the transport provides one.
type TransferError struct {
	Message string
	Code    Code
	Err     error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("http: transfer failed: %s (code %d): %v", e.Message, int(e.Code), e.Err)
	}
	return fmt.Sprintf("http: transfer failed: %s (code %d)", e.Message, int(e.Code))
}

func (e *TransferError) Unwrap() error { return e.Err }

// HeaderError reports a header that could not be serialized into a valid
// "Key: value" line.
type HeaderError struct {
	Key string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("http: invalid header %q", e.Key)
}

func (e *HeaderError) Unwrap() error { return ErrInvalidHeader }
