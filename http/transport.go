package http

import (
	"context"
	"time"
)

// WriteFunc receives inbound bytes (body chunks or single header lines).
// It must return len(p); any other value makes the transport abort the
// exchange.
type WriteFunc func(p []byte) int

// ReadFunc fills p with outbound body bytes and returns how many it wrote.
// Returning 0 signals the end of the body.
type ReadFunc func(p []byte) int

// TraceFunc receives wire-level diagnostic events while the transport is
// in verbose mode.
type TraceFunc func(kind TraceKind, data []byte)

// Transport hands out handles. Every call to Acquire must return a handle
// that is not shared with any other caller.
type Transport interface {
	Acquire() (Handle, error)
}

// Handle is one configured exchange session. The option setters arm the
// next call to Perform; they stay in effect until changed or Reset.
//
// A Handle is used by one goroutine at a time.
type Handle interface {
	// SetURL sets the full target URI, query string included.
	SetURL(uri string)

	// SetUploadMode arms streamed upload through the ReadFunc (PUT).
	SetUploadMode(on bool)
	// SetPostMode arms a post-fields body (POST).
	SetPostMode(on bool)
	// SetCustomMethod overrides the verb sent on the request line.
	SetCustomMethod(method string)
	// SetNoBody suppresses body retrieval (HEAD).
	SetNoBody(on bool)

	// SetHeaderList installs outbound "Key: value" lines. nil detaches the list.
	SetHeaderList(lines []string)
	// SetPostFields sets an in-memory body. nil detaches it.
	SetPostFields(body []byte)
	SetReadFunc(fn ReadFunc)
	SetUploadSize(n int64)

	SetWriteFunc(fn WriteFunc)
	SetHeaderFunc(fn WriteFunc)
	SetTraceFunc(fn TraceFunc)
	SetVerbose(on bool)

	// SetTimeout bounds the whole exchange. Zero disables the bound.
	SetTimeout(d time.Duration)
	// SetNoSignal keeps timeout handling off process signals.
	SetNoSignal(on bool)
	SetFollowLocation(on bool)

	// Escape percent-encodes s for embedding in a URI.
	Escape(s string) string

	// Perform runs the exchange and blocks until it completes or fails.
	// The error, if any, is the underlying cause of a non-OK Code.
	Perform(ctx context.Context) (Code, error)
	// ResponseCode returns the HTTP status of the last exchange, or 0.
	ResponseCode() int

	// Reset restores every option to its default.
	Reset()
	// Close releases the handle. It must not be used afterwards.
	Close() error
}
