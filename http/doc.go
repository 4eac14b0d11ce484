// Package http provides single-shot HTTP requests executed over a
// pluggable transfer engine.
//
// A Request owns a target URI, a method, ordered header and query
// parameters and one transport handle. Perform translates that state into
// exactly one blocking exchange and assembles the Response from the
// engine's header and body callbacks.
//
// This package is designed for use as a building block and provides:
//   - Request objects with header and query management
//   - Typed calls (Get, Head, Post, Put, Delete) that carry their body
//   - A Client that creates calls sharing a base URL and default headers
//   - Ordered response headers exactly as received
//   - Optional wire-level tracing through a TraceSink
//
// Basic Usage:
//
//	engine := nettransport.New()
//
//	call, err := http.Get(engine, "https://api.example.com", "/users")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer call.Close()
//
//	call.AddQuery("limit", "10")
//	call.AddHeader("Authorization", "Bearer token")
//
//	resp, err := call.Perform(context.Background(), 30*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d\n", resp.StatusCode)
//
// Upload Example:
//
//	call, err := http.Put(engine, "https://api.example.com", "/notes/1",
//	    []byte("hello"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer call.Close()
//
//	call.SetContentType("text/plain")
//	resp, err := call.Perform(context.Background(), 0)
//
// The content type given to a call travels in the Accept header. See
// ContentTypeHeader.
//
// Thread Safety:
//
// A Request is not safe for concurrent use. Each Request owns its handle
// exclusively; callers that need parallel exchanges create one Request
// (or Clone) per goroutine.
package http
