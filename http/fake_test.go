package http

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"
)

type traceEvent struct {
	kind TraceKind
	data []byte
}

// fakeHandle records every option it is given and replays a scripted
// exchange on Perform.
type fakeHandle struct {
	url        string
	upload     bool
	post       bool
	custom     string
	noBody     bool
	headerList []string
	postFields []byte
	readFn     ReadFunc
	uploadSize int64
	writeFn    WriteFunc
	headerFn   WriteFunc
	traceFn    TraceFunc
	verbose    bool
	timeout    time.Duration
	noSignal   bool
	follow     bool

	resets int
	closed bool

	// scripted exchange
	code        Code
	cause       error
	status      int
	headerLines []string
	bodyChunks  [][]byte
	traces      []traceEvent
	readChunk   int

	// observed during Perform
	performs    int
	sentURLs    []string
	sentHeaders []string
	sentFields  []byte
	uploaded    []byte
	reads       []int
	hadWrite    bool
}

func (h *fakeHandle) SetURL(uri string) { h.url = uri }
func (h *fakeHandle) SetUploadMode(on bool) { h.upload = on }
func (h *fakeHandle) SetPostMode(on bool) { h.post = on }
func (h *fakeHandle) SetCustomMethod(method string) { h.custom = method }
func (h *fakeHandle) SetNoBody(on bool) { h.noBody = on }
func (h *fakeHandle) SetHeaderList(lines []string) { h.headerList = lines }
func (h *fakeHandle) SetPostFields(body []byte) { h.postFields = body }
func (h *fakeHandle) SetReadFunc(fn ReadFunc) { h.readFn = fn }
func (h *fakeHandle) SetUploadSize(n int64) { h.uploadSize = n }
func (h *fakeHandle) SetWriteFunc(fn WriteFunc) { h.writeFn = fn }
func (h *fakeHandle) SetHeaderFunc(fn WriteFunc) { h.headerFn = fn }
func (h *fakeHandle) SetTraceFunc(fn TraceFunc) { h.traceFn = fn }
func (h *fakeHandle) SetVerbose(on bool) { h.verbose = on }
func (h *fakeHandle) SetTimeout(d time.Duration) { h.timeout = d }
func (h *fakeHandle) SetNoSignal(on bool) { h.noSignal = on }
func (h *fakeHandle) SetFollowLocation(on bool) { h.follow = on }
func (h *fakeHandle) ResponseCode() int { return h.status }
func (h *fakeHandle) Escape(s string) string { return strings.ReplaceAll(url.QueryEscape(s), "+", "%20") }
func (h *fakeHandle) Close() error { h.closed = true; return nil }

func (h *fakeHandle) Reset() {
	h.resets++
	h.url, h.custom = "", ""
	h.upload, h.post, h.noBody = false, false, false
}

func (h *fakeHandle) Perform(ctx context.Context) (Code, error) {
	h.performs++
	h.sentURLs = append(h.sentURLs, h.url)
	h.sentHeaders = append([]string(nil), h.headerList...)
	h.sentFields = h.postFields
	h.hadWrite = h.writeFn != nil

	if h.upload && h.readFn != nil {
		chunk := h.readChunk
		if chunk == 0 {
			chunk = 16384
		}
		buf := make([]byte, chunk)
		for {
			n := h.readFn(buf)
			h.reads = append(h.reads, n)
			if n == 0 {
				break
			}
			h.uploaded = append(h.uploaded, buf[:n]...)
		}
	}

	for _, ev := range h.traces {
		h.traceFn(ev.kind, ev.data)
	}

	if h.code != CodeOK {
		return h.code, h.cause
	}

	for _, line := range h.headerLines {
		if n := h.headerFn([]byte(line)); n != len(line) {
			return CodeWriteError, nil
		}
	}
	if h.writeFn != nil {
		for _, chunk := range h.bodyChunks {
			if n := h.writeFn(chunk); n != len(chunk) {
				return CodeWriteError, nil
			}
		}
	}
	return CodeOK, nil
}

// fakeTransport hands out fakeHandles, optionally scripted by setup.
type fakeTransport struct {
	handles []*fakeHandle
	setup   func(h *fakeHandle)
}

func (t *fakeTransport) Acquire() (Handle, error) {
	h := &fakeHandle{}
	if t.setup != nil {
		t.setup(h)
	}
	t.handles = append(t.handles, h)
	return h, nil
}

func (t *fakeTransport) last() *fakeHandle {
	return t.handles[len(t.handles)-1]
}

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Acquire() (Handle, error) {
	args := m.Called()
	h, _ := args.Get(0).(Handle)
	return h, args.Error(1)
}
