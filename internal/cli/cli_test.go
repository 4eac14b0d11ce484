package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// run executes a fresh command tree and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// echoServer answers every request with its method, query, Accept header
// and body echoed back.
func echoServer(t *testing.T) (*httptest.Server, *int64) {
	t.Helper()
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Query", r.URL.RawQuery)
		w.Header().Set("X-Got-Accept", r.Header.Get("Accept"))
		w.Header().Set("X-Got-Token", r.Header.Get("X-Token"))
		w.Header().Set("Content-Type", "application/json")
		if len(body) == 0 {
			body = []byte(`{"id":7,"name":"Ada"}`)
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

type responseDoc struct {
	Response struct {
		StatusCode int               `json:"statusCode"`
		Headers    map[string]string `json:"headers"`
		Body       json.RawMessage   `json:"body"`
	} `json:"response"`
}

// decodeResponse finds the response document in JSON output.
func decodeResponse(t *testing.T, out string) responseDoc {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(out))
	for {
		var raw map[string]json.RawMessage
		require.NoError(t, dec.Decode(&raw), "no response document in %q", out)
		if _, ok := raw["response"]; ok {
			data, _ := json.Marshal(raw)
			var doc responseDoc
			require.NoError(t, json.Unmarshal(data, &doc))
			return doc
		}
	}
}

func TestGetCommand(t *testing.T) {
	srv, hits := echoServer(t)

	out, _, err := run(t, "get", srv.URL+"/users?b=2&a=1", "-q", "page=2", "-H", "X-Token: secret", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "▶ REQUEST: GET "+srv.URL+"/users?a=1&b=2&page=2")
	assert.Contains(t, out, "X-Token: secret")
	assert.Contains(t, out, "◀ RESPONSE: 200 OK")
	assert.Contains(t, out, `"name": "Ada"`)
	assert.Equal(t, int64(1), atomic.LoadInt64(hits))
}

func TestGetCommandJSONOutput(t *testing.T) {
	srv, _ := echoServer(t)

	out, _, err := run(t, "get", srv.URL+"/items", "-H", "X-Token: abc", "-c", "text/csv", "-o", "json")
	require.NoError(t, err)

	doc := decodeResponse(t, out)
	assert.Equal(t, 200, doc.Response.StatusCode)
	assert.Equal(t, "GET", doc.Response.Headers["X-Method"])
	assert.Equal(t, "abc", doc.Response.Headers["X-Got-Token"])
	assert.Equal(t, "text/csv", doc.Response.Headers["X-Got-Accept"])
}

func TestPostCommandJSONBody(t *testing.T) {
	srv, _ := echoServer(t)

	out, _, err := run(t, "post", srv.URL+"/users", "-j", `{"name":"Grace"}`, "-o", "json")
	require.NoError(t, err)

	doc := decodeResponse(t, out)
	assert.Equal(t, "POST", doc.Response.Headers["X-Method"])
	assert.Equal(t, "application/json", doc.Response.Headers["X-Got-Accept"])
	assert.JSONEq(t, `{"name":"Grace"}`, string(doc.Response.Body))
}

func TestPutCommandDataFromFile(t *testing.T) {
	srv, _ := echoServer(t)
	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0644))

	out, _, err := run(t, "put", srv.URL+"/users/1", "-d", "@"+path, "-o", "json")
	require.NoError(t, err)

	doc := decodeResponse(t, out)
	assert.Equal(t, "PUT", doc.Response.Headers["X-Method"])
	assert.JSONEq(t, `{"from":"file"}`, string(doc.Response.Body))
}

func TestDeleteCommand(t *testing.T) {
	srv, _ := echoServer(t)

	out, _, err := run(t, "delete", srv.URL+"/users/1", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", decodeResponse(t, out).Response.Headers["X-Method"])
}

func TestHeadCommand(t *testing.T) {
	srv, _ := echoServer(t)

	out, _, err := run(t, "head", srv.URL+"/", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "▶ REQUEST: HEAD")
	assert.Contains(t, out, "◀ RESPONSE: 200 OK")
	assert.NotContains(t, out, "Body:")
}

func TestVerboseTraceGoesToStderr(t *testing.T) {
	srv, _ := echoServer(t)

	out, errOut, err := run(t, "get", srv.URL+"/trace", "-v", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, errOut, "=> Send header")
	assert.Contains(t, errOut, "<= Recv header")
	assert.NotContains(t, out, "=> Send header")
}

func TestCommandErrors(t *testing.T) {
	srv, _ := echoServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"get rejects a body", []string{"get", srv.URL, "-d", "x"}, "unknown shorthand flag"},
		{"bad header", []string{"get", srv.URL, "-H", "NoColon"}, "invalid header"},
		{"data and json", []string{"post", srv.URL, "-d", "a", "-j", "{}"}, "mutually exclusive"},
		{"bad output", []string{"get", srv.URL, "-o", "xml"}, "unknown output format"},
		{"bad repeat", []string{"get", srv.URL, "-n", "0"}, "--repeat"},
		{"bad log level", []string{"get", srv.URL, "--log-level", "loud"}, "invalid log level"},
		{"missing host", []string{"get", "http:///path"}, "missing host"},
		{"repeated query key", []string{"get", srv.URL + "/?tag=a&tag=b"}, `query key "tag" repeated`},
		{"missing url", []string{"get"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTransferFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, _, err := run(t, "get", url)
	var terr *oshttp.TransferError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, oshttp.CodeCouldNotConnect, terr.Code)
}

func TestExtractAndSchema(t *testing.T) {
	srv, _ := echoServer(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"type":"object","required":["id"]}`), 0644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"type":"object","required":["email"]}`), 0644))

	out, _, err := run(t, "get", srv.URL, "-e", "name=name", "-e", "missing=nope", "--schema", good, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ name = Ada")
	assert.Contains(t, out, "✗ missing")
	assert.Contains(t, out, "✓ Schema: valid")

	out, _, err = run(t, "get", srv.URL, "--schema", bad, "--no-color")
	require.ErrorIs(t, err, errSchemaMismatch)
	assert.Contains(t, out, "✗ Schema: invalid")
}

func TestRepeatWithHistory(t *testing.T) {
	srv, hits := echoServer(t)
	db := filepath.Join(t.TempDir(), "history.db")

	out, _, err := run(t, "get", srv.URL+"/ping", "-n", "3", "--rate", "1000", "--history", db, "--no-color")
	require.NoError(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(hits))
	assert.Equal(t, 1, strings.Count(out, "▶ REQUEST"))
	assert.Contains(t, out, "◆ SUMMARY")
	assert.Contains(t, out, "Exchanges: 3 (0 failed)")
	assert.Contains(t, out, "Statuses:  200 x3")

	out, _, err = run(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, srv.URL+"/ping"))

	out, _, err = run(t, "history", "--db", db, "--limit", "1", "-o", "json")
	require.NoError(t, err)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "GET", entries[0]["method"])
	assert.Equal(t, float64(200), entries[0]["status"])
}

func TestRepeatFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	db := filepath.Join(t.TempDir(), "history.db")

	out, _, err := run(t, "get", url, "-n", "2", "--history", db, "--no-color")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 exchanges failed")
	assert.Contains(t, out, "Exchanges: 2 (2 failed)")

	out, _, err = run(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "error"))
}

func TestRepeatSummaryIgnoresFailedLatency(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1)%2 == 0 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		time.Sleep(30 * time.Millisecond)
		w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	out, _, err := run(t, "get", srv.URL, "-n", "4", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 4 exchanges failed")

	var summary struct {
		Count    int64         `json:"count"`
		Failures int64         `json:"failures"`
		Min      time.Duration `json:"min"`
	}
	dec := json.NewDecoder(strings.NewReader(out))
	for {
		var raw map[string]json.RawMessage
		require.NoError(t, dec.Decode(&raw), "no summary document in %q", out)
		if data, ok := raw["summary"]; ok {
			require.NoError(t, json.Unmarshal(data, &summary))
			break
		}
	}
	assert.Equal(t, int64(4), summary.Count)
	assert.Equal(t, int64(2), summary.Failures)
	// only the two slow successes reach the histogram
	assert.GreaterOrEqual(t, summary.Min, 25*time.Millisecond)
}

func TestHistoryEmpty(t *testing.T) {
	out, _, err := run(t, "history", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No exchanges recorded.")
}

func TestRootHelp(t *testing.T) {
	out, _, err := run(t)
	require.NoError(t, err)
	for _, sub := range []string{"get", "head", "post", "put", "delete", "run", "history"} {
		assert.Contains(t, out, sub)
	}
}
