package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	oshttp "github.com/wesleyorama2/oneshot/http"
	"github.com/wesleyorama2/oneshot/nettransport"
)

// newTestCall builds a POST call with two headers and a JSON body. It is
// never performed.
func newTestCall(t *testing.T) *oshttp.Call {
	t.Helper()
	call, err := oshttp.Post(nettransport.New(), "https://api.example.com", "/users",
		[]byte(`{"name":"John Doe","age":30}`))
	require.NoError(t, err)
	t.Cleanup(func() { call.Close() })

	call.AddHeader("X-Trace", "abc")
	call.AddHeader("Authorization", "Bearer token123")
	return call
}

func newTestResponse() *oshttp.Response {
	headers := oshttp.NewParams()
	headers.Set("HTTP/1.1 200 OK", oshttp.HeaderPresent)
	headers.Set("Content-Type", "application/json")
	headers.Set("X-Rate-Limit", "100")
	return &oshttp.Response{
		StatusCode: 200,
		Headers:    headers,
		Body:       []byte(`{"id":1,"name":"John Doe"}`),
		Elapsed:    123 * time.Millisecond,
	}
}
