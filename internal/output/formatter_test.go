package output

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	oshttp "github.com/wesleyorama2/oneshot/http"
	"github.com/wesleyorama2/oneshot/internal/expect"
	"github.com/wesleyorama2/oneshot/internal/stats"
)

func TestFormatter_FormatRequest(t *testing.T) {
	f := NewFormatter(false, true)
	out := f.FormatRequest(newTestCall(t))

	assert.Contains(t, out, "▶ REQUEST: POST https://api.example.com/users")
	assert.Contains(t, out, "X-Trace: abc")
	assert.Contains(t, out, "Authorization: Bearer token123")
	assert.Less(t, strings.Index(out, "X-Trace"), strings.Index(out, "Authorization"),
		"headers keep insertion order")
	assert.Contains(t, out, `"name": "John Doe"`)
}

func TestFormatter_FormatResponse(t *testing.T) {
	resp := newTestResponse()

	t.Run("quiet", func(t *testing.T) {
		out := NewFormatter(false, true).FormatResponse(resp)
		assert.Contains(t, out, "◀ RESPONSE: 200 OK (123ms, 26 B)")
		assert.NotContains(t, out, "X-Rate-Limit")
		assert.Contains(t, out, `"id": 1`)
	})

	t.Run("verbose", func(t *testing.T) {
		out := NewFormatter(true, true).FormatResponse(resp)
		assert.Contains(t, out, "Content-Type: application/json")
		assert.Contains(t, out, "X-Rate-Limit: 100")
		assert.NotContains(t, out, oshttp.HeaderPresent)
	})

	t.Run("no status line", func(t *testing.T) {
		out := NewFormatter(false, true).FormatResponse(&oshttp.Response{
			StatusCode: 404,
			Headers:    oshttp.NewParams(),
		})
		assert.Contains(t, out, "◀ RESPONSE: 404 (0ms, 0 B)")
		assert.NotContains(t, out, "Body:")
	})
}

func TestFormatter_FormatExtractions(t *testing.T) {
	f := NewFormatter(false, true)
	assert.Empty(t, f.FormatExtractions(nil))

	out := f.FormatExtractions([]expect.Extraction{
		{Name: "id", Path: "$.id", Value: "1"},
		{Name: "missing", Path: "$.nope", Err: errors.New("no value at path")},
	})
	assert.Contains(t, out, "✓ id = 1")
	assert.Contains(t, out, "✗ missing: no value at path")
}

func TestFormatter_FormatSchemaResult(t *testing.T) {
	f := NewFormatter(false, true)
	assert.Equal(t, "  ✓ Schema: valid\n", f.FormatSchemaResult(nil))

	out := f.FormatSchemaResult(expect.ValidationErrors{
		errors.New("validation error at /id: expected integer"),
	})
	assert.Contains(t, out, "✗ Schema: invalid")
	assert.Contains(t, out, "- validation error at /id: expected integer")

	out = f.FormatSchemaResult(errors.New("invalid schema"))
	assert.Contains(t, out, "- invalid schema")
}

func TestFormatter_FormatSummary(t *testing.T) {
	rec := stats.NewRecorder()
	rec.Record(10*time.Millisecond, 200, 100, nil)
	rec.Record(20*time.Millisecond, 500, 50, nil)

	out := NewFormatter(false, true).FormatSummary(rec.Summary())
	assert.True(t, strings.HasPrefix(out, "◆ SUMMARY\n"))
	assert.Contains(t, out, "  Exchanges: 2 (0 failed)")
	assert.Contains(t, out, "  Statuses:  200 x1, 500 x1")
}

func TestFormatJSONString(t *testing.T) {
	assert.Equal(t, "not json", formatJSONString("not json"))
	assert.Equal(t, "{\n    \"a\": 1\n  }", formatJSONString(`{"a":1}`))
}
