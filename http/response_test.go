package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_Header(t *testing.T) {
	resp := newResponse()
	parseHeaderLine(resp.Headers, "HTTP/1.1 301 Moved Permanently\r\n")
	parseHeaderLine(resp.Headers, "HTTP/1.1 200 OK\r\n")
	parseHeaderLine(resp.Headers, "content-type: application/json\r\n")

	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	assert.Equal(t, "application/json", resp.Header("content-type"))
	assert.Empty(t, resp.Header("X-Missing"))
	assert.Equal(t, "HTTP/1.1 200 OK", resp.StatusLine())
}

func TestResponse_JSON(t *testing.T) {
	resp := &Response{StatusCode: 200, Headers: NewParams(), Body: []byte(`{"message":"success","code":200}`)}

	var result struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	require.NoError(t, resp.JSON(&result))
	assert.Equal(t, "success", result.Message)
	assert.Equal(t, 200, result.Code)
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		status                                 int
		success, redirect, client, serverError bool
	}{
		{200, true, false, false, false},
		{204, true, false, false, false},
		{302, false, true, false, false},
		{404, false, false, true, false},
		{503, false, false, false, true},
		{0, false, false, false, false},
	}

	for _, tt := range tests {
		resp := &Response{StatusCode: tt.status}
		assert.Equal(t, tt.success, resp.IsSuccess(), "status %d", tt.status)
		assert.Equal(t, tt.redirect, resp.IsRedirect(), "status %d", tt.status)
		assert.Equal(t, tt.client, resp.IsClientError(), "status %d", tt.status)
		assert.Equal(t, tt.serverError, resp.IsServerError(), "status %d", tt.status)
	}
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "No error", CodeOK.String())
	assert.Equal(t, "Timeout was reached", CodeOperationTimedOut.String())
	assert.Equal(t, "Unknown error", Code(-1).String())
	assert.Equal(t, "Unknown error", Code(1000).String())
}
