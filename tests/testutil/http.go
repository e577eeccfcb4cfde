package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/dto"
)

// Envelope is the decoded API response with its data left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *dto.ErrorInfo  `json:"error,omitempty"`
}

// PostXML sends body as application/xml to path.
func PostXML(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return Perform(t, h, http.MethodPost, path, "application/xml", bytes.NewBufferString(body))
}

// PostJSON sends v encoded as JSON to path.
func PostJSON(t *testing.T, h http.Handler, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal request body")
	return Perform(t, h, http.MethodPost, path, "application/json", bytes.NewReader(data))
}

// Get sends a GET request to path.
func Get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	return Perform(t, h, http.MethodGet, path, "", nil)
}

// Perform serves one request and returns the recorder.
func Perform(t *testing.T, h http.Handler, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope parses the response envelope.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response: %s", w.Body.String())
	return env
}

// DataAs decodes the data member of a successful response into T.
func DataAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, "Expected success, got %s", w.Body.String())

	var result T
	require.NoError(t, json.Unmarshal(env.Data, &result), "Failed to parse response data")
	return result
}

// AssertErrorResponse asserts the status and error code of a failed response
// and returns its message.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code string) string {
	t.Helper()
	assert.Equal(t, status, w.Code, "Unexpected status code: %s", w.Body.String())

	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code, "Unexpected error code")
	return env.Error.Message
}
