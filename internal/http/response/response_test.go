package response

import (
	"encoding/json/v2"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_WritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/papers/42", nil)

	Error(w, r, 404, "NOT_FOUND", "Paper not found", nil)

	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, "Paper not found", body.Message)
	assert.Equal(t, "/api/papers/42", body.Path)
	assert.NotEmpty(t, body.Timestamp)
	assert.Empty(t, body.Details)
}

func TestTooManyRequests(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/papers", nil)

	TooManyRequests(w, r, nil)

	assert.Equal(t, 429, w.Code)

	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Code)
	assert.Equal(t, "/api/papers", body.Path)
}

func TestInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/papers", nil)

	InternalError(w, r, nil)

	assert.Equal(t, 500, w.Code)

	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
}
