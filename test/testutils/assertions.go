// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

// DecodeJSON asserts the recorded status and decodes the body into out.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, status int, out interface{}) {
	t.Helper()
	require.Equal(t, status, rec.Code, "unexpected status, body: %s", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
}

// AssertAPIError asserts an error envelope with the given status and code.
func AssertAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, code apperrors.ErrorCode) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	DecodeJSON(t, rec, status, &body)
	assert.False(t, body.Success)
	assert.Equal(t, code, body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
	return body
}
