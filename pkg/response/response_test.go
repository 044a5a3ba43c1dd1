package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_UsesStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	Conflict(rec, "Slot is no longer available")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "conflict", body.Error)
	assert.Equal(t, "Slot is no longer available", body.Message)
}

func TestValidationError_CarriesFieldDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"email": "email must be a valid email address"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_failed", body["error"])
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "email")
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, 3, NewMeta(1, 10, 21).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 10, 0).TotalPages)
	assert.Equal(t, 1, NewMeta(1, 50, 50).TotalPages)
}
