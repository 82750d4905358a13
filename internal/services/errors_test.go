package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/store"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{Code: "TEST_ERROR", Message: "Test error message"}
	assert.Equal(t, "Test error message", err.Error())
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	err := NewServiceErrorWithDetails(CodeInvalidSample, "bad", map[string]interface{}{"index": 2})

	assert.Equal(t, CodeInvalidSample, err.Code)
	assert.Equal(t, 2, err.Details["index"])

	data, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"code":"INVALID_SAMPLE","message":"bad","details":{"index":2}}`, string(data))

	plain, _ := json.Marshal(NewServiceError(CodeStoreError, "down"))
	assert.NotContains(t, string(plain), "details")
}

func TestFromStoreError(t *testing.T) {
	notFound := fromStoreError(fmt.Errorf("get: %w", store.ErrSessionNotFound), "s1")
	assert.Equal(t, CodeSessionNotFound, notFound.Code)
	assert.Equal(t, "s1", notFound.Details["session_id"])

	ended := fromStoreError(fmt.Errorf("append: %w", store.ErrSessionEnded), "s1")
	assert.Equal(t, CodeSessionEnded, ended.Code)
	assert.Equal(t, "s1", ended.Details["session_id"])

	other := fromStoreError(errors.New("connection refused"), "s1")
	assert.Equal(t, CodeStoreError, other.Code)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(errors.New("io timeout")))
	assert.True(t, IsTransient(NewServiceError(CodeStoreError, "down")))
	assert.False(t, IsTransient(NewServiceError(CodeInvalidSample, "bad")))
	assert.False(t, IsTransient(fmt.Errorf("wrapped: %w", NewServiceError(CodeSessionNotFound, "gone"))))
	assert.Equal(t, "", ErrorCode(errors.New("x")))
}
