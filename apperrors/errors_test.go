package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("contact.name is required"), http.StatusBadRequest},
		{"not found", NotFound("Order not found"), http.StatusNotFound},
		{"unauthorized", Unauthorized("invalid token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("admin already exists"), http.StatusForbidden},
		{"conflict", Conflict("attachment already uploaded"), http.StatusConflict},
		{"storage", Storage(errors.New("dial tcp"), "failed to save order"), http.StatusInternalServerError},
		{"rate limit", New(CodeRateLimit, "slow down"), http.StatusTooManyRequests},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped typed", fmt.Errorf("controller: %w", NotFound("Order not found")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage_HidesStorageCause(t *testing.T) {
	err := Storage(errors.New("pq: password authentication failed"), "failed to save order")

	assert.Equal(t, "Something went wrong, please try again", PublicMessage(err))
	assert.Contains(t, err.Error(), "password authentication failed")
}

func TestPublicMessage_ExposesClientErrors(t *testing.T) {
	assert.Equal(t, "Order not found", PublicMessage(NotFound("Order not found")))
	assert.Equal(t, "Invalid request data", PublicMessage(Validation("")))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw")))
}

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("Order not found"))

	assert.True(t, errors.Is(err, NotFound("")))
	assert.False(t, errors.Is(err, Validation("")))
	assert.True(t, HasCode(err, CodeNotFound))
}

func TestUnwrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage(cause, "failed to list orders")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeStorage, CodeOf(err))
}

func TestNilError(t *testing.T) {
	var err *Error
	assert.Equal(t, CodeInternal, err.Code())
	assert.Equal(t, "", err.Message())
	assert.Equal(t, "", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.Nil(t, As(nil))
}
