package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized,
		ErrInternal, ErrBadGateway, ErrGatewayTimeout,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "STORE_FAILURE", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "STORE_FAILURE")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "CUSTOMER_NOT_FOUND", Message: "customer not found"}
	assert.Equal(t, "CUSTOMER_NOT_FOUND: customer not found", appErr.Error())
}

func TestNotFound_ResourceSpecificCode(t *testing.T) {
	tests := []struct {
		resource string
		code     string
	}{
		{"customer", "CUSTOMER_NOT_FOUND"},
		{"favorite", "FAVORITE_NOT_FOUND"},
		{"product", "PRODUCT_NOT_FOUND"},
		{"favorite product", "FAVORITE_PRODUCT_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.resource, func(t *testing.T) {
			err := NotFound(tt.resource)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, http.StatusNotFound, err.Status)
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestMissingParameter(t *testing.T) {
	err := MissingParameter("user_id")
	assert.Equal(t, "MISSING_PARAMETER", err.Code)
	assert.Equal(t, "user_id is required", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := Internal("STORE_FAILURE", cause)

	assert.Equal(t, "STORE_FAILURE", err.Code)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.NotContains(t, err.Message, "relation")
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestInternal_DefaultCode(t *testing.T) {
	assert.Equal(t, "INTERNAL_ERROR", Internal("", errors.New("x")).Code)
}

func TestUpstream(t *testing.T) {
	t.Run("deadline", func(t *testing.T) {
		err := Upstream("shopify", fmt.Errorf("post: %w", context.DeadlineExceeded))
		assert.Equal(t, "REMOTE_TIMEOUT", err.Code)
		assert.Equal(t, http.StatusGatewayTimeout, err.Status)
		assert.True(t, errors.Is(err, ErrGatewayTimeout))
	})

	t.Run("other failure", func(t *testing.T) {
		err := Upstream("shopify", errors.New("status 503"))
		assert.Equal(t, "REMOTE_FETCH_FAILURE", err.Code)
		assert.Equal(t, http.StatusBadGateway, err.Status)
		assert.True(t, errors.Is(err, ErrBadGateway))
	})
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("product"), http.StatusNotFound},
		{"wrapped app error", Wrap(MissingParameter("user_id"), "handler"), http.StatusBadRequest},
		{"sentinel not found", Wrap(ErrNotFound, "lookup"), http.StatusNotFound},
		{"sentinel unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"sentinel bad gateway", ErrBadGateway, http.StatusBadGateway},
		{"sentinel timeout", ErrGatewayTimeout, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestWrap_PreservesChain(t *testing.T) {
	err := Wrap(ErrNotFound, "get favorite")
	require.Error(t, err)
	assert.Equal(t, "get favorite: resource not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}
