package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/risknet/pkg/errors"
)

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodeBadRequest, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeSourceUnavailable, http.StatusServiceUnavailable},
		{errors.ErrCodeSourceTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeAggregationFailure, http.StatusInternalServerError},
		{errors.ErrorCode("NOPE_999"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, errors.HTTPStatusForCode(tc.code), "code %s", tc.code)
	}
}

func TestClientServerErrorSplit(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsClientError(errors.ErrCodeBadRequest))
	assert.False(t, errors.IsServerError(errors.ErrCodeBadRequest))
	assert.True(t, errors.IsServerError(errors.ErrCodeGraphError))
	assert.False(t, errors.IsClientError(errors.ErrCodeGraphError))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SRC", errors.ModuleForCode(errors.ErrCodeSourceTimeout))
	assert.Equal(t, "RISK", errors.ModuleForCode(errors.ErrCodeAggregationFailure))
	assert.Equal(t, "COMMON", errors.ModuleForCode(errors.ErrCodeInternal))
}

func TestDefaultMessageForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "intelligence source timed out",
		errors.DefaultMessageForCode(errors.ErrCodeSourceTimeout))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode(errors.ErrorCode("XX_000")))
}
