package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeNotFound           ErrorCode = "COMMON_004"
	ErrCodeConflict           ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
	ErrCodeTimeout            ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_009"
	ErrCodeSerialization      ErrorCode = "COMMON_010"
	ErrCodeUnknown            ErrorCode = "COMMON_099"

	// CodeOK is the sentinel returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Intelligence source error codes. These three degrade a single source to a
// neutral result; they never fail an assessment.
const (
	ErrCodeSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeSourceTimeout     ErrorCode = "SRC_002"
	ErrCodeSourceMalformed   ErrorCode = "SRC_003"
	ErrCodeSourceRateLimited ErrorCode = "SRC_004"
	ErrCodeSourceAuthFailed  ErrorCode = "SRC_005"
)

// Assessment error codes.
const (
	// ErrCodeAggregationFailure is the only failure mode that aborts an
	// assessment: invalid weights or a broken internal invariant.
	ErrCodeAggregationFailure ErrorCode = "RISK_001"
	ErrCodeAssessmentInvalid  ErrorCode = "RISK_002"
	ErrCodeAssessmentNotFound ErrorCode = "RISK_003"
)

// Infrastructure error codes.
const (
	ErrCodeCacheError    ErrorCode = "INFRA_001"
	ErrCodeGraphError    ErrorCode = "INFRA_002"
	ErrCodeDatabaseError ErrorCode = "INFRA_003"
	ErrCodePublishError  ErrorCode = "INFRA_004"
	ErrCodeStorageError  ErrorCode = "INFRA_005"
)

// AI summarizer error codes.
const (
	ErrCodeAIUnavailable ErrorCode = "AI_001"
	ErrCodeAIBadResponse ErrorCode = "AI_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeUnknown:            http.StatusInternalServerError,

	ErrCodeSourceUnavailable: http.StatusServiceUnavailable,
	ErrCodeSourceTimeout:     http.StatusGatewayTimeout,
	ErrCodeSourceMalformed:   http.StatusBadGateway,
	ErrCodeSourceRateLimited: http.StatusTooManyRequests,
	ErrCodeSourceAuthFailed:  http.StatusBadGateway,

	ErrCodeAggregationFailure: http.StatusInternalServerError,
	ErrCodeAssessmentInvalid:  http.StatusBadRequest,
	ErrCodeAssessmentNotFound: http.StatusNotFound,

	ErrCodeCacheError:    http.StatusInternalServerError,
	ErrCodeGraphError:    http.StatusInternalServerError,
	ErrCodeDatabaseError: http.StatusInternalServerError,
	ErrCodePublishError:  http.StatusInternalServerError,
	ErrCodeStorageError:  http.StatusInternalServerError,

	ErrCodeAIUnavailable: http.StatusServiceUnavailable,
	ErrCodeAIBadResponse: http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeUnknown:            "unknown error",

	ErrCodeSourceUnavailable: "intelligence source unavailable",
	ErrCodeSourceTimeout:     "intelligence source timed out",
	ErrCodeSourceMalformed:   "intelligence source returned malformed data",
	ErrCodeSourceRateLimited: "intelligence source rate limited",
	ErrCodeSourceAuthFailed:  "intelligence source authentication failed",

	ErrCodeAggregationFailure: "risk aggregation failed",
	ErrCodeAssessmentInvalid:  "invalid assessment request",
	ErrCodeAssessmentNotFound: "assessment not found",

	ErrCodeCacheError:    "cache error",
	ErrCodeGraphError:    "relationship graph error",
	ErrCodeDatabaseError: "database error",
	ErrCodePublishError:  "event publish error",
	ErrCodeStorageError:  "object storage error",

	ErrCodeAIUnavailable: "AI summarizer unavailable",
	ErrCodeAIBadResponse: "AI summarizer returned an unusable response",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
