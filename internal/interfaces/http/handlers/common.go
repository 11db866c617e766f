// Package handlers implements the HTTP endpoints of the assessment API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/risknet/pkg/errors"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an error onto the coded response envelope. AppErrors
// carry their own HTTP status; anything else is masked as a generic
// internal error so infrastructure detail never leaks to callers.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	msg := errors.DefaultMessageForCode(code)
	if errors.IsClientError(code) {
		// Client mistakes get the specific message so they can fix the request.
		msg = err.Error()
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Code: string(code), Message: msg})
}
