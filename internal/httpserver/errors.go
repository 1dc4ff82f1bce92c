package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/1broseidon/director/client"
	"github.com/1broseidon/director/director"
	"github.com/1broseidon/director/session"
)

// errBadUpload marks a rejected multipart upload.
var errBadUpload = errors.New("invalid upload")

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Code      string `json:"code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// classify maps an error to its HTTP status and a stable code.
func classify(err error) (int, string) {
	var (
		blocked    *director.ContentBlocked
		planning   *director.PlanningFailure
		generation *director.GenerationFailure
	)
	switch {
	case errors.Is(err, director.ErrCredentialMissing):
		return http.StatusUnauthorized, "credential_missing"
	case errors.As(err, &blocked):
		return http.StatusUnprocessableEntity, "content_blocked"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &planning):
		return http.StatusBadGateway, "planning_failed"
	case errors.As(err, &generation):
		return http.StatusBadGateway, "generation_failed"
	case errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict, "conflict"
	case errors.Is(err, session.ErrEmptyRequest),
		errors.Is(err, client.ErrEmptyAPIKey),
		errors.Is(err, errBadUpload):
		return http.StatusBadRequest, "invalid_request"
	}
	return http.StatusInternalServerError, "internal"
}

// HandleError aborts the request with the status and code matching err.
func HandleError(c *gin.Context, err error) {
	status, code := classify(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Error:     err.Error(),
		RequestID: GetRequestID(c),
	})
}
