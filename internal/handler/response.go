package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps the gateway error taxonomy onto HTTP statuses.
// Upstream service failures surface as 502 so the UI can distinguish
// a retryable backend outage from a gateway bug.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := err.(*apperrors.AppError); ok {
		message = appErr.Message
		switch appErr.Code {
		case apperrors.ErrValidation:
			status = http.StatusBadRequest
		case apperrors.ErrUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.ErrNotFound:
			status = http.StatusNotFound
		case apperrors.ErrService:
			status = http.StatusBadGateway
		}
	}

	c.JSON(status, NewErrorResponse(message))
}
