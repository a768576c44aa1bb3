package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{apperrors.Validation("bad category", nil), http.StatusBadRequest},
		{apperrors.Unauthorized(nil), http.StatusUnauthorized},
		{apperrors.NotFound("triage flow", nil), http.StatusNotFound},
		{apperrors.Service("classifier failed", nil), http.StatusBadGateway},
		{apperrors.Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		RespondError(c, tt.err)
		assert.Equal(t, tt.status, w.Code)
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, errors.New("db password leaked"))

	assert.NotContains(t, w.Body.String(), "db password leaked")
	assert.Contains(t, w.Body.String(), "internal server error")
}
