package template

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-gateway/internal/handler"
	"github.com/jwalitptl/triage-gateway/internal/middleware"
	templateService "github.com/jwalitptl/triage-gateway/internal/service/template"
)

type Handler struct {
	svc *templateService.Service
}

func NewHandler(svc *templateService.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/templates", h.List)
}

func (h *Handler) List(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	templates, fallback := h.svc.List(c.Request.Context(), sess)

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"templates": templates,
		"fallback":  fallback,
	}))
}
