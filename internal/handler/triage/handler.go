package triage

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-gateway/internal/handler"
	"github.com/jwalitptl/triage-gateway/internal/middleware"
	"github.com/jwalitptl/triage-gateway/internal/model"
	triageService "github.com/jwalitptl/triage-gateway/internal/service/triage"
)

type Handler struct {
	svc *triageService.Service
}

func NewHandler(svc *triageService.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	triage := r.Group("/triage")
	{
		triage.POST("/preview", h.Preview)
		triage.GET("/flows/:id", h.GetFlow)
		triage.PUT("/flows/:id/selection", h.Select)
		triage.POST("/flows/:id/confirm", h.Confirm)
		triage.DELETE("/flows/:id", h.Discard)
	}
}

// previewRequest accepts either typed vitals or the raw string form
// the triage UI submits.
type previewRequest struct {
	Vitals *model.Vitals     `json:"vitals"`
	Form   map[string]string `json:"form"`
}

func (h *Handler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	vitals := req.Vitals
	if vitals == nil {
		parsed, err := triageService.ParseVitalsForm(req.Form)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		vitals = parsed
	}

	sess := middleware.SessionFromContext(c)
	result, err := h.svc.Preview(c.Request.Context(), sess, vitals)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) GetFlow(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	result, err := h.svc.GetFlow(sess, c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

type selectionRequest struct {
	Category   int    `json:"category" binding:"required,min=1,max=5"`
	Department string `json:"department" binding:"required"`
}

func (h *Handler) Select(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sess := middleware.SessionFromContext(c)
	result, err := h.svc.Select(c.Request.Context(), sess, c.Param("id"), req.Category, req.Department)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Confirm(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	result, err := h.svc.Confirm(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}

func (h *Handler) Discard(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if err := h.svc.Discard(sess, c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("flow discarded"))
}
