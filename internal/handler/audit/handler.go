package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-gateway/internal/handler"
	"github.com/jwalitptl/triage-gateway/internal/repository"
	auditService "github.com/jwalitptl/triage-gateway/internal/service/audit"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

const defaultListLimit = 100

type Handler struct {
	svc *auditService.Service
}

func NewHandler(svc *auditService.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit", h.List)
}

// List queries the decision trail. Returns 404 when the gateway runs
// without a database.
func (h *Handler) List(c *gin.Context) {
	filters := &repository.AuditFilters{
		Clinician: c.Query("clinician"),
		Action:    c.Query("action"),
		FlowID:    c.Query("flow_id"),
		Limit:     defaultListLimit,
	}

	if since := c.Query("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			handler.RespondError(c, apperrors.Validation("since must be an RFC3339 timestamp", err))
			return
		}
		filters.Since = parsed
	}
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 1 {
			handler.RespondError(c, apperrors.Validation("limit must be a positive integer", err))
			return
		}
		filters.Limit = parsed
	}

	entries, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}
