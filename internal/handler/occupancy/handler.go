package occupancy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-gateway/internal/handler"
	"github.com/jwalitptl/triage-gateway/internal/middleware"
	occupancyService "github.com/jwalitptl/triage-gateway/internal/service/occupancy"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

type Handler struct {
	monitors            *occupancyService.Manager
	fallbackDepartments []string
}

func NewHandler(monitors *occupancyService.Manager, fallbackDepartments []string) *Handler {
	return &Handler{monitors: monitors, fallbackDepartments: fallbackDepartments}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	occ := r.Group("/occupancy")
	{
		occ.GET("", h.Snapshot)
		occ.GET("/:department/forecast", h.Forecast)
		occ.GET("/alternatives", h.Alternatives)
	}
}

type snapshotResponse struct {
	Snapshot interface{} `json:"snapshot"`
	Stale    bool        `json:"stale"`
}

// Snapshot serves the session's latest occupancy picture. A poll
// failure never errors here: the previous snapshot is served with the
// stale flag set.
func (h *Handler) Snapshot(c *gin.Context) {
	mon, ok := h.monitor(c)
	if !ok {
		return
	}

	snap, stale := mon.Snapshot()
	if snap == nil {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(snapshotResponse{Stale: stale}))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(snapshotResponse{Snapshot: snap, Stale: stale}))
}

func (h *Handler) Forecast(c *gin.Context) {
	mon, ok := h.monitor(c)
	if !ok {
		return
	}

	department := c.Param("department")
	points, ok := mon.Forecast(department)
	if !ok {
		handler.RespondError(c, apperrors.NotFound("department", nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"department": department,
		"points":     points,
	}))
}

func (h *Handler) Alternatives(c *gin.Context) {
	mon, ok := h.monitor(c)
	if !ok {
		return
	}

	assigned := c.Query("department")
	if assigned == "" {
		handler.RespondError(c, apperrors.Validation("department query parameter is required", nil))
		return
	}

	alternatives := mon.Alternatives(assigned, h.fallbackDepartments)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(alternatives))
}

func (h *Handler) monitor(c *gin.Context) (*occupancyService.Monitor, bool) {
	sess := middleware.SessionFromContext(c)
	mon, ok := h.monitors.Get(sess.ID)
	if !ok {
		handler.RespondError(c, apperrors.NotFound("occupancy monitor", nil))
		return nil, false
	}
	return mon, true
}
