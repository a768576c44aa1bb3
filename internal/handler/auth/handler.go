package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-gateway/internal/handler"
	"github.com/jwalitptl/triage-gateway/internal/middleware"
	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/service/occupancy"
	"github.com/jwalitptl/triage-gateway/internal/session"
	"github.com/jwalitptl/triage-gateway/internal/upstream"
	"github.com/jwalitptl/triage-gateway/pkg/metrics"
)

type Handler struct {
	auth     upstream.AuthService
	sessions *session.Store
	monitors *occupancy.Manager
	metrics  *metrics.Metrics
}

func NewHandler(auth upstream.AuthService, sessions *session.Store, monitors *occupancy.Manager, m *metrics.Metrics) *Handler {
	return &Handler{auth: auth, sessions: sessions, monitors: monitors, metrics: m}
}

func (h *Handler) RegisterRoutes(public, private *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	private.POST("/auth/logout", h.Logout)
}

// Login relays the credentials to the external auth service, stores
// the issued token in a fresh session and starts the session's
// occupancy monitor.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	sess := h.sessions.Create(req.Email, token)
	h.monitors.StartForSession(sess)

	if h.metrics != nil {
		h.metrics.ActiveSessions.Inc()
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.LoginResponse{
		SessionID: sess.ID,
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
	}))
}

// Logout terminates the session; the store's termination hooks stop
// the monitor, drop any open flows and settle the session gauge.
func (h *Handler) Logout(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	h.sessions.Terminate(sess.ID, model.TerminationLogout)

	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out"))
}
