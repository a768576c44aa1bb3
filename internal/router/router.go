package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-gateway/internal/config"
	"github.com/jwalitptl/triage-gateway/internal/handler"
	auditHandler "github.com/jwalitptl/triage-gateway/internal/handler/audit"
	authHandler "github.com/jwalitptl/triage-gateway/internal/handler/auth"
	occupancyHandler "github.com/jwalitptl/triage-gateway/internal/handler/occupancy"
	patientHandler "github.com/jwalitptl/triage-gateway/internal/handler/patient"
	templateHandler "github.com/jwalitptl/triage-gateway/internal/handler/template"
	triageHandler "github.com/jwalitptl/triage-gateway/internal/handler/triage"
	"github.com/jwalitptl/triage-gateway/internal/middleware"
)

// Handler registers routes on an authenticated group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine *gin.Engine
}

func NewRouter(
	cfg *config.Config,
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	triageH *triageHandler.Handler,
	occupancyH *occupancyHandler.Handler,
	patientH *patientHandler.Handler,
	templateH *templateHandler.Handler,
	auditH *auditHandler.Handler,
	h *handler.Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.CORS())
	if cfg.RateLimit.Enabled {
		engine.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	engine.GET("/health/live", h.LivenessCheck)
	engine.GET("/health/ready", h.ReadinessCheck)
	engine.GET("/metrics", h.MetricsHandler)

	public := engine.Group("/api/v1")
	private := engine.Group("/api/v1")
	private.Use(auth.Authenticate())

	authH.RegisterRoutes(public, private)
	for _, hh := range []Handler{triageH, occupancyH, patientH, templateH, auditH} {
		hh.RegisterRoutes(private)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
