package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/config"
	"github.com/jwalitptl/triage-gateway/internal/handler"
	auditHandler "github.com/jwalitptl/triage-gateway/internal/handler/audit"
	authHandler "github.com/jwalitptl/triage-gateway/internal/handler/auth"
	occupancyHandler "github.com/jwalitptl/triage-gateway/internal/handler/occupancy"
	patientHandler "github.com/jwalitptl/triage-gateway/internal/handler/patient"
	templateHandler "github.com/jwalitptl/triage-gateway/internal/handler/template"
	triageHandler "github.com/jwalitptl/triage-gateway/internal/handler/triage"
	"github.com/jwalitptl/triage-gateway/internal/middleware"
	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/repository/postgres"
	"github.com/jwalitptl/triage-gateway/internal/router"
	"github.com/jwalitptl/triage-gateway/internal/service/audit"
	occupancyService "github.com/jwalitptl/triage-gateway/internal/service/occupancy"
	templateService "github.com/jwalitptl/triage-gateway/internal/service/template"
	triageService "github.com/jwalitptl/triage-gateway/internal/service/triage"
	"github.com/jwalitptl/triage-gateway/internal/session"
	"github.com/jwalitptl/triage-gateway/internal/upstream"
	"github.com/jwalitptl/triage-gateway/pkg/logger"
	"github.com/jwalitptl/triage-gateway/pkg/messaging"
	redisBroker "github.com/jwalitptl/triage-gateway/pkg/messaging/redis"
	"github.com/jwalitptl/triage-gateway/pkg/metrics"
	"github.com/jwalitptl/triage-gateway/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(nil)
	log.Logger = *lg.Zerolog()

	m := metrics.NewMetrics("triage_gateway")

	// Audit trail is optional; without a database decisions are still
	// logged, just not queryable.
	var auditor *audit.Service
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		auditor = audit.NewService(postgres.NewAuditRepository(db))

		cleanup := worker.NewAuditCleanupWorker(auditor, cfg.Audit.Retention, cfg.Audit.CleanupInterval)
		go cleanup.Start(auditCtx)
	} else {
		auditor = audit.NewService(nil)
	}

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{URL: cfg.Redis.URL}, lg.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	// Upstream clients share one transport so auth rejection handling
	// and metrics stay in one place.
	client := upstream.NewClient(cfg.Upstream.Timeout, m)
	authSvc := upstream.NewAuthService(client, cfg.Upstream.AuthURL)
	classifier := upstream.NewClassifierService(client, cfg.Upstream.ClassifierURL)
	patients := upstream.NewPatientService(client, cfg.Upstream.PatientsURL)
	occupancySource := upstream.NewOccupancySource(client, cfg.Upstream.OccupancyURL)
	templateSource := upstream.NewTemplateSource(client, cfg.Upstream.TemplatesURL)

	sessions := session.NewStore(cfg.Session.DefaultTTL, cfg.Session.CleanupInterval)
	client.OnAuthReject(func(sessionID string) {
		sessions.Terminate(sessionID, model.TerminationAuthRejected)
	})

	monitors := occupancyService.NewManager(occupancySource, cfg.Occupancy.PollInterval, cfg.Occupancy.SettleDelay, m)

	triageSvc := triageService.NewService(classifier, patients, monitors, auditor, broker, m, triageService.Config{
		FallbackDepartments: cfg.Triage.FallbackDepartments,
		FlowTTL:             cfg.Triage.FlowTTL,
		ConfirmCloseDelay:   cfg.Triage.ConfirmCloseDelay,
	})
	templateSvc := templateService.NewService(templateSource)

	// Whatever ends a session takes its monitor and open flows with it.
	sessions.OnTerminate(func(sessionID string, reason model.TerminationReason) {
		monitors.StopForSession(sessionID)
		triageSvc.DiscardSession(sessionID)
		m.ActiveSessions.Dec()
		m.SessionTerminations.WithLabelValues(string(reason)).Inc()
	})

	authMiddleware := middleware.NewAuthMiddleware(sessions)

	r := router.NewRouter(
		cfg,
		authMiddleware,
		authHandler.NewHandler(authSvc, sessions, monitors, m),
		triageHandler.NewHandler(triageSvc),
		occupancyHandler.NewHandler(monitors, cfg.Triage.FallbackDepartments),
		patientHandler.NewHandler(patients),
		templateHandler.NewHandler(templateSvc),
		auditHandler.NewHandler(auditor),
		handler.NewHandler(),
	)

	listenCtx, stopListen := context.WithCancel(context.Background())
	defer stopListen()
	if broker != nil {
		go monitors.Listen(listenCtx, broker)
	}

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting triage gateway")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	stopListen()
	monitors.StopAll()
	log.Info().Msg("server exited properly")
}
