package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/service/audit"
)

// AuditCleanupWorker trims decision-audit entries past the retention
// window on a fixed schedule.
type AuditCleanupWorker struct {
	auditor   *audit.Service
	retention time.Duration
	interval  time.Duration
}

func NewAuditCleanupWorker(auditor *audit.Service, retention, interval time.Duration) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		auditor:   auditor,
		retention: retention,
		interval:  interval,
	}
}

// Start blocks until the context is cancelled; run it on its own
// goroutine.
func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := w.auditor.Cleanup(ctx, w.retention)
			if err != nil {
				log.Error().Err(err).Msg("audit cleanup failed")
				continue
			}
			if removed > 0 {
				log.Info().Int64("removed", removed).Msg("trimmed decision audit trail")
			}
		}
	}
}
