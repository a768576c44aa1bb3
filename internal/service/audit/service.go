package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/repository"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

// Service records the triage decision trail: what the classifier
// suggested and what the clinician finally chose. Recording is
// best-effort; an audit failure is logged and never blocks the
// clinical workflow.
type Service struct {
	repo repository.AuditRepository
}

// NewService accepts a nil repository, in which case recording is a
// no-op. Keeps the gateway runnable without Postgres.
func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// Entry carries the fields the caller knows; ID and timestamp are
// filled here.
type Entry struct {
	Clinician           string
	Action              string
	FlowID              string
	PredictedCategory   int
	PredictedDepartment string
	FinalCategory       int
	FinalDepartment     string
	PatientID           string
	Detail              string
}

func (s *Service) Record(ctx context.Context, e Entry) {
	if s.repo == nil {
		return
	}

	entry := &model.DecisionAudit{
		ID:                  uuid.New(),
		Clinician:           e.Clinician,
		Action:              e.Action,
		FlowID:              e.FlowID,
		PredictedCategory:   e.PredictedCategory,
		PredictedDepartment: e.PredictedDepartment,
		FinalCategory:       e.FinalCategory,
		FinalDepartment:     e.FinalDepartment,
		PatientID:           e.PatientID,
		Detail:              e.Detail,
		CreatedAt:           time.Now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", e.Action).Str("flow_id", e.FlowID).
			Msg("failed to record decision audit entry")
	}
}

// List returns decision-trail entries matching the filters. Without a
// repository there is no trail to query.
func (s *Service) List(ctx context.Context, filters *repository.AuditFilters) ([]*model.DecisionAudit, error) {
	if s.repo == nil {
		return nil, apperrors.NotFound("audit trail", nil)
	}
	return s.repo.List(ctx, filters)
}

// Cleanup removes entries older than the retention window.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if s.repo == nil {
		return 0, nil
	}
	return s.repo.Cleanup(ctx, time.Now().Add(-retention))
}
