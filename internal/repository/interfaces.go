package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

// AuditRepository persists the triage decision trail.
type AuditRepository interface {
	Create(ctx context.Context, entry *model.DecisionAudit) error
	List(ctx context.Context, filters *AuditFilters) ([]*model.DecisionAudit, error)
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}

// AuditFilters narrows a decision-trail listing.
type AuditFilters struct {
	Clinician string
	Action    string
	FlowID    string
	Since     time.Time
	Limit     int
}
