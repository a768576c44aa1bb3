package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/repository"
)

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.DecisionAudit) error {
	query := `
        INSERT INTO decision_audit (
            id, clinician, action, flow_id,
            predicted_category, predicted_department,
            final_category, final_department,
            patient_id, detail, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Clinician,
		entry.Action,
		entry.FlowID,
		entry.PredictedCategory,
		entry.PredictedDepartment,
		entry.FinalCategory,
		entry.FinalDepartment,
		entry.PatientID,
		entry.Detail,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *repository.AuditFilters) ([]*model.DecisionAudit, error) {
	query := `SELECT * FROM decision_audit WHERE 1=1`
	var args []interface{}

	if filters != nil {
		if filters.Clinician != "" {
			query += fmt.Sprintf(" AND clinician = $%d", len(args)+1)
			args = append(args, filters.Clinician)
		}
		if filters.Action != "" {
			query += fmt.Sprintf(" AND action = $%d", len(args)+1)
			args = append(args, filters.Action)
		}
		if filters.FlowID != "" {
			query += fmt.Sprintf(" AND flow_id = $%d", len(args)+1)
			args = append(args, filters.FlowID)
		}
		if !filters.Since.IsZero() {
			query += fmt.Sprintf(" AND created_at >= $%d", len(args)+1)
			args = append(args, filters.Since)
		}
	}

	query += " ORDER BY created_at DESC"

	if filters != nil && filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filters.Limit)
	}

	var entries []*model.DecisionAudit
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decision_audit WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit entries: %w", err)
	}
	return result.RowsAffected()
}
