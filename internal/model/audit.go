package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded for the triage decision trail.
const (
	AuditActionPreview       = "preview"
	AuditActionOverride      = "override"
	AuditActionConfirm       = "confirm"
	AuditActionConfirmFailed = "confirm_failed"
)

// DecisionAudit is one entry in the triage decision trail: what the
// classifier suggested, what the clinician finally chose.
type DecisionAudit struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	Clinician           string    `db:"clinician" json:"clinician"`
	Action              string    `db:"action" json:"action"`
	FlowID              string    `db:"flow_id" json:"flow_id"`
	PredictedCategory   int       `db:"predicted_category" json:"predicted_category"`
	PredictedDepartment string    `db:"predicted_department" json:"predicted_department"`
	FinalCategory       int       `db:"final_category" json:"final_category"`
	FinalDepartment     string    `db:"final_department" json:"final_department"`
	PatientID           string    `db:"patient_id" json:"patient_id,omitempty"`
	Detail              string    `db:"detail" json:"detail,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
