package model

import "time"

type PatientStatus string

const (
	PatientStatusWaiting     PatientStatus = "waiting"
	PatientStatusInTreatment PatientStatus = "in_treatment"
	PatientStatusDischarged  PatientStatus = "discharged"
)

// Patient is a confirmed patient record as returned by the patient
// store. Created only through confirmation; the gateway never mutates
// it afterwards, status changes are server-driven.
type Patient struct {
	ID         string        `json:"id"`
	Vitals     Vitals        `json:"vitals"`
	Category   int           `json:"category"`
	Department string        `json:"department"`
	AdmittedAt time.Time     `json:"admitted_at"`
	Status     PatientStatus `json:"status"`
}

// CreatePatientRequest is the payload sent to the patient store on
// confirmation: the original vitals merged with the final, possibly
// overridden, category and department.
type CreatePatientRequest struct {
	Vitals     Vitals `json:"vitals"`
	Category   int    `json:"category" binding:"min=1,max=5"`
	Department string `json:"department" binding:"required"`
}
