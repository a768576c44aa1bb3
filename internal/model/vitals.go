package model

// Sex is the patient sex as recorded on the triage form.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Vitals is the canonical vitals record submitted for classification.
// Bounds mirror what the upstream classifier accepts; the form UI
// constrains ranges before submission, this is the last line of defense.
type Vitals struct {
	Age             int     `json:"age" binding:"min=0,max=120"`
	Sex             Sex     `json:"sex" binding:"required,oneof=M F"`
	HeartRate       float64 `json:"heart_rate" binding:"min=0,max=300"`
	SystolicBP      float64 `json:"systolic_bp" binding:"min=0,max=300"`
	DiastolicBP     float64 `json:"diastolic_bp" binding:"min=0,max=200"`
	Temperature     float64 `json:"temperature" binding:"min=30,max=45"`
	OxygenSat       float64 `json:"oxygen_saturation" binding:"min=0,max=100"`
	RespiratoryRate float64 `json:"respiratory_rate" binding:"min=0,max=100"`
	GCS             int     `json:"gcs" binding:"min=3,max=15"`
	PainScore       int     `json:"pain_score" binding:"min=0,max=10"`
	HoursSinceOnset float64 `json:"hours_since_onset" binding:"min=0"`
	CaseTemplate    string  `json:"case_template,omitempty"`
}
