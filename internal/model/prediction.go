package model

// Prediction is the classifier's suggestion for a vitals record. It is
// never persisted by the gateway and is immutable once received; the
// override workflow owns it until confirmation or discard.
type Prediction struct {
	Category             int                `json:"category"`
	Department           string             `json:"department"`
	Confidence           float64            `json:"confidence"`
	Probabilities        map[string]float64 `json:"probabilities"`
	CandidateDepartments []string           `json:"candidate_departments,omitempty"`
	Rationale            string             `json:"rationale,omitempty"`
	ModelVersion         string             `json:"model_version,omitempty"`
}

// CategoryLabel returns the clinical urgency label for a triage
// category, 1 being the most severe.
func CategoryLabel(category int) string {
	switch category {
	case 1:
		return "IMMEDIATE"
	case 2:
		return "URGENT"
	case 3:
		return "STABLE"
	case 4:
		return "LOW"
	case 5:
		return "VERY_LOW"
	default:
		return "UNKNOWN"
	}
}
