package model

// CaseTemplate is a case-type lookup entry shown in the triage form
// selector.
type CaseTemplate struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
