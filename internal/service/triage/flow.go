package triage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/triage-gateway/internal/model"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

// State is the override-and-confirmation workflow state. A previewed
// flow is Unmodified until the clinician's selection diverges from the
// prediction; it becomes Modified the instant it does and reverts when
// the selection returns to the original values.
type State string

const (
	StateUnmodified State = "unmodified"
	StateModified   State = "modified"
	StateConfirming State = "confirming"
	StateConfirmed  State = "confirmed"
	StateFailed     State = "failed"
)

// Flow is one triage decision in progress: the submitted vitals, the
// immutable prediction, and the clinician's current selection. All
// transitions run under the flow's lock.
type Flow struct {
	mu sync.Mutex

	id        string
	sessionID string
	createdAt time.Time

	vitals     model.Vitals
	prediction model.Prediction
	candidates []string

	state              State
	selectedCategory   int
	selectedDepartment string
	lastError          string
	patient            *model.Patient
}

// FlowView is an immutable copy of the flow for responses.
type FlowView struct {
	ID                 string           `json:"id"`
	State              State            `json:"state"`
	Modified           bool             `json:"modified"`
	Prediction         model.Prediction `json:"prediction"`
	Candidates         []string         `json:"candidates"`
	SelectedCategory   int              `json:"selected_category"`
	SelectedDepartment string           `json:"selected_department"`
	LastError          string           `json:"last_error,omitempty"`
	Patient            *model.Patient   `json:"patient,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// NewFlow seeds a flow from a freshly received prediction: entry to
// the previewed state with the selection equal to the suggestion.
func NewFlow(sessionID string, vitals model.Vitals, pred model.Prediction, candidates []string) *Flow {
	return &Flow{
		id:                 uuid.New().String(),
		sessionID:          sessionID,
		createdAt:          time.Now(),
		vitals:             vitals,
		prediction:         pred,
		candidates:         candidates,
		state:              StateUnmodified,
		selectedCategory:   pred.Category,
		selectedDepartment: pred.Department,
	}
}

func (f *Flow) ID() string        { return f.id }
func (f *Flow) SessionID() string { return f.sessionID }

// Select records the clinician's category/department choice and
// re-derives the modified flag. Allowed while the flow is editable,
// including after a failed confirmation.
func (f *Flow) Select(category int, department string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateUnmodified, StateModified, StateFailed:
	default:
		return apperrors.Validation(
			fmt.Sprintf("flow is %s, selection is closed", f.state), nil)
	}

	if category < 1 || category > 5 {
		return apperrors.Validation("category must be between 1 and 5", nil)
	}
	if !f.isCandidate(department) {
		return apperrors.Validation(fmt.Sprintf("department %q is not a candidate", department), nil)
	}

	f.selectedCategory = category
	f.selectedDepartment = department
	f.lastError = ""
	f.state = f.deriveState()
	return nil
}

// BeginConfirm moves the flow into Confirming and returns the exact
// creation payload: original vitals merged with the final selection.
// Retries after a failure re-issue the same payload.
func (f *Flow) BeginConfirm() (*model.CreatePatientRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateUnmodified, StateModified, StateFailed:
	case StateConfirming:
		return nil, apperrors.Validation("confirmation already in progress", nil)
	default:
		return nil, apperrors.Validation(
			fmt.Sprintf("flow is %s, cannot confirm", f.state), nil)
	}

	f.state = StateConfirming
	return &model.CreatePatientRequest{
		Vitals:     f.vitals,
		Category:   f.selectedCategory,
		Department: f.selectedDepartment,
	}, nil
}

// CompleteConfirm records the created patient.
func (f *Flow) CompleteConfirm(p *model.Patient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateConfirmed
	f.patient = p
	f.lastError = ""
}

// FailConfirm surfaces the server error and reopens the flow for a
// retry. The modified flag persists across failures so the clinician
// can still see an override is in effect.
func (f *Flow) FailConfirm(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateFailed
	if err != nil {
		f.lastError = err.Error()
	}
}

// Modified reports whether the current selection diverges from the
// prediction.
func (f *Flow) Modified() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isModified()
}

// View returns a copy safe to serialize.
func (f *Flow) View() FlowView {
	f.mu.Lock()
	defer f.mu.Unlock()

	candidates := make([]string, len(f.candidates))
	copy(candidates, f.candidates)

	return FlowView{
		ID:                 f.id,
		State:              f.state,
		Modified:           f.isModified(),
		Prediction:         f.prediction,
		Candidates:         candidates,
		SelectedCategory:   f.selectedCategory,
		SelectedDepartment: f.selectedDepartment,
		LastError:          f.lastError,
		Patient:            f.patient,
		CreatedAt:          f.createdAt,
	}
}

func (f *Flow) isModified() bool {
	return f.selectedCategory != f.prediction.Category ||
		f.selectedDepartment != f.prediction.Department
}

func (f *Flow) deriveState() State {
	if f.isModified() {
		return StateModified
	}
	return StateUnmodified
}

func (f *Flow) isCandidate(department string) bool {
	if department == f.prediction.Department {
		return true
	}
	for _, c := range f.candidates {
		if c == department {
			return true
		}
	}
	return false
}
