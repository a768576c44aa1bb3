package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/service/audit"
	"github.com/jwalitptl/triage-gateway/internal/service/occupancy"
	"github.com/jwalitptl/triage-gateway/internal/upstream"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
	"github.com/jwalitptl/triage-gateway/pkg/messaging"
	"github.com/jwalitptl/triage-gateway/pkg/metrics"
)

// Config holds the workflow knobs.
type Config struct {
	// FallbackDepartments feeds the selector when the prediction
	// carries no candidate list. Configured explicitly, never inferred
	// from occupancy data.
	FallbackDepartments []string
	FlowTTL             time.Duration
	ConfirmCloseDelay   time.Duration
}

// Service owns the triage decision workflow: preview, override,
// confirmation. Flows are session-scoped and expire unconfirmed after
// the flow TTL; confirmed flows stay readable for the close delay so
// the UI can render the success state.
type Service struct {
	classifier upstream.ClassifierService
	patients   upstream.PatientService
	monitors   *occupancy.Manager
	auditor    *audit.Service
	broker     messaging.Broker
	metrics    *metrics.Metrics
	cfg        Config

	flows *cache.Cache
}

func NewService(
	classifier upstream.ClassifierService,
	patients upstream.PatientService,
	monitors *occupancy.Manager,
	auditor *audit.Service,
	broker messaging.Broker,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	return &Service{
		classifier: classifier,
		patients:   patients,
		monitors:   monitors,
		auditor:    auditor,
		broker:     broker,
		metrics:    m,
		cfg:        cfg,
		flows:      cache.New(cfg.FlowTTL, cfg.FlowTTL/2),
	}
}

// PreviewResult is what the UI needs to render the prediction panel:
// the flow, plus the capacity context informing the override decision.
type PreviewResult struct {
	Flow         FlowView                     `json:"flow"`
	Alternatives []model.AlternativeCandidate `json:"alternatives"`
	Occupancy    *model.OccupancySnapshot     `json:"occupancy,omitempty"`
	Stale        bool                         `json:"occupancy_stale,omitempty"`
}

// Preview submits the vitals for classification and opens a flow
// seeded from the prediction. A single round-trip; nothing is
// persisted and nothing is cached, every submission is a fresh call.
func (s *Service) Preview(ctx context.Context, sess *model.Session, vitals *model.Vitals) (*PreviewResult, error) {
	pred, err := s.classifier.Classify(ctx, sess, vitals)
	if err != nil {
		return nil, err
	}

	candidates := pred.CandidateDepartments
	if len(candidates) == 0 {
		candidates = s.cfg.FallbackDepartments
	}

	flow := NewFlow(sess.ID, *vitals, *pred, candidates)
	s.flows.Set(flow.ID(), flow, s.cfg.FlowTTL)

	if s.metrics != nil {
		s.metrics.Previews.Inc()
	}
	s.auditor.Record(ctx, audit.Entry{
		Clinician:           sess.Email,
		Action:              model.AuditActionPreview,
		FlowID:              flow.ID(),
		PredictedCategory:   pred.Category,
		PredictedDepartment: pred.Department,
		FinalCategory:       pred.Category,
		FinalDepartment:     pred.Department,
	})

	return s.result(sess, flow), nil
}

// GetFlow returns the flow's current view.
func (s *Service) GetFlow(sess *model.Session, flowID string) (*PreviewResult, error) {
	flow, err := s.flow(sess, flowID)
	if err != nil {
		return nil, err
	}
	return s.result(sess, flow), nil
}

// Select applies the clinician's category/department choice. The
// modified flag is re-derived on every call so the UI can always show
// whether an override is in effect.
func (s *Service) Select(ctx context.Context, sess *model.Session, flowID string, category int, department string) (*PreviewResult, error) {
	flow, err := s.flow(sess, flowID)
	if err != nil {
		return nil, err
	}

	wasModified := flow.Modified()
	if err := flow.Select(category, department); err != nil {
		return nil, err
	}

	if flow.Modified() && !wasModified {
		view := flow.View()
		s.auditor.Record(ctx, audit.Entry{
			Clinician:           sess.Email,
			Action:              model.AuditActionOverride,
			FlowID:              flow.ID(),
			PredictedCategory:   view.Prediction.Category,
			PredictedDepartment: view.Prediction.Department,
			FinalCategory:       view.SelectedCategory,
			FinalDepartment:     view.SelectedDepartment,
		})
	}
	return s.result(sess, flow), nil
}

// Confirm persists the previewed decision as a real patient record.
// On success the flow closes after the configured delay and a
// patient-created event is published for the occupancy monitors; on
// failure the flow reopens for a retry with the same payload.
func (s *Service) Confirm(ctx context.Context, sess *model.Session, flowID string) (*PreviewResult, error) {
	flow, err := s.flow(sess, flowID)
	if err != nil {
		return nil, err
	}

	payload, err := flow.BeginConfirm()
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.Create(ctx, sess, payload)
	if err != nil {
		flow.FailConfirm(err)
		if s.metrics != nil {
			s.metrics.Confirmations.WithLabelValues("failed").Inc()
		}
		view := flow.View()
		s.auditor.Record(ctx, audit.Entry{
			Clinician:           sess.Email,
			Action:              model.AuditActionConfirmFailed,
			FlowID:              flow.ID(),
			PredictedCategory:   view.Prediction.Category,
			PredictedDepartment: view.Prediction.Department,
			FinalCategory:       view.SelectedCategory,
			FinalDepartment:     view.SelectedDepartment,
			Detail:              err.Error(),
		})
		return nil, err
	}

	modified := flow.Modified()
	flow.CompleteConfirm(patient)
	// Confirmed flows linger briefly so the success state can render,
	// then expire.
	s.flows.Set(flow.ID(), flow, s.cfg.ConfirmCloseDelay)

	if s.metrics != nil {
		s.metrics.Confirmations.WithLabelValues("ok").Inc()
		if modified {
			s.metrics.Overrides.Inc()
		}
	}

	view := flow.View()
	s.auditor.Record(ctx, audit.Entry{
		Clinician:           sess.Email,
		Action:              model.AuditActionConfirm,
		FlowID:              flow.ID(),
		PredictedCategory:   view.Prediction.Category,
		PredictedDepartment: view.Prediction.Department,
		FinalCategory:       view.SelectedCategory,
		FinalDepartment:     view.SelectedDepartment,
		PatientID:           patient.ID,
	})

	s.publishPatientCreated(patient)

	return s.result(sess, flow), nil
}

// Discard drops the flow, discarding the prediction.
func (s *Service) Discard(sess *model.Session, flowID string) error {
	if _, err := s.flow(sess, flowID); err != nil {
		return err
	}
	s.flows.Delete(flowID)
	return nil
}

// DiscardSession drops every flow belonging to a terminated session.
func (s *Service) DiscardSession(sessionID string) {
	for id, item := range s.flows.Items() {
		if flow, ok := item.Object.(*Flow); ok && flow.SessionID() == sessionID {
			s.flows.Delete(id)
		}
	}
}

func (s *Service) flow(sess *model.Session, flowID string) (*Flow, error) {
	v, ok := s.flows.Get(flowID)
	if !ok {
		return nil, apperrors.NotFound("triage flow", nil)
	}
	flow := v.(*Flow)
	if flow.SessionID() != sess.ID {
		return nil, apperrors.NotFound("triage flow", fmt.Errorf("flow belongs to another session"))
	}
	return flow, nil
}

func (s *Service) result(sess *model.Session, flow *Flow) *PreviewResult {
	view := flow.View()
	result := &PreviewResult{Flow: view}

	if mon, ok := s.monitors.Get(sess.ID); ok {
		snap, stale := mon.Snapshot()
		result.Occupancy = snap
		result.Stale = stale
		result.Alternatives = mon.Alternatives(view.SelectedDepartment, view.Candidates)
	}
	return result
}

// publishPatientCreated signals the occupancy monitors out of band.
// Fire-and-forget: it never blocks closing the confirmation panel.
func (s *Service) publishPatientCreated(patient *model.Patient) {
	if s.broker == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		msg := messaging.Message{
			Type: messaging.EventPatientCreated,
			Payload: map[string]string{
				"patient_id": patient.ID,
				"department": patient.Department,
			},
		}
		if err := s.broker.Publish(ctx, messaging.ChannelTriageEvents, msg); err != nil {
			log.Warn().Err(err).Msg("failed to publish patient created event")
		}
	}()
}
