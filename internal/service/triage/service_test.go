package triage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/service/audit"
	"github.com/jwalitptl/triage-gateway/internal/service/occupancy"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
	"github.com/jwalitptl/triage-gateway/pkg/messaging"
)

type fakeClassifier struct {
	pred *model.Prediction
	err  error
}

func (f *fakeClassifier) Classify(_ context.Context, _ *model.Session, _ *model.Vitals) (*model.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.pred
	return &p, nil
}

type fakePatients struct {
	mu       sync.Mutex
	requests []*model.CreatePatientRequest
	err      error
}

func (f *fakePatients) Create(_ context.Context, _ *model.Session, req *model.CreatePatientRequest) (*model.Patient, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &model.Patient{
		ID:         "pat-1",
		Vitals:     req.Vitals,
		Category:   req.Category,
		Department: req.Department,
		AdmittedAt: time.Now(),
		Status:     model.PatientStatusWaiting,
	}, nil
}

func (f *fakePatients) Get(_ context.Context, _ *model.Session, _ string) (*model.Patient, error) {
	return nil, errors.New("not implemented")
}

type fakeOccupancySource struct{}

func (fakeOccupancySource) Fetch(_ context.Context, _ *model.Session) (*model.OccupancySnapshot, error) {
	return nil, errors.New("unavailable")
}

func (fakeOccupancySource) Forecast(_ context.Context, _ *model.Session) (model.ForecastSet, error) {
	return nil, errors.New("unavailable")
}

type fakeBroker struct {
	published chan messaging.Message
}

func (f *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	f.published <- message.(messaging.Message)
	return nil
}

func (f *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBroker) Close() error { return nil }

type serviceFixture struct {
	svc        *Service
	classifier *fakeClassifier
	patients   *fakePatients
	broker     *fakeBroker
	sess       *model.Session
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	classifier := &fakeClassifier{pred: &model.Prediction{
		Category:   3,
		Department: "Interna",
		Confidence: 0.82,
	}}
	patients := &fakePatients{}
	broker := &fakeBroker{published: make(chan messaging.Message, 4)}
	monitors := occupancy.NewManager(fakeOccupancySource{}, time.Hour, time.Hour, nil)
	t.Cleanup(monitors.StopAll)

	svc := NewService(classifier, patients, monitors, audit.NewService(nil), broker, nil, Config{
		FallbackDepartments: []string{"SOR", "Interna", "Kardiologia"},
		FlowTTL:             time.Minute,
		ConfirmCloseDelay:   time.Minute,
	})

	return &serviceFixture{
		svc:        svc,
		classifier: classifier,
		patients:   patients,
		broker:     broker,
		sess:       &model.Session{ID: "sess-1", Email: "doc@hospital.test", Token: "tok"},
	}
}

func TestPreviewOpensUnmodifiedFlow(t *testing.T) {
	fx := newServiceFixture(t)

	vitals := testVitals()
	result, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)

	assert.Equal(t, StateUnmodified, result.Flow.State)
	assert.Equal(t, 3, result.Flow.SelectedCategory)
	assert.Equal(t, "Interna", result.Flow.SelectedDepartment)
	assert.Equal(t, []string{"SOR", "Interna", "Kardiologia"}, result.Flow.Candidates)
	assert.Nil(t, result.Occupancy)
}

func TestPreviewUsesPredictionCandidates(t *testing.T) {
	fx := newServiceFixture(t)
	fx.classifier.pred.CandidateDepartments = []string{"Interna", "Neurologia"}

	vitals := testVitals()
	result, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)
	assert.Equal(t, []string{"Interna", "Neurologia"}, result.Flow.Candidates)
}

func TestPreviewPropagatesClassifierError(t *testing.T) {
	fx := newServiceFixture(t)
	fx.classifier.err = apperrors.Service("classifier failed", nil)

	vitals := testVitals()
	_, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrService, apperrors.CodeOf(err))
}

func TestConfirmUnmodifiedSendsPredictionPayload(t *testing.T) {
	fx := newServiceFixture(t)

	vitals := testVitals()
	preview, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)

	result, err := fx.svc.Confirm(context.Background(), fx.sess, preview.Flow.ID)
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, result.Flow.State)
	require.NotNil(t, result.Flow.Patient)
	assert.Equal(t, "pat-1", result.Flow.Patient.ID)

	require.Len(t, fx.patients.requests, 1)
	req := fx.patients.requests[0]
	assert.Equal(t, vitals, req.Vitals)
	assert.Equal(t, 3, req.Category)
	assert.Equal(t, "Interna", req.Department)
}

func TestConfirmPublishesPatientCreated(t *testing.T) {
	fx := newServiceFixture(t)

	vitals := testVitals()
	preview, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)

	_, err = fx.svc.Confirm(context.Background(), fx.sess, preview.Flow.ID)
	require.NoError(t, err)

	select {
	case msg := <-fx.broker.published:
		assert.Equal(t, messaging.EventPatientCreated, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("no patient created event published")
	}
}

func TestConfirmOverriddenSelection(t *testing.T) {
	fx := newServiceFixture(t)

	vitals := testVitals()
	preview, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)

	result, err := fx.svc.Select(context.Background(), fx.sess, preview.Flow.ID, 1, "SOR")
	require.NoError(t, err)
	assert.True(t, result.Flow.Modified)

	_, err = fx.svc.Confirm(context.Background(), fx.sess, preview.Flow.ID)
	require.NoError(t, err)

	require.Len(t, fx.patients.requests, 1)
	assert.Equal(t, 1, fx.patients.requests[0].Category)
	assert.Equal(t, "SOR", fx.patients.requests[0].Department)
}

func TestConfirmFailureReopensFlowForIdenticalRetry(t *testing.T) {
	fx := newServiceFixture(t)

	vitals := testVitals()
	preview, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)

	_, err = fx.svc.Select(context.Background(), fx.sess, preview.Flow.ID, 2, "SOR")
	require.NoError(t, err)

	fx.patients.err = apperrors.Service("ward service unavailable", nil)
	_, err = fx.svc.Confirm(context.Background(), fx.sess, preview.Flow.ID)
	require.Error(t, err)

	result, err := fx.svc.GetFlow(fx.sess, preview.Flow.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, result.Flow.State)
	assert.True(t, result.Flow.Modified)
	assert.NotEmpty(t, result.Flow.LastError)

	fx.patients.err = nil
	result, err = fx.svc.Confirm(context.Background(), fx.sess, preview.Flow.ID)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, result.Flow.State)

	require.Len(t, fx.patients.requests, 2)
	assert.Equal(t, fx.patients.requests[0], fx.patients.requests[1])
}

func TestFlowOwnershipEnforced(t *testing.T) {
	fx := newServiceFixture(t)

	vitals := testVitals()
	preview, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)

	other := &model.Session{ID: "sess-2", Token: "tok2"}
	_, err = fx.svc.GetFlow(other, preview.Flow.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	_, err = fx.svc.Confirm(context.Background(), other, preview.Flow.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestDiscardDropsFlow(t *testing.T) {
	fx := newServiceFixture(t)

	vitals := testVitals()
	preview, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Discard(fx.sess, preview.Flow.ID))

	_, err = fx.svc.GetFlow(fx.sess, preview.Flow.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestDiscardSessionDropsOnlyThatSessionsFlows(t *testing.T) {
	fx := newServiceFixture(t)
	other := &model.Session{ID: "sess-2", Token: "tok2"}

	vitals := testVitals()
	mine, err := fx.svc.Preview(context.Background(), fx.sess, &vitals)
	require.NoError(t, err)
	theirs, err := fx.svc.Preview(context.Background(), other, &vitals)
	require.NoError(t, err)

	fx.svc.DiscardSession(fx.sess.ID)

	_, err = fx.svc.GetFlow(fx.sess, mine.Flow.ID)
	require.Error(t, err)

	_, err = fx.svc.GetFlow(other, theirs.Flow.ID)
	require.NoError(t, err)
}

func TestGetFlowUnknownID(t *testing.T) {
	fx := newServiceFixture(t)

	_, err := fx.svc.GetFlow(fx.sess, "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}
