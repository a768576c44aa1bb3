package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/repository"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

type fakeAuditRepo struct {
	entries   []*model.DecisionAudit
	createErr error
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *model.DecisionAudit) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ *repository.AuditFilters) ([]*model.DecisionAudit, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) Cleanup(_ context.Context, before time.Time) (int64, error) {
	var kept []*model.DecisionAudit
	var removed int64
	for _, e := range f.entries {
		if e.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return removed, nil
}

func TestRecordFillsIdentityAndTimestamp(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewService(repo)

	svc.Record(context.Background(), Entry{
		Clinician:           "doc@hospital.test",
		Action:              model.AuditActionOverride,
		FlowID:              "flow-1",
		PredictedCategory:   3,
		PredictedDepartment: "Interna",
		FinalCategory:       1,
		FinalDepartment:     "SOR",
	})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.NotEqual(t, "", entry.ID.String())
	assert.WithinDuration(t, time.Now(), entry.CreatedAt, time.Second)
	assert.Equal(t, model.AuditActionOverride, entry.Action)
	assert.Equal(t, 1, entry.FinalCategory)
}

func TestRecordSwallowsRepositoryFailure(t *testing.T) {
	svc := NewService(&fakeAuditRepo{createErr: errors.New("db down")})

	// Must not panic or propagate; the workflow goes on.
	svc.Record(context.Background(), Entry{Action: model.AuditActionPreview})
}

func TestNilRepositoryIsNoop(t *testing.T) {
	svc := NewService(nil)

	svc.Record(context.Background(), Entry{Action: model.AuditActionPreview})

	_, err := svc.List(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	removed, err := svc.Cleanup(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCleanupUsesRetentionCutoff(t *testing.T) {
	repo := &fakeAuditRepo{entries: []*model.DecisionAudit{
		{CreatedAt: time.Now().Add(-48 * time.Hour)},
		{CreatedAt: time.Now()},
	}}
	svc := NewService(repo)

	removed, err := svc.Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, repo.entries, 1)
}
