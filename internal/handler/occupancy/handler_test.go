package occupancy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/triage-gateway/internal/middleware"
	"github.com/jwalitptl/triage-gateway/internal/model"
	occupancyService "github.com/jwalitptl/triage-gateway/internal/service/occupancy"
	"github.com/jwalitptl/triage-gateway/internal/session"
)

type stubSource struct {
	snap *model.OccupancySnapshot
	err  error
}

func (s stubSource) Fetch(_ context.Context, _ *model.Session) (*model.OccupancySnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func (s stubSource) Forecast(_ context.Context, _ *model.Session) (model.ForecastSet, error) {
	return nil, errors.New("no forecast")
}

func testSnapshot() *model.OccupancySnapshot {
	return &model.OccupancySnapshot{
		Departments: map[string]model.DepartmentOccupancy{
			"SOR":     {Current: 45, Capacity: 50},
			"Interna": {Current: 10, Capacity: 40},
		},
	}
}

type fixture struct {
	router *gin.Engine
	token  string
	mgr    *occupancyService.Manager
}

func newFixture(t *testing.T, source stubSource) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewStore(time.Hour, time.Hour)
	sess := store.Create("doc@hospital.test", "tok")

	mgr := occupancyService.NewManager(source, time.Hour, 0, nil)
	t.Cleanup(mgr.StopAll)
	mgr.StartForSession(sess)

	if source.err == nil {
		mon, ok := mgr.Get(sess.ID)
		require.True(t, ok)
		require.Eventually(t, func() bool {
			snap, _ := mon.Snapshot()
			return snap != nil
		}, time.Second, 5*time.Millisecond)
	}

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(middleware.NewAuthMiddleware(store).Authenticate())
	NewHandler(mgr, []string{"SOR", "Interna", "Kardiologia"}).RegisterRoutes(group)

	return &fixture{router: r, token: sess.ID, mgr: mgr}
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestSnapshotServed(t *testing.T) {
	fx := newFixture(t, stubSource{snap: testSnapshot()})

	w := fx.get("/api/v1/occupancy")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"SOR"`)
	assert.Contains(t, w.Body.String(), `"stale":false`)
}

func TestSnapshotBeforeFirstPoll(t *testing.T) {
	fx := newFixture(t, stubSource{err: errors.New("unavailable")})

	w := fx.get("/api/v1/occupancy")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"snapshot":null`)
}

func TestForecastKnownDepartment(t *testing.T) {
	fx := newFixture(t, stubSource{snap: testSnapshot()})

	w := fx.get("/api/v1/occupancy/SOR/forecast")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"offset_hours":3`)
}

func TestForecastUnknownDepartment(t *testing.T) {
	fx := newFixture(t, stubSource{snap: testSnapshot()})

	w := fx.get("/api/v1/occupancy/Okulistyka/forecast")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAlternativesRequiresDepartment(t *testing.T) {
	fx := newFixture(t, stubSource{snap: testSnapshot()})

	w := fx.get("/api/v1/occupancy/alternatives")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlternativesExcludesAssigned(t *testing.T) {
	fx := newFixture(t, stubSource{snap: testSnapshot()})

	w := fx.get("/api/v1/occupancy/alternatives?department=SOR")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Interna")
	assert.NotContains(t, w.Body.String(), `"department":"SOR"`)
}

func TestMonitorGoneAfterSessionStops(t *testing.T) {
	fx := newFixture(t, stubSource{snap: testSnapshot()})

	fx.mgr.StopAll()
	w := fx.get("/api/v1/occupancy")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
