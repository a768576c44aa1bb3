package occupancy

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/upstream"
	"github.com/jwalitptl/triage-gateway/pkg/metrics"
)

// Monitor polls current occupancy and the short-horizon forecast for
// one session. It starts after a settle delay, then repolls on a fixed
// interval until stopped. A poll failure keeps the previous snapshot
// and marks it stale; the next tick retries, no backoff.
type Monitor struct {
	source   upstream.OccupancySource
	sess     *model.Session
	interval time.Duration
	settle   time.Duration
	metrics  *metrics.Metrics

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	refreshC chan struct{}

	mu       sync.RWMutex
	stopped  bool
	snap     *model.OccupancySnapshot
	forecast model.ForecastSet
	stale    bool
	lastErr  error
}

func NewMonitor(source upstream.OccupancySource, sess *model.Session, interval, settle time.Duration, m *metrics.Metrics) *Monitor {
	return &Monitor{
		source:   source,
		sess:     sess,
		interval: interval,
		settle:   settle,
		metrics:  m,
		refreshC: make(chan struct{}, 1),
	}
}

// Start launches the polling loop. A monitor that was already stopped
// refuses to launch, so a termination racing a login cannot leave an
// orphaned loop behind.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(ctx)
}

// Stop cancels the loop and joins it. After Stop returns, no poll can
// mutate the published snapshot and no further tick is scheduled.
// Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Refresh requests one out-of-band poll, used when a patient is
// created. Non-blocking; coalesces with a pending request.
func (m *Monitor) Refresh() {
	select {
	case m.refreshC <- struct{}{}:
	default:
	}
}

// Snapshot returns the latest snapshot and whether it is stale. Nil
// until the first successful poll.
func (m *Monitor) Snapshot() (*model.OccupancySnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, m.stale
}

// Forecast returns the shaped 4-point series for a department, based
// on the latest snapshot and forecast payload.
func (m *Monitor) Forecast(department string) ([]model.ForecastPoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snap == nil {
		return nil, false
	}
	dept, ok := m.snap.Departments[department]
	if !ok {
		return nil, false
	}

	var f *model.DeptForecast
	if m.forecast != nil {
		if df, ok := m.forecast[department]; ok {
			f = &df
		}
	}
	return ShapeForecast(dept.Current, f), true
}

// Alternatives ranks fallback departments from the latest snapshot.
func (m *Monitor) Alternatives(assigned string, candidates []string) []model.AlternativeCandidate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return RankAlternatives(m.snap, assigned, candidates)
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	// Settle delay: the session credential must be persisted before
	// the first authenticated poll goes out.
	if m.settle > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.settle):
		}
	}

	m.poll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		case <-m.refreshC:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	start := time.Now()
	snap, err := m.source.Fetch(ctx, m.sess)
	var forecast model.ForecastSet
	if err == nil {
		// Forecast failures degrade to current-value substitution,
		// they never invalidate the snapshot.
		forecast, _ = m.source.Forecast(ctx, m.sess)
	}
	if m.metrics != nil {
		m.metrics.OccupancyPollLatency.Observe(time.Since(start).Seconds())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A poll resolving after Stop must not mutate displayed state.
	if m.stopped {
		return
	}

	if err != nil {
		m.stale = true
		m.lastErr = err
		m.observe("error")
		log.Warn().Err(err).Str("session_id", m.sess.ID).Msg("occupancy poll failed, retaining previous snapshot")
		return
	}

	m.snap = Normalize(snap)
	m.forecast = forecast
	m.stale = false
	m.lastErr = nil
	m.observe("ok")
}

func (m *Monitor) observe(status string) {
	if m.metrics != nil {
		m.metrics.OccupancyPolls.WithLabelValues(status).Inc()
	}
}
