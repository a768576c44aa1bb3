package occupancy

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/upstream"
	"github.com/jwalitptl/triage-gateway/pkg/messaging"
	"github.com/jwalitptl/triage-gateway/pkg/metrics"
)

// Manager owns one Monitor per active session. Monitors start at login
// and stop when the session ends; patient-created events on the broker
// trigger an out-of-band refresh of every running monitor.
type Manager struct {
	source   upstream.OccupancySource
	interval time.Duration
	settle   time.Duration
	metrics  *metrics.Metrics

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	monitors map[string]*Monitor
}

func NewManager(source upstream.OccupancySource, interval, settle time.Duration, m *metrics.Metrics) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		source:   source,
		interval: interval,
		settle:   settle,
		metrics:  m,
		baseCtx:  ctx,
		cancel:   cancel,
		monitors: make(map[string]*Monitor),
	}
}

// StartForSession creates and starts a monitor bound to the session's
// credential. Replaces any existing monitor for the same session.
func (mgr *Manager) StartForSession(sess *model.Session) {
	mon := NewMonitor(mgr.source, sess, mgr.interval, mgr.settle, mgr.metrics)

	mgr.mu.Lock()
	if old, ok := mgr.monitors[sess.ID]; ok {
		go old.Stop()
	}
	mgr.monitors[sess.ID] = mon
	mgr.mu.Unlock()

	mon.Start(mgr.baseCtx)
	if mgr.metrics != nil {
		mgr.metrics.ActiveMonitors.Inc()
	}
}

// StopForSession tears down the session's monitor, joining its loop
// before returning.
func (mgr *Manager) StopForSession(sessionID string) {
	mgr.mu.Lock()
	mon, ok := mgr.monitors[sessionID]
	if ok {
		delete(mgr.monitors, sessionID)
	}
	mgr.mu.Unlock()

	if !ok {
		return
	}
	mon.Stop()
	if mgr.metrics != nil {
		mgr.metrics.ActiveMonitors.Dec()
	}
}

// Get returns the monitor for a session, if one is running.
func (mgr *Manager) Get(sessionID string) (*Monitor, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mon, ok := mgr.monitors[sessionID]
	return mon, ok
}

// RefreshAll requests an out-of-band poll from every running monitor.
func (mgr *Manager) RefreshAll() {
	mgr.mu.Lock()
	monitors := make([]*Monitor, 0, len(mgr.monitors))
	for _, mon := range mgr.monitors {
		monitors = append(monitors, mon)
	}
	mgr.mu.Unlock()

	for _, mon := range monitors {
		mon.Refresh()
	}
}

// StopAll tears down every monitor, used on shutdown.
func (mgr *Manager) StopAll() {
	mgr.cancel()
	mgr.mu.Lock()
	monitors := mgr.monitors
	mgr.monitors = make(map[string]*Monitor)
	mgr.mu.Unlock()

	for _, mon := range monitors {
		mon.Stop()
		if mgr.metrics != nil {
			mgr.metrics.ActiveMonitors.Dec()
		}
	}
}

// Listen consumes triage events from the broker and converts
// patient-created events into refresh requests. Blocks until the
// context is cancelled; run it on its own goroutine.
func (mgr *Manager) Listen(ctx context.Context, broker messaging.Broker) {
	msgs, err := broker.Subscribe(ctx, messaging.ChannelTriageEvents)
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe to triage events, refresh-on-confirm disabled")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-msgs:
			if !ok {
				return
			}
			var msg messaging.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				log.Warn().Err(err).Msg("discarding malformed triage event")
				continue
			}
			if msg.Type == messaging.EventPatientCreated {
				mgr.RefreshAll()
			}
		}
	}
}
