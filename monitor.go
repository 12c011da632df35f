package trackAdmin

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/trackAdmin/session"
	"go.uber.org/zap"
)

// Ticker is the subset of time.Ticker the monitor needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type tickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type monitorDeps struct {
	interval  time.Duration
	enabled   bool
	store     *session.Store
	refresh   func(ctx context.Context, observed string) error
	onFailure func(ctx context.Context)
	metrics   *Metrics
	logger    *zap.Logger
	newTicker tickerFactory
}

// Monitor refreshes the access token in the background. On every tick it
// checks the held access token and, when it is inside the expiry margin,
// runs refresh-and-recover. A failed refresh forces logout and disarms the
// monitor. At most one loop is armed at any time.
type Monitor struct {
	deps monitorDeps

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64

	armed    atomic.Bool
	inFlight atomic.Bool
	loops    atomic.Int32
}

func newMonitor(deps monitorDeps) *Monitor {
	if deps.newTicker == nil {
		deps.newTicker = newTimeTicker
	}
	if deps.logger == nil {
		deps.logger = zap.NewNop()
	}
	if deps.interval <= 0 {
		deps.interval = 5 * time.Minute
	}
	return &Monitor{deps: deps}
}

// Start cancels any running loop and arms a new one.
func (m *Monitor) Start() {
	if m == nil || !m.deps.enabled {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.gen++
	m.armed.Store(true)

	ticker := m.deps.newTicker(m.deps.interval)
	m.loops.Add(1)
	go m.run(ctx, m.gen, ticker)

	m.deps.logger.Debug("monitor armed", zap.Duration("interval", m.deps.interval))
}

// Stop disarms the monitor. Safe to call repeatedly and from within a tick.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.armed.Store(false)
}

// disarm stops the loop identified by gen. It reports false when a newer
// loop has been armed since.
func (m *Monitor) disarm(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen {
		return false
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.armed.Store(false)
	return true
}

// Armed reports whether a loop is scheduled.
func (m *Monitor) Armed() bool {
	return m != nil && m.armed.Load()
}

func (m *Monitor) run(ctx context.Context, gen uint64, ticker Ticker) {
	defer m.loops.Add(-1)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !m.tick(ctx, gen) {
				return
			}
		}
	}
}

// tick performs one check and reports whether the loop should continue.
func (m *Monitor) tick(ctx context.Context, gen uint64) bool {
	if ctx.Err() != nil {
		return false
	}
	if !m.inFlight.CompareAndSwap(false, true) {
		m.deps.metrics.Inc(MetricMonitorTickSkipped)
		return true
	}
	defer m.inFlight.Store(false)
	m.deps.metrics.Inc(MetricMonitorTick)

	tokens := m.deps.store.Tokens()
	if tokens.Access == "" || !m.deps.store.IsExpired(tokens.Access) {
		return true
	}

	m.deps.logger.Info("access token near expiry, refreshing")
	if err := m.deps.refresh(ctx, tokens.Refresh); err != nil {
		m.deps.logger.Warn("background refresh failed", zap.Error(err))
		// A newer loop owns the session now.
		if ctx.Err() != nil || !m.disarm(gen) {
			return false
		}
		// disarm cancelled ctx; the forced logout must still run to completion.
		if m.deps.onFailure != nil {
			m.deps.onFailure(context.WithoutCancel(ctx))
		}
		return false
	}
	return true
}
