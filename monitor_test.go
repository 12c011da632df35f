package trackAdmin

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/trackAdmin/session"
)

func (m *Monitor) currentGen() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

func TestMonitorDoubleStartLeavesOneLoop(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	m := h.console.Monitor()

	m.Start()

	waitFor(t, "single active loop", func() bool { return m.loops.Load() == 1 })
	tickers := h.tickers.all()
	if len(tickers) != 2 {
		t.Fatalf("expected two tickers created, got %d", len(tickers))
	}
	if !tickers[0].stopped.Load() {
		t.Fatal("expected first ticker stopped by the second Start")
	}
	if tickers[1].stopped.Load() {
		t.Fatal("expected current ticker running")
	}
	if !m.Armed() {
		t.Fatal("expected monitor armed")
	}
}

func TestMonitorStopIdempotent(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	m := h.console.Monitor()

	m.Stop()
	m.Stop()
	if m.Armed() {
		t.Fatal("expected disarmed monitor")
	}
	waitFor(t, "loop exit", func() bool { return m.loops.Load() == 0 })
}

func TestMonitorThirtyMinuteTokenScenario(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	m := h.console.Monitor()
	first := h.console.Store().Tokens()
	ctx := context.Background()

	h.clock.Advance(4 * time.Minute)
	if !m.tick(ctx, m.currentGen()) {
		t.Fatal("expected loop to continue")
	}
	if got := h.backend.Stats().Refreshes; got != 0 {
		t.Fatalf("expected no refresh at +4m, got %d", got)
	}

	// exp - 59s: inside the 60s margin.
	h.clock.Advance(25*time.Minute + time.Second)
	if !m.tick(ctx, m.currentGen()) {
		t.Fatal("expected loop to continue after refresh")
	}
	if got := h.backend.Stats().Refreshes; got != 1 {
		t.Fatalf("expected one refresh, got %d", got)
	}

	second := h.console.Store().Tokens()
	if second.Access == first.Access || second.Refresh == first.Refresh {
		t.Fatal("expected A2/R2 to replace A1/R1")
	}
	snap := h.kv.Snapshot()
	if snap[session.KeyAccessToken] != second.Access || snap[session.KeyRefreshToken] != second.Refresh {
		t.Fatalf("expected A2/R2 persisted, got %v", snap)
	}
	if h.console.Store().AccessExpired() {
		t.Fatal("expected fresh access token")
	}
}

func TestMonitorTickThroughTicker(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.clock.Advance(29*time.Minute + 30*time.Second)
	tickers := h.tickers.all()
	tickers[len(tickers)-1].ch <- h.clock.Now()

	waitFor(t, "background refresh", func() bool { return h.backend.Stats().Refreshes == 1 })
	waitFor(t, "tick metric", func() bool { return h.console.MetricsSnapshot().Counters[MetricMonitorTick] == 1 })
}

func TestMonitorRefreshFailureForcesLogout(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.SetRefreshEnabled(false)
	m := h.console.Monitor()

	h.clock.Advance(29*time.Minute + 30*time.Second)
	if m.tick(context.Background(), m.currentGen()) {
		t.Fatal("expected loop to stop after failed refresh")
	}
	if h.console.Store().HasSession() {
		t.Fatal("expected session cleared")
	}
	if m.Armed() {
		t.Fatal("expected monitor disarmed")
	}
	if h.logouts.Load() != 1 {
		t.Fatalf("expected logout hook once, got %d", h.logouts.Load())
	}
	waitFor(t, "session expired notice", func() bool { return h.sink.count(MessageSessionExpired) == 1 })
}

func TestMonitorLoopFailureDeliversExpiredNoticeWithBlockingBuffer(t *testing.T) {
	// The loop context is cancelled by disarm before the forced logout runs,
	// so run enough rounds that a lost notice would show up.
	for round := 0; round < 20; round++ {
		h := newHarnessWith(t, func(cfg *Config) {
			cfg.Notice.DropIfFull = false
			cfg.Notice.BufferSize = 1
		})
		h.login(t)
		h.backend.SetRefreshEnabled(false)
		m := h.console.Monitor()
		waitFor(t, "loop running", func() bool { return m.loops.Load() == 1 })

		h.clock.Advance(29*time.Minute + 30*time.Second)
		tickers := h.tickers.all()
		tickers[len(tickers)-1].ch <- h.clock.Now()

		waitFor(t, "loop exit", func() bool { return m.loops.Load() == 0 })
		waitFor(t, "forced logout", func() bool { return h.logouts.Load() == 1 })
		if h.console.Store().HasSession() {
			t.Fatalf("round %d: expected session cleared", round)
		}
		waitFor(t, "session expired notice", func() bool { return h.sink.count(MessageSessionExpired) == 1 })
	}
}

func TestMonitorStaleLoopDoesNotLogOutNewSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.SetRefreshEnabled(false)
	m := h.console.Monitor()
	staleGen := m.currentGen()
	m.Start()

	h.clock.Advance(29*time.Minute + 30*time.Second)
	if m.tick(context.Background(), staleGen) {
		t.Fatal("expected stale loop to stop")
	}
	if !h.console.Store().HasSession() || h.logouts.Load() != 0 {
		t.Fatal("stale loop must not force logout")
	}
}

func TestMonitorSkipsOverlappingTick(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	m := h.console.Monitor()

	m.inFlight.Store(true)
	if !m.tick(context.Background(), m.currentGen()) {
		t.Fatal("expected loop to continue")
	}
	m.inFlight.Store(false)
	if got := h.console.MetricsSnapshot().Counters[MetricMonitorTickSkipped]; got != 1 {
		t.Fatalf("expected one skipped tick, got %d", got)
	}
}

func TestMonitorDisabledNeverArms(t *testing.T) {
	m := newMonitor(monitorDeps{enabled: false, store: session.NewStore(nil)})
	m.Start()
	if m.Armed() {
		t.Fatal("disabled monitor must not arm")
	}
}
