package trackAdmin

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/trackAdmin/internal/flows"
	"github.com/MrEthical07/trackAdmin/session"
	"github.com/MrEthical07/trackAdmin/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Console is one operator session against the admin API.
type Console struct {
	config     Config
	baseURL    string
	httpClient *http.Client
	store      *session.Store
	kv         storage.KV
	ownsKV     bool
	flowDeps   flows.Service
	monitor    *Monitor
	notices    *noticeQueue
	metrics    *Metrics
	logger     *zap.Logger
	now        func() time.Time

	// authMu serialises login, refresh and logout.
	authMu    sync.Mutex
	refreshSF singleflight.Group

	hookMu   sync.RWMutex
	onLogout func()

	profileMu sync.RWMutex
	operator  Operator
}

// Store exposes the session store, e.g. for navigation persistence.
func (c *Console) Store() *session.Store {
	if c == nil {
		return nil
	}
	return c.store
}

// KV returns the durable key-value store shared with the session.
func (c *Console) KV() storage.KV {
	if c == nil {
		return nil
	}
	return c.kv
}

// Monitor returns the background session monitor.
func (c *Console) Monitor() *Monitor {
	if c == nil {
		return nil
	}
	return c.monitor
}

func (c *Console) Config() Config {
	return c.config
}

// Operator returns the profile from the last successful login.
func (c *Console) Operator() Operator {
	c.profileMu.RLock()
	defer c.profileMu.RUnlock()
	return c.operator
}

// SetLogoutHook installs the callback run after every logout, forced or not.
// The login view is typically shown from here.
func (c *Console) SetLogoutHook(fn func()) {
	c.hookMu.Lock()
	c.onLogout = fn
	c.hookMu.Unlock()
}

func (c *Console) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// NoticesDropped reports routine notices lost to a full buffer or a cancelled caller.
// Error notices are never dropped.
func (c *Console) NoticesDropped() uint64 {
	return c.notices.Dropped()
}

// Close stops the monitor, drains notices and closes an owned KV.
func (c *Console) Close() error {
	if c == nil {
		return nil
	}
	c.monitor.Stop()
	c.notices.Close()
	if c.ownsKV && c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

func (c *Console) ready() error {
	if c == nil || c.httpClient == nil || c.store == nil || !c.flowDeps.Initialized() {
		return ErrConsoleNotReady
	}
	return nil
}

func (c *Console) notify(ctx context.Context, level NoticeLevel, op, message string, fields map[string]string) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.notices.Emit(ctx, Notice{
		Timestamp: c.now().UTC(),
		Level:     level,
		Message:   message,
		Op:        op,
		Fields:    fields,
	})
}

func (c *Console) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
