package trackAdmin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/trackAdmin/internal/flows"
	"github.com/MrEthical07/trackAdmin/session"
	"github.com/MrEthical07/trackAdmin/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles a Console. A Builder can be used once.
type Builder struct {
	config     Config
	kv         storage.KV
	redis      redis.UniversalClient
	httpClient *http.Client
	noticeSink NoticeSink
	logger     *zap.Logger
	onLogout   func()
	now        func() time.Time
	newTicker  tickerFactory

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithKV overrides the storage backend selected by Config.Storage. The caller
// keeps ownership and closes it.
func (b *Builder) WithKV(kv storage.KV) *Builder {
	b.kv = kv
	return b
}

// WithRedis uses client for the redis storage backend instead of dialing
// Config.Storage.RedisAddr.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

func (b *Builder) WithNoticeSink(sink NoticeSink) *Builder {
	b.noticeSink = sink
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithLogoutHook sets the callback run after every logout.
func (b *Builder) WithLogoutHook(fn func()) *Builder {
	b.onLogout = fn
	return b
}

// WithClock overrides the wall clock used for expiry checks and notices.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, opens storage and restores any
// persisted session. The monitor is not armed until Login or Resume.
func (b *Builder) Build() (*Console, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	kv, owns, err := b.openKV(logger)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(kv,
		session.WithMargin(b.config.Session.ExpiryMargin),
		session.WithClock(now),
	)
	if err := store.Load(context.Background()); err != nil {
		if owns {
			_ = kv.Close()
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: b.config.API.Timeout}
	}

	c := &Console{
		config:     b.config,
		baseURL:    strings.TrimRight(strings.TrimSpace(b.config.API.BaseURL), "/"),
		httpClient: httpClient,
		store:      store,
		kv:         kv,
		ownsKV:     owns,
		notices:    newNoticeQueue(b.config.Notice, b.noticeSink),
		metrics:    NewMetrics(b.config.Metrics),
		logger:     logger,
		now:        now,
		onLogout:   b.onLogout,
	}

	c.flowDeps = flows.New(flows.Deps{
		Login: flows.LoginDeps{
			Store:     store,
			CallLogin: c.callLogin,
		},
		Refresh: flows.RefreshDeps{
			Store:       store,
			CallRefresh: c.callRefresh,
			IsTransport: isTransportError,
		},
	})

	c.monitor = newMonitor(monitorDeps{
		interval:  b.config.Monitor.Interval,
		enabled:   b.config.Monitor.Enabled,
		store:     store,
		refresh:   c.refresh,
		onFailure: c.forceLogout,
		metrics:   c.metrics,
		logger:    logger.Named("monitor"),
		newTicker: b.newTicker,
	})

	b.built = true
	logger.Info("console built",
		zap.String("api", c.baseURL),
		zap.String("storage", b.storageName()),
		zap.Bool("session_restored", store.HasSession()),
	)
	return c, nil
}

func (b *Builder) storageName() string {
	if b.kv != nil {
		return "custom"
	}
	return b.config.Storage.Backend
}

func (b *Builder) openKV(logger *zap.Logger) (storage.KV, bool, error) {
	if b.kv != nil {
		return b.kv, false, nil
	}
	switch b.config.Storage.Backend {
	case StorageRedis:
		client := b.redis
		owns := false
		if client == nil {
			client = redis.NewClient(&redis.Options{Addr: b.config.Storage.RedisAddr})
			owns = true
		}
		if err := client.Ping(context.Background()).Err(); err != nil {
			if owns {
				_ = client.Close()
			}
			return nil, false, fmt.Errorf("%w: %v", storage.ErrRedisUnavailable, err)
		}
		kv := storage.NewRedisKV(client, b.config.Storage.RedisPrefix)
		return kv, owns, nil
	case StorageBadger:
		kv, err := storage.OpenBadger(storage.BadgerConfig{
			Path:   b.config.Storage.Path,
			Logger: logger.Named("badger"),
		})
		if err != nil {
			return nil, false, err
		}
		return kv, true, nil
	default:
		return storage.NewMemory(), true, nil
	}
}
