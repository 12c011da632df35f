package nav

import (
	"context"
	"errors"
	"sync"

	"github.com/MrEthical07/trackAdmin/storage"
	"go.uber.org/zap"
)

// KeyLastSection is the storage key of the last shown section.
const KeyLastSection = "lastSection"

// View renders navigation targets.
type View interface {
	RenderSection(name string)
	RenderProfile(userID int64)
	RenderProfileView(userID int64, view string)
}

// Loader fetches the data behind a navigation target.
type Loader interface {
	LoadSection(ctx context.Context, name string) error
	LoadUser(ctx context.Context, userID int64) error
}

type Config struct {
	History History
	View    View
	Loader  Loader
	// KV persists the last section. Defaults to an in-memory store.
	KV     storage.KV
	Logger *zap.Logger
}

// Controller applies Reduce effects. Effects run outside the lock, so View
// and Loader implementations may navigate re-entrantly.
type Controller struct {
	history History
	view    View
	loader  Loader
	kv      storage.KV
	logger  *zap.Logger

	mu    sync.Mutex
	model Model
}

func NewController(cfg Config) (*Controller, error) {
	if cfg.History == nil || cfg.View == nil || cfg.Loader == nil {
		return nil, errors.New("nav: history, view and loader are required")
	}
	if cfg.KV == nil {
		cfg.KV = storage.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Controller{
		history: cfg.History,
		view:    cfg.View,
		loader:  cfg.Loader,
		kv:      cfg.KV,
		logger:  cfg.Logger,
		model:   Model{Current: SectionState(DefaultSection)},
	}, nil
}

// Current returns the state being shown.
func (c *Controller) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.Current
}

// Init restores the view for an initial fragment without pushing history.
// An empty fragment falls back to the persisted last section.
func (c *Controller) Init(ctx context.Context, fragment string) error {
	last, err := c.kv.Get(ctx, KeyLastSection)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.logger.Warn("read last section", zap.Error(err))
	}
	return c.dispatch(ctx, Init{Fragment: fragment, LastSection: last})
}

func (c *Controller) GoToSection(ctx context.Context, name string) error {
	return c.dispatch(ctx, GoToSection{Name: name})
}

func (c *Controller) GoToUserProfile(ctx context.Context, userID int64) error {
	return c.dispatch(ctx, GoToUserProfile{UserID: userID})
}

func (c *Controller) SetProfileView(ctx context.Context, view string, userID int64) error {
	return c.dispatch(ctx, SetProfileView{View: view, UserID: userID})
}

// PopState applies a back/forward navigation. A nil payload shows the
// default section.
func (c *Controller) PopState(ctx context.Context, payload *Payload) error {
	err := c.dispatch(ctx, PopState{Payload: payload})
	c.mu.Lock()
	c.model, _ = Reduce(c.model, ReplayDone{})
	c.mu.Unlock()
	return err
}

func (c *Controller) dispatch(ctx context.Context, ev Event) error {
	c.mu.Lock()
	next, effects := Reduce(c.model, ev)
	c.model = next
	c.mu.Unlock()

	c.logger.Debug("navigate", zap.Stringer("state", next.Current), zap.Bool("replaying", next.Replaying))
	return c.apply(ctx, effects)
}

// apply runs every effect; the first load error is returned.
func (c *Controller) apply(ctx context.Context, effects []Effect) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, eff := range effects {
		switch e := eff.(type) {
		case PushHistory:
			c.history.Push(e.Payload, e.Fragment)
		case ReplaceHistory:
			c.history.Replace(e.Payload, e.Fragment)
		case PersistLastSection:
			if err := c.kv.SetMany(ctx, map[string]string{KeyLastSection: e.Name}); err != nil {
				c.logger.Warn("persist last section", zap.Error(err))
			}
		case RenderSection:
			c.view.RenderSection(e.Name)
		case LoadSection:
			keep(c.loader.LoadSection(ctx, e.Name))
		case RenderProfile:
			c.view.RenderProfile(e.UserID)
		case LoadUser:
			keep(c.loader.LoadUser(ctx, e.UserID))
		case RenderProfileView:
			c.view.RenderProfileView(e.UserID, e.View)
		}
	}
	return firstErr
}
