package trackAdmin

import (
	"context"
	"fmt"

	"github.com/MrEthical07/trackAdmin/internal/flows"
	"go.uber.org/zap"
)

// Refresh rotates the token pair now. On failure the session is kept and the
// caller decides whether to log out; the request path and the monitor do.
func (c *Console) Refresh(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// refresh runs refresh-and-recover. Concurrent callers share one backend
// call; a caller whose observed refresh token has already been rotated gets
// success without another call.
func (c *Console) refresh(ctx context.Context, observed string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// The shared call must outlive any single caller's cancellation.
	shared := context.WithoutCancel(ctx)

	v, err, _ := c.refreshSF.Do("refresh", func() (any, error) {
		c.authMu.Lock()
		defer c.authMu.Unlock()
		return c.flowDeps.Refresh(shared, observed), nil
	})
	if err != nil {
		return err
	}
	res := v.(flows.RefreshResult)

	if res.OK() {
		if res.Rotated {
			c.metrics.Inc(MetricRefreshSuccess)
			c.logger.Info("session refreshed")
		} else {
			c.metrics.Inc(MetricRefreshSkipped)
		}
		return nil
	}

	c.metrics.Inc(MetricRefreshFailure)
	c.logger.Warn("refresh failed",
		zap.Int("failure", int(res.Failure)),
		zap.Error(res.Err),
	)
	return mapRefreshFailure(res)
}

func mapRefreshFailure(res flows.RefreshResult) error {
	switch res.Failure {
	case flows.RefreshFailureNoToken:
		return ErrNoSession
	case flows.RefreshFailureTransport:
		return res.Err
	default:
		return fmt.Errorf("%w: %v", ErrRefreshFailed, res.Err)
	}
}
