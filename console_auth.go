package trackAdmin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/trackAdmin/internal/flows"
	"go.uber.org/zap"
)

// Login authenticates, stores the issued pair and arms the monitor.
//
// A 401 maps to ErrInvalidCredentials and a 403 to ErrForbidden. Transport
// failures come back as a transient *RequestError. Every outcome also emits
// a notice.
func (c *Console) Login(ctx context.Context, username, password string) (Operator, error) {
	if err := c.ready(); err != nil {
		return Operator{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	const op = "login"

	c.authMu.Lock()
	res := c.flowDeps.Login(ctx, strings.TrimSpace(username), password)
	c.authMu.Unlock()

	if res.Failure != flows.LoginFailureNone {
		c.metrics.Inc(MetricLoginFailure)
		c.logger.Warn("login failed", zap.Int("failure", int(res.Failure)), zap.Error(res.Err))
		c.notify(ctx, NoticeError, op, loginFailureMessage(res.Err), nil)
		return Operator{}, res.Err
	}

	operator := Operator{ID: res.Response.ID, Username: res.Response.Username, Role: res.Response.Role}
	if operator.Username == "" {
		operator.Username = strings.TrimSpace(username)
	}
	c.profileMu.Lock()
	c.operator = operator
	c.profileMu.Unlock()

	c.monitor.Start()
	c.metrics.Inc(MetricLoginSuccess)
	c.logger.Info("login succeeded", zap.String("username", operator.Username))
	c.notify(ctx, NoticeSuccess, op, MessageSignedIn, nil)
	return operator, nil
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return MessageInvalidLogin
	case errors.Is(err, ErrForbidden):
		return MessageForbidden
	case IsTransient(err):
		return MessageUnreachable
	}
	if code := StatusCode(err); code > 0 {
		return "Server error: " + http.StatusText(code)
	}
	return "Login failed"
}

// Register creates an operator account. It does not log in.
func (c *Console) Register(ctx context.Context, username, password string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	const op = "POST /api/auth/register"

	resp, err := c.sendJSON(ctx, "/api/auth/register", credentials{Username: strings.TrimSpace(username), Password: password})
	if err == nil {
		switch {
		case resp.Status == http.StatusBadRequest:
			err = &RequestError{Op: op, StatusCode: resp.Status, Err: ErrRegistrationRejected}
		case resp.Status == http.StatusForbidden:
			err = &RequestError{Op: op, StatusCode: resp.Status, Err: ErrForbidden}
		case resp.Status < 200 || resp.Status >= 300:
			err = &RequestError{Op: op, StatusCode: resp.Status, Err: errors.New(errorMessage(resp))}
		}
	}

	if err != nil {
		c.metrics.Inc(MetricRegisterFailure)
		c.logger.Warn("registration failed", zap.Error(err))
		msg := "Registration failed"
		switch {
		case errors.Is(err, ErrRegistrationRejected):
			msg = MessageRegisterRejects
		case errors.Is(err, ErrForbidden):
			msg = MessageForbidden
		case IsTransient(err):
			msg = MessageUnreachable
		}
		c.notify(ctx, NoticeError, "register", msg, nil)
		return err
	}

	c.metrics.Inc(MetricRegisterSuccess)
	c.notify(ctx, NoticeSuccess, "register", MessageRegistered, nil)
	return nil
}

// Resume adopts a session restored from storage and arms the monitor.
// An expired access token is left for the next call or tick to refresh.
func (c *Console) Resume(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if !c.store.HasSession() {
		return ErrNoSession
	}
	c.monitor.Start()
	c.logger.Info("session resumed", zap.Bool("access_expired", c.store.AccessExpired()))
	return nil
}

// Logout clears the session, stops the monitor and runs the logout hook.
func (c *Console) Logout(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	err := c.clear(ctx)
	c.metrics.Inc(MetricLogout)
	c.notify(ctx, NoticeInfo, "logout", MessageSignedOut, nil)
	c.runLogoutHook()
	return err
}

// forceLogout is the irrecoverable-401 path: notice, clear, stop, hook.
// Parallel callers that lose the race see no session and do nothing.
func (c *Console) forceLogout(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.monitor.Stop()

	c.authMu.Lock()
	if !c.store.HasSession() {
		c.authMu.Unlock()
		return
	}
	err := c.clearLocked(ctx)
	c.authMu.Unlock()

	if err != nil {
		c.logger.Error("clear session on forced logout", zap.Error(err))
	}
	c.notify(context.WithoutCancel(ctx), NoticeError, "session", MessageSessionExpired, nil)
	c.metrics.Inc(MetricForcedLogout)
	c.logger.Warn("forced logout")
	c.runLogoutHook()
}

func (c *Console) clear(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.monitor.Stop()

	c.authMu.Lock()
	defer c.authMu.Unlock()
	return c.clearLocked(ctx)
}

func (c *Console) clearLocked(ctx context.Context) error {
	c.profileMu.Lock()
	c.operator = Operator{}
	c.profileMu.Unlock()
	return c.store.ClearSession(context.WithoutCancel(ctx))
}

func (c *Console) runLogoutHook() {
	c.hookMu.RLock()
	fn := c.onLogout
	c.hookMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Status is the configuration view: base URL and whether a session is held.
func (c *Console) Status() Status {
	st := Status{APIBaseURL: c.baseURL}
	if c.store == nil {
		return st
	}
	st.Authorized = c.store.HasSession()
	if exp, ok := c.store.ExpiresAt(); ok {
		st.AccessExpiry = exp
	}
	st.MonitorArmed = c.monitor.Armed()
	return st
}
