package trackAdmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/trackAdmin/internal/flows"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Do performs one logical authenticated call. An expired access token is
// refreshed before sending; a 401 triggers one refresh and one retry. When
// the session cannot be recovered the console is logged out and
// ErrUnauthorized is returned. A successful DELETE leaves out untouched;
// other successes decode the JSON body into out when out is non-nil.
func (c *Console) Do(ctx context.Context, method, path string, body, out any) error {
	if err := c.ready(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	op := method + " " + path

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: "marshal request body", Err: err}
		}
		payload = raw
	}

	if requestIDFromContext(ctx) == "" {
		ctx = WithRequestID(ctx, uuid.NewString())
	}

	res := flows.RunRequest(ctx, flows.RequestDeps{
		Tokens:        c.store.Tokens,
		AccessExpired: c.store.AccessExpired,
		Epoch:         c.store.Epoch,
		Refresh: func(ctx context.Context, observed string) bool {
			return c.refresh(ctx, observed) == nil
		},
		ForceLogout: c.forceLogout,
		Send: func(ctx context.Context, access string, _ int) (flows.Response, error) {
			return c.send(ctx, method, path, payload, access)
		},
		OnRetry: func(attempt int) {
			c.metrics.Inc(MetricRequestRetry)
			c.logger.Info("retrying after refresh",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.String("request_id", requestIDFromContext(ctx)),
			)
		},
	})

	switch res.Failure {
	case flows.RequestFailureNone:
		c.metrics.Inc(MetricRequestSuccess)
		if method == http.MethodDelete || out == nil || len(bytes.TrimSpace(res.Response.Body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(res.Response.Body, out); err != nil {
			return &RequestError{Op: "decode " + op, StatusCode: res.Response.Status, Err: err}
		}
		return nil

	case flows.RequestFailureUnauthorized:
		c.metrics.Inc(MetricRequestFailure)
		return ErrUnauthorized

	case flows.RequestFailureStale:
		c.metrics.Inc(MetricStaleResponse)
		c.logger.Debug("discarding response from previous session", zap.String("op", op))
		return ErrStaleSession

	case flows.RequestFailureTransport:
		c.metrics.Inc(MetricRequestFailure)
		c.metrics.Inc(MetricRequestTransportError)
		c.notify(ctx, NoticeError, op, MessageUnreachable, nil)
		return res.Err

	default:
		c.metrics.Inc(MetricRequestFailure)
		return c.statusError(ctx, op, res.Response)
	}
}

// statusError maps a failed status to an error and tells the operator about
// it. A 400 carrying field errors becomes a *ValidationError.
func (c *Console) statusError(ctx context.Context, op string, resp flows.Response) error {
	switch resp.Status {
	case http.StatusBadRequest:
		if verr := parseValidationError(op, resp.Body); verr != nil {
			c.notify(ctx, NoticeError, op, verr.Summary(), verr.Fields)
			return verr
		}
	case http.StatusForbidden:
		c.notify(ctx, NoticeError, op, MessageForbidden, nil)
		return &RequestError{Op: op, StatusCode: resp.Status, Err: ErrForbidden}
	}
	c.notify(ctx, NoticeError, op, serverErrorMessage(resp.Status), map[string]string{
		"status": strconv.Itoa(resp.Status),
	})
	return &RequestError{Op: op, StatusCode: resp.Status, Err: errors.New(errorMessage(resp))}
}

func serverErrorMessage(status int) string {
	text := http.StatusText(status)
	if text == "" {
		text = strconv.Itoa(status)
	}
	return "Server error: " + text
}

// send performs a single HTTP exchange. Only transport failures return an error.
func (c *Console) send(ctx context.Context, method, path string, payload []byte, access string) (flows.Response, error) {
	var bodyReader io.Reader
	if len(payload) > 0 {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), bodyReader)
	if err != nil {
		return flows.Response{}, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	if id := requestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.Observe(MetricRequestLatency, time.Since(start))
	if err != nil {
		return flows.Response{}, &RequestError{Op: method + " " + path, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.config.API.MaxResponseBytes))
	if err != nil {
		return flows.Response{}, &RequestError{Op: "read http response", StatusCode: resp.StatusCode, Transient: true, Err: err}
	}

	c.logger.Debug("http exchange",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Bool("token_present", access != ""),
	)
	return flows.Response{Status: resp.StatusCode, Body: raw}, nil
}

// sendJSON is the anonymous exchange used by the auth endpoints.
func (c *Console) sendJSON(ctx context.Context, path string, body any) (flows.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return flows.Response{}, &RequestError{Op: "marshal request body", Err: err}
	}
	if requestIDFromContext(ctx) == "" {
		ctx = WithRequestID(ctx, uuid.NewString())
	}
	return c.send(ctx, http.MethodPost, path, payload, "")
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Console) callLogin(ctx context.Context, username, password string) (flows.LoginResponse, error) {
	const op = "POST /api/auth/login"
	resp, err := c.sendJSON(ctx, "/api/auth/login", credentials{Username: username, Password: password})
	if err != nil {
		return flows.LoginResponse{}, err
	}
	switch {
	case resp.Status == http.StatusUnauthorized:
		return flows.LoginResponse{}, &RequestError{Op: op, StatusCode: resp.Status, Err: ErrInvalidCredentials}
	case resp.Status == http.StatusForbidden:
		return flows.LoginResponse{}, &RequestError{Op: op, StatusCode: resp.Status, Err: ErrForbidden}
	case resp.Status < 200 || resp.Status >= 300:
		return flows.LoginResponse{}, &RequestError{Op: op, StatusCode: resp.Status, Err: errors.New(errorMessage(resp))}
	}

	var out flows.LoginResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return flows.LoginResponse{}, &RequestError{Op: "decode " + op, StatusCode: resp.Status, Err: err}
	}
	return out, nil
}

func (c *Console) callRefresh(ctx context.Context, refreshToken string) (flows.TokenPair, error) {
	const op = "POST /api/auth/refresh"
	resp, err := c.sendJSON(ctx, "/api/auth/refresh", struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: refreshToken})
	if err != nil {
		return flows.TokenPair{}, err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return flows.TokenPair{}, &RequestError{Op: op, StatusCode: resp.Status, Err: ErrRefreshFailed}
	}

	var out flows.TokenPair
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return flows.TokenPair{}, &RequestError{Op: "decode " + op, StatusCode: resp.Status, Err: err}
	}
	return out, nil
}

func errorMessage(resp flows.Response) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(resp.Body, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if msg := strings.TrimSpace(string(resp.Body)); msg != "" && len(msg) <= 256 {
		return msg
	}
	return fmt.Sprintf("server error: %d %s", resp.Status, http.StatusText(resp.Status))
}
