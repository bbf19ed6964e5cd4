package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-elearn-client/api"
	"github.com/jrsteele09/go-elearn-client/diag"
	"github.com/jrsteele09/go-elearn-client/internal/config"
	apperrors "github.com/jrsteele09/go-elearn-client/internal/errors"
	"github.com/jrsteele09/go-elearn-client/notify"
	"github.com/jrsteele09/go-elearn-client/sessions"
	"github.com/jrsteele09/go-elearn-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRefreshPath      = "/user/refresh-token"
	defaultAdminScopeHeader = "X-Admin-Scope"
	requestIDHeader         = "X-Request-ID"
	contentTypeJSON         = "application/json; charset=utf-8"
)

// Request describes one API call relative to the client's base URL
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Client issues requests with the current session's credential and recovers
// from user access-token expiry with a single refresh and retry.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	store       *sessions.Store
	notifier    notify.Notifier
	sink        diag.Sink
	logger      zerolog.Logger
	refreshPath string
	adminHeader string
	coalesce    bool
	refreshes   singleflight.Group
	trace       TraceFunc
	nowFunc     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

func WithDiagnostics(sink diag.Sink) Option {
	return func(c *Client) {
		c.sink = sink
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

func WithAdminScopeHeader(header string) Option {
	return func(c *Client) {
		c.adminHeader = header
	}
}

// WithIndependentRefresh makes every expired request run its own refresh call
// instead of sharing an in-flight refresh for the same refresh token.
func WithIndependentRefresh() Option {
	return func(c *Client) {
		c.coalesce = false
	}
}

func WithTrace(trace TraceFunc) Option {
	return func(c *Client) {
		c.trace = trace
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}

func New(baseURL string, store *sessions.Store, options ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		store:       store,
		refreshPath: defaultRefreshPath,
		adminHeader: defaultAdminScopeHeader,
		coalesce:    true,
		logger:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.notifier == nil {
		c.notifier = notify.Nop{}
	}
	if c.sink == nil {
		c.sink = diag.Nop{}
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	return c
}

// NewFromConfig builds a client from the API configuration. Explicit options win.
func NewFromConfig(cfg config.APIConfig, store *sessions.Store, options ...Option) *Client {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.GetRequestTimeout()}),
		WithRefreshPath(cfg.GetRefreshPath()),
		WithAdminScopeHeader(cfg.GetAdminScopeHeader()),
	}
	if !cfg.GetCoalesceRefresh() {
		base = append(base, WithIndependentRefresh())
	}
	return New(cfg.GetBaseURL(), store, append(base, options...)...)
}

func (c *Client) Store() *sessions.Store {
	return c.store
}

func (c *Client) Notifier() notify.Notifier {
	return c.notifier
}

// Do runs req through the request state machine and returns its terminal result
func (c *Client) Do(ctx context.Context, req Request) api.Result {
	requestID := uuid.NewString()
	c.transition(requestID, StateInit)

	session := c.store.Snapshot()
	c.transition(requestID, StateSending)
	result := c.send(ctx, requestID, req, session, session.BearerToken(), 1)
	if result.OK() {
		c.transition(requestID, StateSucceeded)
		return result
	}

	if !isExpiry(session, result) {
		c.transition(requestID, StateFailedNonExpiry)
		c.notifier.Error(result.Message)
		return result
	}
	c.transition(requestID, StateFailedExpiry)

	c.transition(requestID, StateRefreshSending)
	accessToken, err := c.refresh(ctx, requestID, session.RefreshToken)
	switch {
	case err != nil && ctx.Err() != nil:
		// the caller gave up; whether the token is still good is unknown
		c.transition(requestID, StateFailed)
		cancelled := api.TransportFailure(apperrors.Wrapf(apperrors.ErrTransport, "refresh: %v", ctx.Err()))
		c.record(requestID, req, session, 0, diag.OutcomeFailure, cancelled.Message, 1, 0)
		return cancelled
	case errors.Is(err, apperrors.ErrSessionChanged):
		c.transition(requestID, StateFailed)
		c.notifier.Error(result.Message)
		return result
	case err != nil:
		c.transition(requestID, StateRefreshFailed)
		cleared, clearErr := c.store.ClearIfCurrent(ctx, session.RefreshToken)
		if clearErr != nil {
			c.logger.Error().Err(clearErr).Str("request_id", requestID).Msg("clearing session after failed refresh")
		}
		if !cleared && clearErr == nil {
			// a newer session replaced the one whose refresh failed
			c.transition(requestID, StateFailed)
			c.notifier.Error(result.Message)
			return result
		}
		c.transition(requestID, StateSessionDestroyed)
		c.record(requestID, req, session, http.StatusUnauthorized, diag.OutcomeSessionExpired, err.Error(), 1, 0)
		c.notifier.Error(api.SessionExpiredMessage)
		return api.SessionExpired()
	}
	c.transition(requestID, StateRefreshSucceeded)

	c.transition(requestID, StateRetrySending)
	retry := c.send(ctx, requestID, req, session, accessToken, 2)
	if retry.OK() {
		c.transition(requestID, StateSucceeded)
		return retry
	}
	c.transition(requestID, StateFailed)
	c.notifier.Error(retry.Message)
	return retry
}

// isExpiry is true only for user sessions receiving 401 "Token expired"
func isExpiry(session sessions.Session, result api.Result) bool {
	return session.IsUser() &&
		result.Kind == api.KindFailure &&
		result.StatusCode == http.StatusUnauthorized &&
		result.Envelope.Message == api.TokenExpiredMessage
}

func (c *Client) send(ctx context.Context, requestID string, req Request, session sessions.Session, bearer string, attempt int) api.Result {
	start := c.nowFunc()
	httpReq, err := c.newHTTPRequest(ctx, requestID, req)
	if err != nil {
		result := api.TransportFailure(err)
		c.record(requestID, req, session, 0, diag.OutcomeFailure, result.Message, attempt, 0)
		return result
	}

	token.Attach(httpReq, bearer)
	if session.IsAdmin() {
		httpReq.Header.Set(c.adminHeader, "true")
	}

	result := c.execute(httpReq)
	outcome := diag.OutcomeSuccess
	if !result.OK() {
		outcome = diag.OutcomeFailure
	}
	c.record(requestID, req, session, result.StatusCode, outcome, result.Message, attempt, c.nowFunc().Sub(start))
	return result
}

func (c *Client) newHTTPRequest(ctx context.Context, requestID string, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "encode body: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%v", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	return httpReq, nil
}

// execute performs the round trip and classifies the response
func (c *Client) execute(httpReq *http.Request) api.Result {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return api.TransportFailure(apperrors.Wrapf(apperrors.ErrTransport, "%v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return api.TransportFailure(apperrors.Wrapf(apperrors.ErrTransport, "read body: %v", err))
	}
	env, _ := api.DecodeEnvelope(raw)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && !env.Failed() {
		return api.Success(resp.StatusCode, env)
	}

	message := env.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	kind := api.FailureBusiness
	switch {
	case resp.StatusCode == http.StatusUnauthorized && env.Message == api.TokenExpiredMessage:
		kind = api.FailureExpired
	case resp.StatusCode == http.StatusForbidden:
		kind = api.FailureForbidden
	}
	return api.Failure(kind, resp.StatusCode, message, env)
}

// refresh obtains a new access token and stores it. Concurrent callers holding
// the same refresh token share one call unless independent refresh is set. A
// shared call is not bound to any single caller's context, and each caller
// stops waiting when its own context ends.
func (c *Client) refresh(ctx context.Context, requestID, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.ErrNoRefreshToken
	}
	if !c.coalesce {
		return c.doRefresh(ctx, requestID, refreshToken)
	}
	flight := c.refreshes.DoChan(refreshToken, func() (any, error) {
		return c.doRefresh(context.WithoutCancel(ctx), requestID, refreshToken)
	})
	select {
	case <-ctx.Done():
		return "", apperrors.Wrapf(apperrors.ErrTransport, "refresh: %v", ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) doRefresh(ctx context.Context, requestID, refreshToken string) (string, error) {
	req := Request{Method: http.MethodGet, Path: c.refreshPath}
	refreshSession := sessions.Session{Mode: sessions.ModeUser}

	start := c.nowFunc()
	httpReq, err := c.newHTTPRequest(ctx, requestID, req)
	if err != nil {
		return "", err
	}
	token.Attach(httpReq, refreshToken)

	result := c.execute(httpReq)
	elapsed := c.nowFunc().Sub(start)
	if !result.OK() {
		c.record(requestID, req, refreshSession, result.StatusCode, diag.OutcomeRefreshFailed, result.Message, 1, elapsed)
		return "", apperrors.Wrapf(apperrors.ErrRefreshRejected, "%s", result.Message)
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := result.Decode(&payload); err != nil || payload.AccessToken == "" {
		c.record(requestID, req, refreshSession, result.StatusCode, diag.OutcomeRefreshFailed, "no access token in refresh response", 1, elapsed)
		return "", apperrors.Wrapf(apperrors.ErrRefreshRejected, "no access token in refresh response")
	}

	if err := c.store.SetAccessToken(ctx, refreshToken, payload.AccessToken); err != nil {
		c.record(requestID, req, refreshSession, result.StatusCode, diag.OutcomeRefreshFailed, err.Error(), 1, elapsed)
		return "", errors.Wrap(err, "Client.doRefresh SetAccessToken")
	}
	c.record(requestID, req, refreshSession, result.StatusCode, diag.OutcomeRefresh, result.Message, 1, elapsed)
	return payload.AccessToken, nil
}

func (c *Client) transition(requestID string, state State) {
	if c.trace != nil {
		c.trace(requestID, state)
	}
}

func (c *Client) record(requestID string, req Request, session sessions.Session, status int, outcome diag.Outcome, message string, attempt int, elapsed time.Duration) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	c.sink.Record(diag.Event{
		RequestID: requestID,
		Method:    method,
		Path:      req.Path,
		Mode:      string(session.Mode),
		Status:    status,
		Outcome:   outcome,
		Message:   message,
		Attempt:   attempt,
		Duration:  elapsed,
	})
}
