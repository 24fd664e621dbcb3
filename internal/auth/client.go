package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"timedctl/internal/credentials"
)

// DefaultHTTPTimeout is the client-wide request timeout, independent of the
// poller's own interval and session deadline.
const DefaultHTTPTimeout = 30 * time.Second

// Store is the credential persistence the client depends on. It is
// implemented by *credentials.Store; tests substitute an in-memory fake.
type Store interface {
	Set(kind credentials.Kind, value string) error
	Get(kind credentials.Kind) (string, error)
	Delete(kind credentials.Kind) error
	Exists(kind credentials.Kind) bool
}

// VerificationHandler is invoked once per device flow, after the session is
// created and before polling starts. Implementations present the user code
// and verification URI to the user; the flow does not wait for them.
type VerificationHandler func(session *DeviceSession)

// Client drives device grant authentication and token lifecycle against a
// single provider and principal.
type Client struct {
	httpClient     *http.Client
	logger         *slog.Logger
	discoveryURL   string
	clientID       string
	store          Store
	onVerification VerificationHandler

	// now and sleep are seams for the poller's timing; tests replace them.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithVerificationHandler sets the handler that presents the user code and
// verification URI when a device flow starts.
func WithVerificationHandler(handler VerificationHandler) Option {
	return func(c *Client) {
		c.onVerification = handler
	}
}

// NewClient creates a client for the given provider discovery URL, OAuth
// client identifier, and credential store.
func NewClient(discoveryURL, clientID string, store Store, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: DefaultHTTPTimeout},
		logger:       slog.Default(),
		discoveryURL: strings.TrimSuffix(discoveryURL, "/"),
		clientID:     clientID,
		store:        store,
		now:          time.Now,
		sleep:        sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// sleepContext sleeps for the given duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EnsureValidToken returns a currently valid access token with minimal
// re-authentication: a stored token that is not near expiry is returned
// without any network call; an expired token is refreshed when a refresh
// token exists; everything else runs the full device flow.
func (c *Client) EnsureValidToken(ctx context.Context) (string, error) {
	if !c.store.Exists(credentials.KindAccess) {
		c.logger.Info("No stored token found, starting authentication flow")
		return c.Authenticate(ctx)
	}

	token, err := c.store.Get(credentials.KindAccess)
	if err != nil {
		c.logger.Warn("Failed to retrieve stored token, starting authentication flow",
			"error", err.Error(),
		)
		return c.Authenticate(ctx)
	}

	if !c.IsTokenExpired(token) {
		c.logger.Debug("Using stored token")
		return token, nil
	}

	c.logger.Info("Stored token has expired")

	if refreshToken, err := c.store.Get(credentials.KindRefresh); err == nil {
		newToken, err := c.Refresh(ctx, refreshToken)
		if err == nil {
			return newToken, nil
		}
		c.logger.Warn("Token refresh failed, starting authentication flow",
			"error", err.Error(),
		)
	} else {
		c.logger.Info("No refresh token available, starting authentication flow")
	}

	return c.Authenticate(ctx)
}

// ForceRenewToken deletes the stored tokens (best-effort) and runs the full
// device flow, ignoring any existing refresh token.
func (c *Client) ForceRenewToken(ctx context.Context) (string, error) {
	c.logger.Info("Forcing token renewal")

	if err := c.store.Delete(credentials.KindAccess); err != nil {
		c.logger.Warn("Failed to delete stored token", "error", err.Error())
	}

	return c.Authenticate(ctx)
}

// Logout deletes the stored access token and, best-effort, the paired
// refresh token.
func (c *Client) Logout() error {
	return c.store.Delete(credentials.KindAccess)
}

// Authenticate runs the full device flow: discovery, session initiation,
// polling, persistence. It returns the access token.
//
// A failed write of the freshly obtained access token is logged but not
// fatal: the caller still receives the valid in-memory token and will
// simply re-authenticate on a later run.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	c.logger.Info("Starting device grant authentication")

	cfg, err := c.discoverConfiguration(ctx)
	if err != nil {
		return "", err
	}

	session, err := c.startDeviceFlow(ctx, cfg)
	if err != nil {
		return "", err
	}

	if c.onVerification != nil {
		c.onVerification(session)
	}

	token, err := c.newTokenPoller(cfg, session).Wait(ctx)
	if err != nil {
		return "", err
	}

	c.logger.Info("Authentication successful")

	if err := c.store.Set(credentials.KindAccess, token.AccessToken); err != nil {
		c.logger.Warn("Authentication succeeded but the token could not be stored",
			"error", err.Error(),
		)
	}

	if token.RefreshToken != "" {
		if err := c.store.Set(credentials.KindRefresh, token.RefreshToken); err != nil {
			c.logger.Warn("Failed to store refresh token",
				"error", err.Error(),
			)
		}
	}

	return token.AccessToken, nil
}

// Refresh exchanges a refresh token for a new token pair and persists it.
// The provider configuration is discovered fresh rather than reused from a
// previous session; the redundant network call buys state simplicity.
//
// Unlike Authenticate, a failed write of the new access token is fatal
// here: the refresh consumed server-side state and the replacement token
// would be lost, so the caller must fully re-authenticate. A failed write
// of the new refresh token is tolerated because the stored access token
// remains usable for the rest of its life.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	c.logger.Debug("Attempting token refresh")

	cfg, err := c.discoverConfiguration(ctx)
	if err != nil {
		return "", err
	}

	data := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.TokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthFailedError{
			Op:     "token refresh",
			Status: resp.StatusCode,
			Body:   string(body),
		}
	}

	var tokResp tokenResponse
	if err := json.Unmarshal(body, &tokResp); err != nil {
		return "", &DecodeError{Op: "refresh response", Err: err}
	}

	token := tokResp.token(c.now())

	if err := c.store.Set(credentials.KindAccess, token.AccessToken); err != nil {
		return "", &AuthFailedError{Op: "token refresh", Err: fmt.Errorf("failed to store token: %w", err)}
	}

	// Some providers reuse the prior refresh token and omit a new one.
	if token.RefreshToken != "" {
		if err := c.store.Set(credentials.KindRefresh, token.RefreshToken); err != nil {
			c.logger.Warn("Failed to store refresh token",
				"error", err.Error(),
			)
		}
	}

	c.logger.Info("Successfully refreshed access token")
	return token.AccessToken, nil
}

// StoredToken returns the persisted access token without validating it.
// Returns an error wrapping credentials.ErrNotFound when none is stored.
func (c *Client) StoredToken() (string, error) {
	return c.store.Get(credentials.KindAccess)
}

// HasRefreshToken reports whether a refresh token is stored.
func (c *Client) HasRefreshToken() bool {
	return c.store.Exists(credentials.KindRefresh)
}
