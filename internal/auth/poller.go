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

	"golang.org/x/oauth2"
)

// deviceGrantType is the grant_type value for device code exchange (RFC 8628).
const deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

const (
	// defaultPollInterval applies when the provider omits an interval.
	defaultPollInterval = 5 * time.Second

	// slowDownIncrement is added to the session's original interval on a
	// slow_down response. Repeated slow_down responses yield the same
	// interval again; the increase is not cumulative.
	slowDownIncrement = 5 * time.Second

	// transientRetryBudget bounds how many transport failures and unknown
	// error codes the poller tolerates over the life of one session.
	transientRetryBudget = 5

	// initialBackoff is the first transient-failure backoff delay. It
	// doubles after every consumed retry.
	initialBackoff = 1 * time.Second
)

// pollState is the poller's state. Polling is the only non-terminal state.
type pollState int

const (
	statePolling pollState = iota
	stateSucceeded
	stateExpiredSession
	stateDenied
	stateFailed
)

// String returns the string representation of the poll state.
func (s pollState) String() string {
	switch s {
	case statePolling:
		return "polling"
	case stateSucceeded:
		return "succeeded"
	case stateExpiredSession:
		return "expired_session"
	case stateDenied:
		return "denied"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// tokenPoller polls the token endpoint until the user approves or the
// session reaches a terminal state. Two concerns are tracked with separate
// counters: the protocol interval (provider-mandated, grows on slow_down,
// resets on authorization_pending) and the transient-retry budget (bounds
// network flakiness and unknown error codes, with exponential backoff).
type tokenPoller struct {
	httpClient    *http.Client
	logger        *slog.Logger
	tokenEndpoint string
	clientID      string
	session       *DeviceSession

	// interval is the current wait before the next poll.
	interval time.Duration

	// retriesLeft and backoff belong to the transient-failure budget only.
	retriesLeft int
	backoff     time.Duration

	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	state pollState
	token *oauth2.Token
	err   error
}

// newTokenPoller creates a poller for one device session.
func (c *Client) newTokenPoller(cfg *ProviderConfig, session *DeviceSession) *tokenPoller {
	return &tokenPoller{
		httpClient:    c.httpClient,
		logger:        c.logger,
		tokenEndpoint: cfg.TokenEndpoint,
		clientID:      c.clientID,
		session:       session,
		interval:      session.Interval,
		retriesLeft:   transientRetryBudget,
		backoff:       initialBackoff,
		now:           c.now,
		sleep:         c.sleep,
		state:         statePolling,
	}
}

// Wait runs the poll loop to a terminal state and returns the token pair on
// success. The loop never issues a request before sleeping the current
// interval, and never issues a request after the session deadline.
func (p *tokenPoller) Wait(ctx context.Context) (*oauth2.Token, error) {
	for p.state == statePolling {
		if err := p.step(ctx); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("Token polling finished", "state", p.state.String())

	if p.state == stateSucceeded {
		return p.token, nil
	}
	return nil, p.err
}

// step performs one iteration of the poll loop: deadline check, sleep,
// request, dispatch. It returns an error only when the context is done;
// protocol outcomes transition the state machine instead.
func (p *tokenPoller) step(ctx context.Context) error {
	if p.now().After(p.session.ExpiresAt) {
		p.state = stateExpiredSession
		p.err = fmt.Errorf("%w: device code expired before authorization completed", ErrSessionExpired)
		return nil
	}

	if err := p.sleep(ctx, p.interval); err != nil {
		return err
	}

	p.logger.Debug("Polling token endpoint", "interval", p.interval)

	body, status, err := p.poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return p.retryTransient(ctx, err)
	}

	if status >= 200 && status <= 299 {
		var tokResp tokenResponse
		if err := json.Unmarshal(body, &tokResp); err != nil {
			// A malformed success body is fatal, not retried.
			p.state = stateFailed
			p.err = &DecodeError{Op: "token response", Err: err}
			return nil
		}
		p.state = stateSucceeded
		p.token = tokResp.token(p.now())
		return nil
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		// Deliberately permissive: an unparsable error body is treated like
		// authorization_pending so a provider hiccup does not abort the
		// session. See the package docs for the trade-off.
		p.logger.Warn("Failed to parse token error response, continuing to poll",
			"status", status,
			"error", err.Error(),
		)
		return nil
	}

	return p.dispatch(ctx, &errResp)
}

// dispatch handles a parsed OAuth error response.
func (p *tokenPoller) dispatch(ctx context.Context, errResp *errorResponse) error {
	switch errResp.Error {
	case "authorization_pending":
		p.logger.Debug("Authorization pending, continuing to poll")
		p.interval = p.session.Interval
		return nil

	case "slow_down":
		p.interval = p.session.Interval + slowDownIncrement
		p.logger.Debug("Provider requested slow down",
			"interval", p.interval,
		)
		return nil

	case "expired_token":
		p.state = stateExpiredSession
		p.err = fmt.Errorf("%w: provider reported the device code as expired", ErrSessionExpired)
		return nil

	case "access_denied":
		p.state = stateDenied
		p.err = ErrAccessDenied
		return nil

	default:
		p.logger.Warn("Unexpected error during token polling",
			"code", errResp.Error,
			"description", errResp.ErrorDescription,
		)
		return p.retryTransient(ctx, fmt.Errorf("unexpected token error code %q", errResp.Error))
	}
}

// retryTransient consumes one unit of the transient-retry budget and backs
// off exponentially. When the budget is exhausted the poller fails with the
// given cause.
func (p *tokenPoller) retryTransient(ctx context.Context, cause error) error {
	if p.retriesLeft == 0 {
		p.state = stateFailed
		p.err = &AuthFailedError{Op: "token polling", Err: cause}
		return nil
	}

	p.retriesLeft--
	p.logger.Warn("Transient failure during token polling, retrying",
		"error", cause.Error(),
		"retries_left", p.retriesLeft,
		"backoff", p.backoff,
	)

	if err := p.sleep(ctx, p.backoff); err != nil {
		return err
	}
	p.backoff *= 2

	return nil
}

// poll issues one token endpoint request. The returned error is a transport
// failure; HTTP error responses are returned as body plus status for the
// caller to dispatch.
func (p *tokenPoller) poll(ctx context.Context) ([]byte, int, error) {
	data := url.Values{
		"grant_type":  {deviceGrantType},
		"device_code": {p.session.DeviceCode},
		"client_id":   {p.clientID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read token response: %w", err)
	}

	return body, resp.StatusCode, nil
}
