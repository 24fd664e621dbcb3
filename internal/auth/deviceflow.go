package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// deviceFlowScope is the fixed scope requested for every device
// authorization session.
const deviceFlowScope = "openid profile email"

// startDeviceFlow starts a device authorization session against the
// provider. The returned session carries the user-facing verification data
// and the polling parameters.
func (c *Client) startDeviceFlow(ctx context.Context, cfg *ProviderConfig) (*DeviceSession, error) {
	c.logger.Debug("Starting device authorization",
		"endpoint", cfg.DeviceAuthorizationEndpoint,
	)

	data := url.Values{
		"client_id": {c.clientID},
		"scope":     {deviceFlowScope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.DeviceAuthorizationEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create device authorization request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device authorization request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read device authorization response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthFailedError{
			Op:     "device authorization",
			Status: resp.StatusCode,
			Body:   string(body),
		}
	}

	var devResp deviceAuthResponse
	if err := json.Unmarshal(body, &devResp); err != nil {
		return nil, &DecodeError{Op: "device authorization response", Err: err}
	}

	session := devResp.session(c.now())

	c.logger.Debug("Device authorization session created",
		"user_code", session.UserCode,
		"verification_uri", session.VerificationURI,
		"expires_at", session.ExpiresAt,
		"interval", session.Interval,
	)

	return session, nil
}
