package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// wellKnownPath is the OpenID Connect discovery document path, appended to
// the configured discovery base URL.
const wellKnownPath = "/.well-known/openid-configuration"

// discoverConfiguration fetches the provider's OpenID configuration
// document. There is no retry at this layer; retrying is the caller's
// responsibility.
func (c *Client) discoverConfiguration(ctx context.Context) (*ProviderConfig, error) {
	discoveryURL := c.discoveryURL + wellKnownPath
	c.logger.Debug("Fetching OpenID configuration", "url", discoveryURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OpenID configuration: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenID configuration: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthFailedError{
			Op:     "OpenID configuration fetch",
			Status: resp.StatusCode,
			Body:   string(body),
		}
	}

	var cfg ProviderConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, &DecodeError{Op: "OpenID configuration", Err: err}
	}

	if cfg.DeviceAuthorizationEndpoint == "" || cfg.TokenEndpoint == "" {
		return nil, &AuthFailedError{
			Op:     "OpenID configuration fetch",
			Status: resp.StatusCode,
			Body:   string(body),
			Err:    fmt.Errorf("document is missing required endpoints"),
		}
	}

	c.logger.Debug("Discovered provider endpoints",
		"device_authorization_endpoint", cfg.DeviceAuthorizationEndpoint,
		"token_endpoint", cfg.TokenEndpoint,
	)

	return &cfg, nil
}
