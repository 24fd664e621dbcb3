package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// ProviderConfig holds the provider endpoints read from the OpenID
// configuration document. It is immutable once fetched and is fetched fresh
// on every authentication attempt rather than cached across runs.
type ProviderConfig struct {
	// DeviceAuthorizationEndpoint is where device authorization sessions
	// are started (RFC 8628 section 3.1).
	DeviceAuthorizationEndpoint string `json:"device_authorization_endpoint"`

	// TokenEndpoint is where device codes and refresh tokens are exchanged
	// for access tokens.
	TokenEndpoint string `json:"token_endpoint"`
}

// DeviceSession is one device authorization session. It lives only for the
// duration of polling and is never persisted.
type DeviceSession struct {
	// DeviceCode is the opaque, server-issued secret presented when polling.
	DeviceCode string

	// UserCode is the short human-readable code the user enters in the browser.
	UserCode string

	// VerificationURI is where the user enters the code.
	VerificationURI string

	// VerificationURIComplete embeds the user code in the URI, suitable for
	// opening directly in a browser.
	VerificationURIComplete string

	// ExpiresAt is the absolute deadline for the session. It is fixed at
	// creation and never extended.
	ExpiresAt time.Time

	// Interval is the minimum delay between token endpoint polls as issued
	// by the provider. The poller's current interval may grow beyond this
	// on slow_down responses, but always resets back to it.
	Interval time.Duration
}

// deviceAuthResponse is the wire shape of the device authorization endpoint
// response (RFC 8628 section 3.2).
type deviceAuthResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int64  `json:"expires_in"`
	Interval                int64  `json:"interval"`
}

// session converts the wire response into a DeviceSession, applying the
// RFC 8628 default interval of 5 seconds when the provider omits one.
func (r *deviceAuthResponse) session(now time.Time) *DeviceSession {
	interval := r.Interval
	if interval == 0 {
		interval = int64(defaultPollInterval / time.Second)
	}

	return &DeviceSession{
		DeviceCode:              r.DeviceCode,
		UserCode:                r.UserCode,
		VerificationURI:         r.VerificationURI,
		VerificationURIComplete: r.VerificationURIComplete,
		ExpiresAt:               now.Add(time.Duration(r.ExpiresIn) * time.Second),
		Interval:                time.Duration(interval) * time.Second,
	}
}

// tokenResponse is the wire shape of a successful token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// token converts the wire response into an oauth2.Token.
func (r *tokenResponse) token(now time.Time) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
	}

	if r.ExpiresIn > 0 {
		token.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}

	if r.IDToken != "" {
		token = token.WithExtra(map[string]interface{}{
			"id_token": r.IDToken,
		})
	}

	return token
}

// errorResponse is the wire shape of an OAuth error response.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
