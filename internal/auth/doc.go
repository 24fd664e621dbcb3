// Package auth implements OAuth2 Device Authorization Grant (RFC 8628)
// authentication against the Timed SSO provider, plus the lifecycle of the
// resulting tokens.
//
// # Architecture
//
// The package composes six collaborators behind a single entry point:
//
//   - Discovery of the provider's OpenID configuration document
//   - Initiation of a device authorization session
//   - A time-driven poller that waits for the user to approve the session
//   - Unverified JWT claim decoding for local expiry checks
//   - Token refresh via the refresh_token grant
//   - Persistence through an injected credential store
//
// EnsureValidToken is the orchestrator: it returns a stored token when it is
// still valid, refreshes it when a refresh token is available, and falls back
// to a full device flow otherwise. ForceRenewToken discards the stored token
// and always runs the full flow.
//
// # Trust boundary
//
// Expiry checks decode the access token's claims WITHOUT verifying its
// signature. This is deliberate: the token was obtained directly from the
// trusted provider over TLS in this same process, and it is only inspected
// locally to decide whether re-authentication is needed. Do not reuse this
// decoding for tokens from untrusted sources.
//
// # Concurrency
//
// The package assumes at most one authentication attempt in flight per
// process. The credential store's overwrite-on-write semantics are not
// atomic with respect to concurrent readers.
package auth
