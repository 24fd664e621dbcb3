// Package credentials persists OAuth tokens in the operating system's
// secret store (Secret Service on Linux, Keychain on macOS, Credential
// Manager on Windows) via the system keyring.
//
// Access and refresh tokens occupy two independently addressable entries
// so that one can be deleted without touching the other: the access token
// lives under (service, username) and the refresh token under
// (service + "_refresh", username). Every operation hits the underlying
// store directly; there is no in-memory cache layer, so concurrent
// writers need external mutual exclusion.
package credentials
