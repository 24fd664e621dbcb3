package credentials

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
)

// refreshSuffix is appended to the service name for the refresh token entry.
// Keeping the two tokens under distinct service names lets them be deleted
// independently of each other.
const refreshSuffix = "_refresh"

// ErrNotFound is returned by Get when no entry exists for the requested kind.
var ErrNotFound = errors.New("credential not found")

// Kind selects which of the two store entries an operation addresses.
type Kind int

const (
	// KindAccess addresses the access token entry.
	KindAccess Kind = iota

	// KindRefresh addresses the refresh token entry.
	KindRefresh
)

// String returns the string representation of the credential kind.
func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Store reads and writes tokens in the OS keyring, keyed by a service
// (application) name and a principal (user) name.
type Store struct {
	service string
	user    string
	logger  *slog.Logger
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store addressing keyring entries for the given service and
// principal name.
func New(service, user string, opts ...Option) *Store {
	s := &Store{
		service: service,
		user:    user,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// serviceFor maps a credential kind to its keyring service name.
func (s *Store) serviceFor(kind Kind) string {
	if kind == KindRefresh {
		return s.service + refreshSuffix
	}
	return s.service
}

// Set writes a token value, overwriting any previous entry of the same kind.
// SECURITY: Token values are never logged. Only the kind and principal are
// logged for audit purposes.
func (s *Store) Set(kind Kind, value string) error {
	if err := keyring.Set(s.serviceFor(kind), s.user, value); err != nil {
		return fmt.Errorf("failed to store %s token for %q: %w", kind, s.user, err)
	}

	s.logger.Debug("Stored token in keyring",
		"kind", kind.String(),
		"user", s.user,
	)
	return nil
}

// Get reads the token value of the given kind. Returns an error wrapping
// ErrNotFound when no entry exists.
func (s *Store) Get(kind Kind) (string, error) {
	value, err := keyring.Get(s.serviceFor(kind), s.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%s token for %q: %w", kind, s.user, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read %s token for %q: %w", kind, s.user, err)
	}
	return value, nil
}

// Delete removes the entry of the given kind. A missing entry is not an
// error. Deleting the access token additionally attempts to delete the
// paired refresh token; that second deletion is best-effort and its failure
// is never propagated.
func (s *Store) Delete(kind Kind) error {
	if kind == KindAccess {
		if err := keyring.Delete(s.serviceFor(KindRefresh), s.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			s.logger.Debug("Failed to delete refresh token entry",
				"user", s.user,
				"error", err.Error(),
			)
		}
	}

	err := keyring.Delete(s.serviceFor(kind), s.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s token for %q: %w", kind, s.user, err)
	}

	s.logger.Debug("Deleted token from keyring",
		"kind", kind.String(),
		"user", s.user,
	)
	return nil
}

// Exists reports whether an entry of the given kind is present in the store.
func (s *Store) Exists(kind Kind) bool {
	_, err := keyring.Get(s.serviceFor(kind), s.user)
	return err == nil
}
