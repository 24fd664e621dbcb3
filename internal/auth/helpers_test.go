package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"timedctl/internal/credentials"
)

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	values  map[credentials.Kind]string
	failGet bool
	failSet bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[credentials.Kind]string)}
}

func (s *fakeStore) Set(kind credentials.Kind, value string) error {
	if s.failSet {
		return errors.New("store write failure")
	}
	s.values[kind] = value
	return nil
}

func (s *fakeStore) Get(kind credentials.Kind) (string, error) {
	if s.failGet {
		return "", errors.New("store read failure")
	}
	value, ok := s.values[kind]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return value, nil
}

func (s *fakeStore) Delete(kind credentials.Kind) error {
	delete(s.values, kind)
	if kind == credentials.KindAccess {
		delete(s.values, credentials.KindRefresh)
	}
	return nil
}

func (s *fakeStore) Exists(kind credentials.Kind) bool {
	_, ok := s.values[kind]
	return ok
}

// fakeClock advances instantly instead of sleeping and records every sleep
// duration so tests can assert the poller's timing behavior.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	return nil
}

// useFakeClock wires a fake clock into the client's timing seams.
func useFakeClock(c *Client, clock *fakeClock) {
	c.now = clock.Now
	c.sleep = clock.Sleep
}

// signedToken builds a syntactically valid JWT carrying the given expiry.
// The signature is irrelevant; expiry checks never verify it.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "testuser",
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return token
}
