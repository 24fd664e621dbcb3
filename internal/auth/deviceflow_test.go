package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStartDeviceFlow(t *testing.T) {
	t.Run("creates a session from the response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("Failed to parse form: %v", err)
			}
			if got := r.Form.Get("client_id"); got != "timed-client" {
				t.Errorf("Expected client_id %q, got %q", "timed-client", got)
			}
			if got := r.Form.Get("scope"); got != deviceFlowScope {
				t.Errorf("Expected scope %q, got %q", deviceFlowScope, got)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"device_code": "dc-123",
				"user_code": "WXYZ-ABCD",
				"verification_uri": "https://sso.example.com/device",
				"verification_uri_complete": "https://sso.example.com/device?user_code=WXYZ-ABCD",
				"expires_in": 600,
				"interval": 7
			}`))
		}))
		defer server.Close()

		clock := newFakeClock()
		c := NewClient("https://sso.example.com", "timed-client", newFakeStore(),
			WithHTTPClient(server.Client()))
		useFakeClock(c, clock)

		session, err := c.startDeviceFlow(context.Background(),
			&ProviderConfig{DeviceAuthorizationEndpoint: server.URL})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if session.DeviceCode != "dc-123" {
			t.Errorf("Unexpected device code: %q", session.DeviceCode)
		}
		if session.UserCode != "WXYZ-ABCD" {
			t.Errorf("Unexpected user code: %q", session.UserCode)
		}
		if session.Interval != 7*time.Second {
			t.Errorf("Expected interval 7s, got %v", session.Interval)
		}
		if want := clock.Now().Add(600 * time.Second); !session.ExpiresAt.Equal(want) {
			t.Errorf("Expected expiry %v, got %v", want, session.ExpiresAt)
		}
	})

	t.Run("defaults the interval to 5 seconds", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"device_code": "dc-123",
				"user_code": "WXYZ-ABCD",
				"verification_uri": "https://sso.example.com/device",
				"verification_uri_complete": "https://sso.example.com/device?user_code=WXYZ-ABCD",
				"expires_in": 600
			}`))
		}))
		defer server.Close()

		c := NewClient("https://sso.example.com", "timed-client", newFakeStore(),
			WithHTTPClient(server.Client()))

		session, err := c.startDeviceFlow(context.Background(),
			&ProviderConfig{DeviceAuthorizationEndpoint: server.URL})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if session.Interval != 5*time.Second {
			t.Errorf("Expected default interval 5s, got %v", session.Interval)
		}
	})

	t.Run("surfaces HTTP status and body on non-2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_client"}`))
		}))
		defer server.Close()

		c := NewClient("https://sso.example.com", "timed-client", newFakeStore(),
			WithHTTPClient(server.Client()))

		_, err := c.startDeviceFlow(context.Background(),
			&ProviderConfig{DeviceAuthorizationEndpoint: server.URL})

		var authErr *AuthFailedError
		if !errors.As(err, &authErr) {
			t.Fatalf("Expected AuthFailedError, got %v", err)
		}
		if authErr.Status != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d", http.StatusBadRequest, authErr.Status)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		defer server.Close()

		c := NewClient("https://sso.example.com", "timed-client", newFakeStore(),
			WithHTTPClient(server.Client()))

		_, err := c.startDeviceFlow(context.Background(),
			&ProviderConfig{DeviceAuthorizationEndpoint: server.URL})

		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("Expected DecodeError, got %v", err)
		}
	})
}
