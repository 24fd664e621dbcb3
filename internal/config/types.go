package config

import "fmt"

// AppName is the application name, used for the config directory and as the
// keyring service name for stored credentials.
const AppName = "timedctl"

// Defaults applied when a config file is created on first run.
const (
	DefaultTimedURL        = "https://timed.example.com"
	DefaultSSODiscoveryURL = "https://sso.example.com/realms/example"
	DefaultSSOClientID     = "timed-client"
)

// Config is the timedctl configuration. The authentication engine consumes
// the SSO fields and the username; TimedURL is the API target the obtained
// token is eventually used against.
type Config struct {
	// Username is the principal name credentials are stored under.
	Username string `yaml:"username"`

	// TimedURL is the base URL of the Timed backend.
	TimedURL string `yaml:"timed_url"`

	// SSODiscoveryURL is the base URL the OpenID configuration document is
	// discovered from.
	SSODiscoveryURL string `yaml:"sso_discovery_url"`

	// SSOClientID is the OAuth client identifier for the device flow.
	SSOClientID string `yaml:"sso_client_id"`
}

// Default returns the configuration written on first run. The username is
// intentionally empty; validation forces the user to fill it in.
func Default() Config {
	return Config{
		TimedURL:        DefaultTimedURL,
		SSODiscoveryURL: DefaultSSODiscoveryURL,
		SSOClientID:     DefaultSSOClientID,
	}
}

// Validate checks that all required fields are present.
func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("missing required configuration: username")
	}
	if c.SSODiscoveryURL == "" {
		return fmt.Errorf("missing required configuration: sso_discovery_url")
	}
	if c.SSOClientID == "" {
		return fmt.Errorf("missing required configuration: sso_client_id")
	}
	return nil
}
