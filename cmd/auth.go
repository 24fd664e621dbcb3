package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"timedctl/internal/auth"
	"timedctl/internal/config"
	"timedctl/internal/credentials"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication against the SSO provider",
		Long: `Manage authentication against the configured SSO provider.

Tokens are obtained via the OAuth2 Device Authorization Grant and stored
in the operating system keyring under the configured username.`,
	}

	authCmd.AddCommand(newAuthLoginCmd())
	authCmd.AddCommand(newAuthLogoutCmd())
	authCmd.AddCommand(newAuthStatusCmd())
	authCmd.AddCommand(newAuthTokenCmd())

	return authCmd
}

// newAuthClient loads the configuration and builds an auth client backed by
// the OS keyring. The returned spinner is wired into the verification
// handler and spins while the client waits for the user to authorize.
func newAuthClient() (*auth.Client, *config.Config, *spinner.Spinner, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	store := credentials.New(config.AppName, cfg.Username)

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	spin.Suffix = " Waiting for authorization..."

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	client := auth.NewClient(cfg.SSODiscoveryURL, cfg.SSOClientID, store,
		auth.WithLogger(logger),
		auth.WithVerificationHandler(func(session *auth.DeviceSession) {
			presentVerification(session)
			spin.Start()
		}),
	)

	return client, &cfg, spin, nil
}

// presentVerification prints the verification instructions and tries to
// open the verification URI in the user's browser.
func presentVerification(session *auth.DeviceSession) {
	uri := session.VerificationURIComplete
	if uri == "" {
		uri = session.VerificationURI
	}

	fmt.Println()
	fmt.Println("To authenticate, visit the following URL in your browser:")
	fmt.Println()
	fmt.Printf("  %s\n", uri)
	fmt.Println()
	fmt.Printf("and enter the code: %s\n", session.UserCode)
	fmt.Println()

	if err := auth.OpenBrowser(uri); err != nil {
		fmt.Println("Could not open your browser automatically, please use the URL above.")
	}
}
