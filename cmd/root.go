package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"timedctl/internal/auth"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates the OAuth flow failed or was denied.
	ExitCodeAuthFailed = 3
)

// configPath is the --config persistent flag value.
var configPath string

// rootCmd represents the base command for the timedctl application.
var rootCmd = &cobra.Command{
	Use:   "timedctl",
	Short: "Track time against a Timed backend",
	Long: `timedctl is a command-line client for the Timed time-tracking
backend. It authenticates against the configured SSO provider using the
OAuth2 Device Authorization Grant and keeps the obtained tokens in the
operating system keyring.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "timedctl version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes for scripting.
func getExitCode(err error) int {
	var authErr *auth.AuthFailedError
	if errors.As(err, &authErr) ||
		errors.Is(err, auth.ErrAccessDenied) ||
		errors.Is(err, auth.ErrSessionExpired) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default is $HOME/.config/timedctl/config.yaml)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAuthCmd())
}
