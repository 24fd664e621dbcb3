package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthLoginCmd() *cobra.Command {
	var force bool

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the SSO provider",
		Long: `Authenticate against the configured SSO provider.

If a valid token is already stored this is a no-op. Otherwise a stored
refresh token is used if available, falling back to a full device
authorization flow in the browser. Use --force to discard the stored
tokens and run the device flow unconditionally.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, spin, err := newAuthClient()
			if err != nil {
				return err
			}
			defer spin.Stop()

			ctx := cmd.Context()

			if force {
				_, err = client.ForceRenewToken(ctx)
			} else {
				_, err = client.EnsureValidToken(ctx)
			}
			spin.Stop()
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Printf("Successfully authenticated as %s.\n", cfg.Username)

			return nil
		},
	}

	loginCmd.Flags().BoolVar(&force, "force", false,
		"discard stored tokens and run a full device authorization flow")

	return loginCmd
}
