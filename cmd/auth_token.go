package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a valid access token",
		Long: `Print a valid access token to stdout.

The token is refreshed or renewed first if necessary, so the output is
suitable for scripting, e.g.:

  curl -H "Authorization: Bearer $(timedctl auth token)" ...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, spin, err := newAuthClient()
			if err != nil {
				return err
			}
			defer spin.Stop()

			token, err := client.EnsureValidToken(cmd.Context())
			spin.Stop()
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Println(token)

			return nil
		},
	}
}
