package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored tokens from the keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, _, err := newAuthClient()
			if err != nil {
				return err
			}

			if err := client.Logout(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}

			fmt.Printf("Removed stored tokens for %s.\n", cfg.Username)

			return nil
		},
	}
}
