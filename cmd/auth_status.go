package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"timedctl/internal/credentials"
)

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, _, err := newAuthClient()
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.SetStyle(table.StyleRounded)
			tw.Style().Color.Header = text.Colors{text.FgHiCyan}
			tw.AppendHeader(table.Row{"Field", "Value"})

			tw.AppendRow(table.Row{"Username", cfg.Username})
			tw.AppendRow(table.Row{"SSO provider", cfg.SSODiscoveryURL})

			token, err := client.StoredToken()
			switch {
			case errors.Is(err, credentials.ErrNotFound):
				tw.AppendRow(table.Row{"Access token", "not stored"})
			case err != nil:
				tw.AppendRow(table.Row{"Access token", "unreadable: " + err.Error()})
			default:
				tw.AppendRow(table.Row{"Access token", "stored"})
				if expiry, err := client.TokenExpiry(token); err == nil {
					tw.AppendRow(table.Row{"Token expiry", expiry.Local().Format(time.RFC1123)})
				}
				if client.IsTokenExpired(token) {
					tw.AppendRow(table.Row{"Token valid", "no (expired or expiring soon)"})
				} else {
					tw.AppendRow(table.Row{"Token valid", "yes"})
				}
			}

			if client.HasRefreshToken() {
				tw.AppendRow(table.Row{"Refresh token", "stored"})
			} else {
				tw.AppendRow(table.Row{"Refresh token", "not stored"})
			}

			tw.Render()

			return nil
		},
	}
}
