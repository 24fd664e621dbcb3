package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of timedctl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("timedctl version %s\n", rootCmd.Version)
		},
	}
}
