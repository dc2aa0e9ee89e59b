package cmd

import (
	"realmauth/internal/formatting"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status and the active access",
		Long: `Show whether a whoami document is loaded, which access is active and
how many accesses the document grants.

Examples:
  realmauth status
  realmauth status -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := opts.load(cmd, false)
			if err != nil {
				return err
			}
			view := formatting.NewStatusView(store.State(), store.ID)
			return formatting.Status(cmd.OutOrStdout(), view, opts.formatOptions(cmd.OutOrStdout()))
		},
	}
}
