package cmd

import (
	"realmauth/internal/formatting"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var noHeaders bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the accesses in the whoami document",
		Long: `List every realm/tenant access of the current principal.

The active access is marked with an asterisk (*).

Examples:
  realmauth list
  realmauth list -o yaml
  realmauth list --template '{{ .ID }}{{ if .Active }} (active){{ end }}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := opts.load(cmd, true)
			if err != nil {
				return err
			}
			format := opts.formatOptions(cmd.OutOrStdout())
			format.NoHeaders = noHeaders
			return formatting.Accesses(cmd.OutOrStdout(), formatting.Rows(store.State(), store.ID), format)
		},
	}

	cmd.Flags().BoolVar(&noHeaders, "no-headers", false, "Omit the table header")
	return cmd
}
