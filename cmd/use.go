package cmd

import (
	"fmt"

	"realmauth/internal/config"
	"realmauth/internal/formatting"
	"realmauth/pkg/logging"
	"realmauth/pkg/realmauth"

	"github.com/spf13/cobra"
)

func newUseCmd(opts *rootOptions) *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:     "use <access-id>",
		Aliases: []string{"switch"},
		Short:   "Make an access the active one",
		Long: `Select the access with the given ID and remember it in config.yaml, so
that later commands start with it active.

The ID is "<realmId>:<tenantId>" as shown by 'realmauth list'. Exits with
code 2 when the ID is not in the whoami document.

Examples:
  realmauth use 5f3c...:9a1e...
  realmauth use 5f3c...:9a1e... --no-save`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeAccessIDs(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := opts.load(cmd, false)
			if err != nil {
				return err
			}

			id := args[0]
			access, ok := store.SetActiveAccess(id)
			if !ok {
				return &realmauth.AccessNotFoundError{ID: id}
			}

			if !noSave {
				if err := saveAccess(opts.resolvedConfigDir, id); err != nil {
					return err
				}
			}

			format := opts.formatOptions(cmd.OutOrStdout())
			if format.Format == formatting.FormatTable {
				fmt.Fprintf(cmd.OutOrStdout(), "Using %s (%s)\n", id, access.DisplayName())
				return nil
			}
			rows := formatting.Rows(store.State(), store.ID)
			for _, row := range rows {
				if row.Active {
					return formatting.Accesses(cmd.OutOrStdout(), []formatting.Row{row}, format)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not remember the selection in config.yaml")
	return cmd
}

// saveAccess stores id as the preferred access in config.yaml. Only the file
// layer is rewritten so environment and flag overrides are not persisted.
func saveAccess(configDir, id string) error {
	fileConfig, err := config.LoadConfig(configDir)
	if err != nil {
		return err
	}
	fileConfig.Access = id
	if err := config.Save(configDir, fileConfig); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	logging.Debug(logSubsystem, "Saved access %q to %s", id, configDir)
	return nil
}

// completeAccessIDs provides shell completion for access IDs.
func completeAccessIDs(opts *rootOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		doc, err := opts.source().Fetch(cmd.Context())
		if err != nil || doc == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ids := make([]string, 0, doc.Len())
		for _, access := range doc.Accesses {
			ids = append(ids, realmauth.DefaultAccessID(access))
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}
