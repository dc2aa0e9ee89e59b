package cmd

import (
	"context"
	"path/filepath"

	"realmauth/internal/shell"
	"realmauth/internal/whoami"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newShellCmd(opts *rootOptions) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell over the access context",
		Long: `Start an interactive shell that keeps one store for the whole session.

Commands: list, use <access-id>, status, reload, reset, help, exit.
Access IDs complete with TAB. With --follow the whoami document is watched
and the prompt follows changes made to it outside the shell.

Examples:
  realmauth shell
  realmauth shell --follow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, src, err := opts.load(cmd, false)
			if err != nil {
				return err
			}

			sh := shell.New(shell.Config{
				Store:       store,
				Source:      src,
				Out:         cmd.OutOrStdout(),
				Options:     opts.formatOptions(cmd.OutOrStdout()),
				HistoryFile: filepath.Join(opts.resolvedConfigDir, "history"),
			})

			if !follow {
				return sh.Run(cmd.Context())
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return whoami.Follow(gctx, store, src, whoami.WatcherConfig{})
			})
			g.Go(func() error {
				defer cancel()
				return sh.Run(gctx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&follow, "follow", false, "Reload the whoami document when it changes")
	return cmd
}
