package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"realmauth/internal/formatting"
	"realmauth/internal/whoami"
	"realmauth/pkg/realmauth"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		forcePolling bool
		debounce     time.Duration
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the whoami document and print every change",
		Long: `Keep a store in sync with the whoami document and print the status each
time it changes: a document appears or disappears, accesses are added or
removed, or the active access moves.

The document's directory is watched with filesystem notifications; --poll
checks the modification time on an interval instead.

Examples:
  realmauth watch
  realmauth watch -o json
  realmauth watch --poll --poll-interval 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, src, err := opts.load(cmd, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			format := opts.formatOptions(out)

			var spin *watchSpinner
			if isTerminal(cmd.ErrOrStderr()) {
				spin = newWatchSpinner(cmd.ErrOrStderr(), " watching "+src.Path())
			}

			printStatus := func(state realmauth.State) {
				spin.pause(func() {
					_ = writeWatchStatus(out, formatting.NewStatusView(state, store.ID), format)
				})
			}

			printStatus(store.State())
			unsubscribe := store.Subscribe(func(state, prev realmauth.State) {
				if formatting.NewStatusView(state, store.ID) == formatting.NewStatusView(prev, store.ID) {
					return
				}
				printStatus(state)
			})
			defer unsubscribe()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return whoami.Follow(gctx, store, src, whoami.WatcherConfig{
					Debounce:     debounce,
					PollInterval: pollInterval,
					ForcePolling: forcePolling,
				})
			})
			if spin != nil {
				g.Go(func() error {
					spin.start()
					<-gctx.Done()
					spin.shutdown()
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&forcePolling, "poll", false, "Poll the document instead of using filesystem notifications")
	cmd.Flags().DurationVar(&debounce, "debounce", whoami.DefaultDebounceInterval, "Wait this long after the last change before reloading")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", whoami.DefaultPollInterval, "Interval between checks with --poll")
	return cmd
}

// watchSpinner is a spinner that store listeners can pause while they print.
// Once shut down it stays stopped, even for a listener that was already
// printing. A nil *watchSpinner does nothing except run paused functions.
type watchSpinner struct {
	mu      sync.Mutex
	spin    *spinner.Spinner
	stopped bool
}

func newWatchSpinner(w io.Writer, suffix string) *watchSpinner {
	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	spin.Suffix = suffix
	return &watchSpinner{spin: spin}
}

func (s *watchSpinner) start() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.spin.Start()
	}
}

// pause stops the spinner, runs fn and restarts the spinner unless it was
// shut down in the meantime.
func (s *watchSpinner) pause(fn func()) {
	if s == nil {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spin.Stop()
	fn()
	if !s.stopped {
		s.spin.Start()
	}
}

func (s *watchSpinner) shutdown() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.spin.Stop()
}

// writeWatchStatus prints one line per change for tables and a full status
// document for json and yaml.
func writeWatchStatus(w io.Writer, view formatting.StatusView, format formatting.Options) error {
	switch format.Format {
	case formatting.FormatJSON, formatting.FormatYAML:
		return formatting.Status(w, view, format)
	}

	active := view.ActiveAccess
	if active == "" {
		active = "none"
	}
	_, err := fmt.Fprintf(w, "%s authenticated=%t authenticating=%t accesses=%d active=%s\n",
		time.Now().Format(time.TimeOnly), view.IsAuthenticated, view.IsAuthenticating, view.Accesses, active)
	return err
}
