package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"realmauth/internal/formatting"
	"realmauth/internal/whoami"
	"realmauth/pkg/logging"
	"realmauth/pkg/realm"
	"realmauth/pkg/realmauth"
	pkgstrings "realmauth/pkg/strings"
)

const (
	logSubsystem = "Shell"

	// commandExecutionTimeout bounds a single command, mostly reload.
	commandExecutionTimeout = 30 * time.Second

	promptPrefix    = "realmauth"
	promptChevron   = ">"
	stateSignedOut  = "[signed out]"
	stateLoading    = "[loading]"
	historyFileName = ".realmauth_history"

	// maxPromptIDLength keeps UUID based access IDs from filling the line.
	maxPromptIDLength = 28
)

// Config configures a Shell.
type Config struct {
	// Store is the store the shell operates on. Required.
	Store *realmauth.Store
	// Source is used by the reload command. Optional.
	Source whoami.Source
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// Options controls how list and status render.
	Options formatting.Options
	// HistoryFile defaults to a file in the temp directory.
	HistoryFile string
}

// Shell is an interactive Read-Eval-Print Loop over a realmauth store.
type Shell struct {
	store       *realmauth.Store
	source      whoami.Source
	out         io.Writer
	options     formatting.Options
	historyFile string
	registry    *Registry

	mu sync.Mutex
	rl *readline.Instance
}

// New creates a shell with all commands registered.
func New(config Config) *Shell {
	s := &Shell{
		store:       config.Store,
		source:      config.Source,
		out:         config.Out,
		options:     config.Options,
		historyFile: config.HistoryFile,
		registry:    NewRegistry(),
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.historyFile == "" {
		s.historyFile = filepath.Join(os.TempDir(), historyFileName)
	}
	// Template output is a per-access format; the shell always renders tables
	// for it so that status keeps working.
	if s.options.Format == formatting.FormatTemplate {
		s.options.Format = formatting.FormatTable
	}

	s.registry.Register("list", &listCommand{shell: s})
	s.registry.Register("use", &useCommand{shell: s})
	s.registry.Register("status", &statusCommand{shell: s})
	s.registry.Register("reload", &reloadCommand{shell: s})
	s.registry.Register("reset", &resetCommand{shell: s})
	s.registry.Register("help", &helpCommand{shell: s})
	s.registry.Register("exit", exitCommand{})
	return s
}

// Execute parses and runs one line of input. It returns errExit for the
// exit command.
func (s *Shell) Execute(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	commandName := strings.ToLower(parts[0])
	command, exists := s.registry.Get(commandName)
	if !exists {
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}

	commandCtx, cancel := context.WithTimeout(ctx, commandExecutionTimeout)
	defer cancel()
	return command.Execute(commandCtx, parts[1:])
}

// buildPrompt renders the active access, or the store's sign-in state when
// there is none.
func (s *Shell) buildPrompt() string {
	return buildPrompt(s.store.State(), s.store.ID)
}

func buildPrompt(state realmauth.State, id realmauth.IDFunc) string {
	parts := []string{promptPrefix}
	switch {
	case state.ActiveAccess != nil:
		parts = append(parts, pkgstrings.TruncateMiddle(id(*state.ActiveAccess), maxPromptIDLength))
	case state.IsAuthenticating:
		parts = append(parts, stateLoading)
	case !state.IsAuthenticated:
		parts = append(parts, stateSignedOut)
	}
	parts = append(parts, promptChevron)
	return strings.Join(parts, " ") + " "
}

// createCompleter builds tab completion from the registry. Arguments of
// commands that offer completions are resolved on every key press so that
// they follow the current context.
func (s *Shell) createCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range s.registry.List() {
		cmd, _ := s.registry.Get(name)
		items = append(items, readline.PcItem(name, readline.PcItemDynamic(func(string) []string {
			return cmd.Completions("")
		})))
	}
	return readline.NewPrefixCompleter(items...)
}

// watchStore keeps the prompt in sync with the store while the shell runs.
func (s *Shell) watchStore() func() {
	unwatchActive := realmauth.Watch(s.store, realmauth.SelectActiveAccess, realmauth.SameAccess(s.store.ID),
		func(current, _ *realm.RealmAccess) {
			logging.Debug(logSubsystem, "Active access changed to %q", s.accessID(current))
			s.refreshPrompt()
		})
	unwatchAuth := realmauth.Watch(s.store, realmauth.SelectIsAuthenticating, nil,
		func(bool, bool) { s.refreshPrompt() })
	return func() {
		unwatchActive()
		unwatchAuth()
	}
}

func (s *Shell) accessID(access *realm.RealmAccess) string {
	if access == nil {
		return ""
	}
	return s.store.ID(*access)
}

func (s *Shell) refreshPrompt() {
	s.mu.Lock()
	rl := s.rl
	s.mu.Unlock()
	if rl == nil {
		return
	}
	rl.SetPrompt(s.buildPrompt())
	rl.Refresh()
}

// Run starts the shell and processes input until exit, EOF, or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            s.buildPrompt(),
		HistoryFile:       s.historyFile,
		AutoComplete:      s.createCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	s.mu.Lock()
	s.rl = rl
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.rl = nil
		s.mu.Unlock()
	}()

	unwatch := s.watchStore()
	defer unwatch()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rl.Close()
		case <-done:
		}
	}()

	fmt.Fprintln(s.out, "Type 'help' for available commands. Use TAB for completion.")
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := s.Execute(ctx, input); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}
