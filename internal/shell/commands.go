package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"realmauth/internal/formatting"
	"realmauth/internal/whoami"
	"realmauth/pkg/realmauth"
)

// errExit is returned by the exit command to end the loop.
var errExit = errors.New("exit")

type listCommand struct{ shell *Shell }

func (c *listCommand) Execute(_ context.Context, _ []string) error {
	state := c.shell.store.State()
	return formatting.Accesses(c.shell.out, formatting.Rows(state, c.shell.store.ID), c.shell.options)
}

func (c *listCommand) Usage() string { return "list" }
func (c *listCommand) Description() string { return "List the accesses of the current context" }
func (c *listCommand) Completions(string) []string { return nil }
func (c *listCommand) Aliases() []string { return []string{"ls"} }

type useCommand struct{ shell *Shell }

func (c *useCommand) Execute(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	access, ok := c.shell.store.SetActiveAccess(args[0])
	if !ok {
		return &realmauth.AccessNotFoundError{ID: args[0]}
	}
	fmt.Fprintf(c.shell.out, "Using %s (%s)\n", c.shell.store.ID(*access), access.DisplayName())
	return nil
}

func (c *useCommand) Usage() string { return "use <access-id>" }
func (c *useCommand) Description() string { return "Make an access the active one" }
func (c *useCommand) Aliases() []string { return []string{"switch"} }

// Completions returns the IDs of the accesses in the current context that
// start with input.
func (c *useCommand) Completions(input string) []string {
	ctx := c.shell.store.Context()
	if ctx == nil {
		return nil
	}
	var ids []string
	for _, access := range ctx.Accesses {
		id := c.shell.store.ID(access)
		if strings.HasPrefix(id, input) {
			ids = append(ids, id)
		}
	}
	return ids
}

type statusCommand struct{ shell *Shell }

func (c *statusCommand) Execute(_ context.Context, _ []string) error {
	view := formatting.NewStatusView(c.shell.store.State(), c.shell.store.ID)
	return formatting.Status(c.shell.out, view, c.shell.options)
}

func (c *statusCommand) Usage() string { return "status" }
func (c *statusCommand) Description() string { return "Show authentication status and the active access" }
func (c *statusCommand) Completions(string) []string { return nil }
func (c *statusCommand) Aliases() []string { return []string{"st"} }

type reloadCommand struct{ shell *Shell }

func (c *reloadCommand) Execute(ctx context.Context, _ []string) error {
	if c.shell.source == nil {
		return errors.New("no whoami source configured")
	}
	next, err := whoami.Refresh(ctx, c.shell.store, c.shell.source)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.shell.out, "Reloaded %d accesses\n", next.Len())
	return nil
}

func (c *reloadCommand) Usage() string { return "reload" }
func (c *reloadCommand) Description() string { return "Reload the whoami document" }
func (c *reloadCommand) Completions(string) []string { return nil }
func (c *reloadCommand) Aliases() []string { return []string{"refresh"} }

type resetCommand struct{ shell *Shell }

func (c *resetCommand) Execute(_ context.Context, _ []string) error {
	c.shell.store.ResetAuthenticating(false)
	fmt.Fprintln(c.shell.out, "Context cleared")
	return nil
}

func (c *resetCommand) Usage() string { return "reset" }
func (c *resetCommand) Description() string { return "Clear the context and the active access" }
func (c *resetCommand) Completions(string) []string { return nil }
func (c *resetCommand) Aliases() []string { return nil }

type helpCommand struct{ shell *Shell }

func (c *helpCommand) Execute(_ context.Context, _ []string) error {
	fmt.Fprintln(c.shell.out, "Available commands:")
	for _, name := range c.shell.registry.List() {
		cmd, _ := c.shell.registry.Get(name)
		fmt.Fprintf(c.shell.out, "  %-20s %s\n", cmd.Usage(), cmd.Description())
	}
	return nil
}

func (c *helpCommand) Usage() string { return "help" }
func (c *helpCommand) Description() string { return "Show available commands" }
func (c *helpCommand) Completions(string) []string { return nil }
func (c *helpCommand) Aliases() []string { return []string{"?"} }

type exitCommand struct{}

func (exitCommand) Execute(context.Context, []string) error { return errExit }
func (exitCommand) Usage() string { return "exit" }
func (exitCommand) Description() string { return "Leave the shell" }
func (exitCommand) Completions(string) []string { return nil }
func (exitCommand) Aliases() []string { return []string{"quit"} }
