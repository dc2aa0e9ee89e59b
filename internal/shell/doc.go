// Package shell provides an interactive shell over a realmauth store.
//
// The shell lists the accesses of the current context, switches the active
// access, reloads the whoami document and prints store changes as they
// happen. Commands are registered in a Registry so that each can provide its
// own usage, aliases and tab completion.
package shell
