// Package logging provides subsystem-tagged structured logging for realmauth,
// built on the standard slog package.
//
// Every entry carries a subsystem attribute so output from the store, the
// whoami source and the CLI can be told apart:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("WhoAmI", "Loaded %d accesses from %s", n, path)
//	logging.Debug("RealmAuth", "Active access set to %q", id)
//	logging.Error("Watcher", err, "Failed to refresh context")
//
// Until one of the Init functions has been called all log calls are no-ops.
// Library users of pkg/realmauth therefore get no output unless they opt in.
//
// InitForCLIWithFormat selects a JSON handler instead of text, which is
// what the CLI uses for --log-format=json.
package logging
