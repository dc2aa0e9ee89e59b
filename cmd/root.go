package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"realmauth/internal/config"
	"realmauth/internal/formatting"
	"realmauth/internal/whoami"
	"realmauth/pkg/logging"
	"realmauth/pkg/realmauth"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAccessNotFound indicates the requested access is not in the context.
	ExitCodeAccessNotFound = 2
	// ExitCodeInvalidDocument indicates the whoami document failed to parse or validate.
	ExitCodeInvalidDocument = 3
)

// rootOptions holds the persistent flags and the settings resolved from them.
type rootOptions struct {
	configDir string
	whoami    string
	access    string
	logLevel  string
	logFormat string
	output    string
	template  string
	strict    bool

	// settings is config.yaml, then REALMAUTH_* variables, then flags.
	settings config.Config
	// resolvedConfigDir is where config.yaml was looked up.
	resolvedConfigDir string
	// accessExplicit is set when the access came from --access or
	// REALMAUTH_ACCESS rather than the selection saved in config.yaml.
	accessExplicit bool
}

// rootCmd represents the base command for the realmauth application.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "realmauth",
		Short: "Inspect and select realm/tenant accesses",
		Long: `realmauth reads the whoami document describing every realm and tenant
the current principal may access, and manages which access is active.

The document is YAML or JSON and defaults to ~/.config/realmauth/whoami.yaml.

Precedence (highest to lowest):
  1. Command-line flags
  2. REALMAUTH_WHOAMI, REALMAUTH_ACCESS, REALMAUTH_LOG_LEVEL
  3. ~/.config/realmauth/config.yaml`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config", "", "Config directory (default is $HOME/.config/realmauth)")
	flags.StringVar(&opts.whoami, "whoami", "", "Path of the whoami document")
	flags.StringVar(&opts.access, "access", "", "Access ID to make active after loading")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", string(logging.FormatText), "Log format: text or json")
	flags.StringVarP(&opts.output, "output", "o", "", "Output format: table, json, yaml, template")
	flags.StringVar(&opts.template, "template", "", "Go template for -o template, executed once per access")
	flags.BoolVar(&opts.strict, "strict", false, "Require realm and tenant IDs to be UUIDs")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newUseCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newShellCmd(opts))
	cmd.AddCommand(newSampleCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// resolve layers config.yaml, the environment and changed flags into
// o.settings, initializes logging, and attaches a fresh store to the
// command context.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	dir := o.configDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultConfigDir(); err != nil {
			return err
		}
	}

	settings, err := config.LoadConfig(dir)
	if err != nil {
		return err
	}
	settings = config.ApplyEnv(settings, nil)
	envAccess, _ := os.LookupEnv(config.EnvAccess)
	o.accessExplicit = envAccess != ""

	flags := cmd.Flags()
	if flags.Changed("whoami") {
		settings.WhoAmI = o.whoami
	}
	if flags.Changed("access") {
		settings.Access = o.access
		o.accessExplicit = true
	}
	if flags.Changed("log-level") {
		settings.LogLevel = o.logLevel
	}
	if flags.Changed("strict") {
		settings.StrictIDs = o.strict
	}
	if flags.Changed("template") {
		settings.Template = o.template
		settings.Output = formatting.FormatTemplate
	}
	if flags.Changed("output") {
		format, err := formatting.ParseOutputFormat(o.output)
		if err != nil {
			return err
		}
		settings.Output = format
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	logging.InitForCLIWithFormat(level, logging.Format(o.logFormat), cmd.ErrOrStderr())

	o.settings = settings
	o.resolvedConfigDir = dir

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(realmauth.WithStore(ctx, realmauth.NewStore(realmauth.Config{})))
	return nil
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "realmauth version %s\n" .Version}}`)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var notFound *realmauth.AccessNotFoundError
	if errors.As(err, &notFound) {
		return ExitCodeAccessNotFound
	}

	var docErr *whoami.DocumentError
	if errors.As(err, &docErr) {
		return ExitCodeInvalidDocument
	}

	return ExitCodeError
}

// storeFrom returns the store attached by resolve.
func storeFrom(cmd *cobra.Command) (*realmauth.Store, error) {
	store, ok := realmauth.FromContext(cmd.Context())
	if !ok {
		return nil, fmt.Errorf("no store attached to command %q", cmd.Name())
	}
	return store, nil
}
