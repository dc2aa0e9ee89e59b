package cmd

import (
	"io"
	"os"

	"realmauth/internal/formatting"
	"realmauth/internal/whoami"
	"realmauth/pkg/logging"
	"realmauth/pkg/realmauth"

	"github.com/spf13/cobra"
)

const logSubsystem = "CLI"

// source builds the file source for the configured whoami document.
func (o *rootOptions) source() *whoami.FileSource {
	return whoami.NewFileSource(o.settings.WhoAmI, whoami.ValidateOptions{
		Strict: o.settings.StrictIDs,
		IDFunc: realmauth.DefaultAccessID,
	})
}

// load refreshes the command's store from the whoami document once and
// applies the preferred access. With required set, an access given through
// --access or REALMAUTH_ACCESS that is not in the context is an error. A
// saved selection that went stale is only logged and the default selection
// is kept.
func (o *rootOptions) load(cmd *cobra.Command, required bool) (*realmauth.Store, *whoami.FileSource, error) {
	store, err := storeFrom(cmd)
	if err != nil {
		return nil, nil, err
	}

	src := o.source()
	if _, err := whoami.Refresh(cmd.Context(), store, src); err != nil {
		return nil, nil, err
	}
	if !store.IsAuthenticated() {
		logging.Warn(logSubsystem, "No whoami document at %s", src.Path())
	}

	if err := o.applyPreferredAccess(store, required); err != nil {
		return nil, nil, err
	}
	return store, src, nil
}

func (o *rootOptions) applyPreferredAccess(store *realmauth.Store, required bool) error {
	id := o.settings.Access
	if id == "" {
		return nil
	}
	if _, ok := store.SetActiveAccess(id); !ok {
		err := &realmauth.AccessNotFoundError{ID: id}
		if required && o.accessExplicit {
			return err
		}
		logging.Warn(logSubsystem, "%v, keeping %q", err, store.ActiveAccessID())
	}
	return nil
}

// formatOptions returns the output options for writing to w.
func (o *rootOptions) formatOptions(w io.Writer) formatting.Options {
	return formatting.Options{
		Format:   o.settings.Output,
		Template: o.settings.Template,
		Color:    isTerminal(w),
	}
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
