package whoami

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/singleflight"

	"realmauth/pkg/logging"
	"realmauth/pkg/realm"
	"realmauth/pkg/realmauth"
)

const logSubsystem = "WhoAmI"

// Source produces the current principal's access context. A nil context
// with a nil error means the principal is signed out.
type Source interface {
	Fetch(ctx context.Context) (*realm.AccessContext, error)
}

// FileSource reads the access context from a whoami document on disk.
type FileSource struct {
	path string
	opts ValidateOptions

	// fetchGroup collapses concurrent reads of the same file into one.
	fetchGroup singleflight.Group
}

// NewFileSource creates a source for the document at path. Documents are
// validated with opts before they are returned.
func NewFileSource(path string, opts ValidateOptions) *FileSource {
	return &FileSource{path: path, opts: opts}
}

// Path returns the document path.
func (s *FileSource) Path() string {
	return s.path
}

// Fetch loads and validates the document. A missing file yields a nil
// context and no error.
func (s *FileSource) Fetch(ctx context.Context) (*realm.AccessContext, error) {
	resultCh := s.fetchGroup.DoChan(s.path, func() (interface{}, error) {
		return s.load()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		doc, _ := res.Val.(*realm.AccessContext)
		// Callers sharing a fetch must not share the slice.
		return doc.Clone(), nil
	}
}

func (s *FileSource) load() (*realm.AccessContext, error) {
	doc, err := Load(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug(logSubsystem, "No whoami document at %s, treating principal as signed out", s.path)
			return nil, nil
		}
		return nil, err
	}

	if err := Validate(doc, s.opts); err != nil {
		var docErr *DocumentError
		if errors.As(err, &docErr) {
			docErr.Path = s.path
		}
		return nil, err
	}

	logging.Debug(logSubsystem, "Loaded %d accesses from %s", doc.Len(), s.path)
	return doc, nil
}

// Refresh fetches a context from src and hands it to store. The store is
// marked as authenticating while the fetch runs. On error the store keeps
// its previous context, IsAuthenticating is cleared and the error returned.
func Refresh(ctx context.Context, store *realmauth.Store, src Source) (*realm.AccessContext, error) {
	store.SetIsAuthenticating(true)

	doc, err := src.Fetch(ctx)
	if err != nil {
		store.SetIsAuthenticating(false)
		return nil, fmt.Errorf("failed to fetch access context: %w", err)
	}

	return store.SetContext(func(*realm.AccessContext) *realm.AccessContext {
		return doc
	}), nil
}
