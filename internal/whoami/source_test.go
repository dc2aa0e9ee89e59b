package whoami

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmauth/pkg/realm"
	"realmauth/pkg/realmauth"
)

type stubSource struct {
	doc *realm.AccessContext
	err error

	// sawAuthenticating records the store's flag while Fetch runs.
	store             *realmauth.Store
	sawAuthenticating bool
}

func (s *stubSource) Fetch(ctx context.Context) (*realm.AccessContext, error) {
	if s.store != nil {
		s.sawAuthenticating = s.store.IsAuthenticating()
	}
	return s.doc, s.err
}

func TestFileSource_Fetch(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid document", func(t *testing.T) {
		src := NewFileSource(writeDocument(t, dir, yamlDocument), ValidateOptions{})
		doc, err := src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, doc.Len())
	})

	t.Run("missing document is signed out", func(t *testing.T) {
		src := NewFileSource(filepath.Join(dir, "absent.yaml"), ValidateOptions{})
		doc, err := src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("invalid document", func(t *testing.T) {
		src := NewFileSource(writeDocument(t, dir, yamlDocument), ValidateOptions{Strict: true})
		_, err := src.Fetch(context.Background())
		var docErr *DocumentError
		require.ErrorAs(t, err, &docErr)
		assert.Equal(t, src.Path(), docErr.Path)
	})

	t.Run("cancelled context", func(t *testing.T) {
		src := NewFileSource(writeDocument(t, dir, yamlDocument), ValidateOptions{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		// The fetch may win the race with cancellation; either outcome is fine
		// as long as a cancellation is reported as such.
		if _, err := src.Fetch(ctx); err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	})
}

func TestFileSource_ConcurrentFetchesDoNotShareResults(t *testing.T) {
	src := NewFileSource(writeDocument(t, t.TempDir(), yamlDocument), ValidateOptions{})

	var wg sync.WaitGroup
	results := make([]*realm.AccessContext, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := src.Fetch(context.Background())
			assert.NoError(t, err)
			results[i] = doc
		}(i)
	}
	wg.Wait()

	results[0].Accesses[0].Realm.RealmID = "changed"
	for _, doc := range results[1:] {
		require.NotNil(t, doc)
		assert.Equal(t, "r1", doc.Accesses[0].Realm.RealmID)
	}
}

func TestRefresh(t *testing.T) {
	doc := &realm.AccessContext{Accesses: []realm.RealmAccess{
		{Realm: realm.RealmState{RealmID: "r1"}, Tenant: realm.TenantState{TenantID: "t1"}},
	}}

	t.Run("success", func(t *testing.T) {
		store := realmauth.NewStore(realmauth.Config{})
		store.SetIsAuthenticating(false)
		src := &stubSource{doc: doc, store: store}

		got, err := Refresh(context.Background(), store, src)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Len())
		assert.True(t, src.sawAuthenticating)
		assert.False(t, store.IsAuthenticating())
		assert.True(t, store.IsAuthenticated())
		assert.Equal(t, "r1:t1", store.ActiveAccessID())
	})

	t.Run("signed out", func(t *testing.T) {
		store := realmauth.NewStore(realmauth.Config{})
		store.SetContext(func(*realm.AccessContext) *realm.AccessContext { return doc })

		got, err := Refresh(context.Background(), store, &stubSource{})
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.False(t, store.IsAuthenticated())
	})

	t.Run("failure keeps previous context", func(t *testing.T) {
		store := realmauth.NewStore(realmauth.Config{})
		store.SetContext(func(*realm.AccessContext) *realm.AccessContext { return doc })

		_, err := Refresh(context.Background(), store, &stubSource{err: errors.New("boom")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.False(t, store.IsAuthenticating())
		assert.True(t, store.IsAuthenticated())
		assert.Equal(t, "r1:t1", store.ActiveAccessID())
	})
}
