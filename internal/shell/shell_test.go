package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmauth/internal/formatting"
	"realmauth/pkg/realm"
	"realmauth/pkg/realmauth"
)

type sourceFunc func(ctx context.Context) (*realm.AccessContext, error)

func (f sourceFunc) Fetch(ctx context.Context) (*realm.AccessContext, error) { return f(ctx) }

func testAccess(realmID, tenantID string) realm.RealmAccess {
	return realm.RealmAccess{
		Realm:  realm.RealmState{RealmID: realmID, Status: realm.StatusActive},
		Tenant: realm.TenantState{RealmID: realmID, TenantID: tenantID, Status: realm.StatusActive},
	}
}

func testContext() *realm.AccessContext {
	return &realm.AccessContext{Accesses: []realm.RealmAccess{
		testAccess("r1", "t1"),
		testAccess("r2", "t2"),
	}}
}

func newTestShell(t *testing.T, src sourceFunc) (*Shell, *realmauth.Store, *bytes.Buffer) {
	t.Helper()
	store := realmauth.NewStore(realmauth.Config{})
	store.SetContext(func(*realm.AccessContext) *realm.AccessContext { return testContext() })

	var out bytes.Buffer
	config := Config{Store: store, Out: &out, HistoryFile: t.TempDir() + "/history"}
	if src != nil {
		config.Source = src
	}
	return New(config), store, &out
}

func TestRegistry(t *testing.T) {
	s, _, _ := newTestShell(t, nil)

	assert.Equal(t, []string{"exit", "help", "list", "reload", "reset", "status", "use"}, s.registry.List())

	for alias, want := range map[string]string{"ls": "list", "?": "help", "quit": "exit", "switch": "use"} {
		cmd, ok := s.registry.Get(alias)
		require.True(t, ok, alias)
		primary, _ := s.registry.Get(want)
		assert.Equal(t, primary, cmd, alias)
	}

	_, ok := s.registry.Get("nope")
	assert.False(t, ok)
}

func TestExecute_Use(t *testing.T) {
	s, store, out := newTestShell(t, nil)
	ctx := context.Background()

	require.Equal(t, "r1:t1", store.ActiveAccessID())
	require.NoError(t, s.Execute(ctx, "use r2:t2"))
	assert.Equal(t, "r2:t2", store.ActiveAccessID())
	assert.Contains(t, out.String(), "Using r2:t2")

	err := s.Execute(ctx, "use unknown")
	var notFound *realmauth.AccessNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "unknown", notFound.ID)
	assert.Equal(t, "r2:t2", store.ActiveAccessID(), "unknown IDs leave the selection alone")

	assert.Error(t, s.Execute(ctx, "use"))
}

func TestExecute_ListAndStatus(t *testing.T) {
	s, _, out := newTestShell(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Execute(ctx, "LIST"))
	assert.Contains(t, out.String(), "r1:t1")
	assert.Contains(t, out.String(), "r2:t2")

	out.Reset()
	require.NoError(t, s.Execute(ctx, "status"))
	assert.Contains(t, out.String(), "r1:t1")

	out.Reset()
	require.NoError(t, s.Execute(ctx, "help"))
	assert.Contains(t, out.String(), "use <access-id>")
}

func TestExecute_Reload(t *testing.T) {
	t.Run("applies the fetched context", func(t *testing.T) {
		next := &realm.AccessContext{Accesses: []realm.RealmAccess{testAccess("r3", "t3")}}
		s, store, out := newTestShell(t, func(context.Context) (*realm.AccessContext, error) {
			return next, nil
		})

		require.NoError(t, s.Execute(context.Background(), "reload"))
		assert.Equal(t, "r3:t3", store.ActiveAccessID())
		assert.False(t, store.IsAuthenticating())
		assert.Contains(t, out.String(), "Reloaded 1 accesses")
	})

	t.Run("keeps the context on error", func(t *testing.T) {
		s, store, _ := newTestShell(t, func(context.Context) (*realm.AccessContext, error) {
			return nil, errors.New("disk on fire")
		})

		err := s.Execute(context.Background(), "refresh")
		assert.ErrorContains(t, err, "disk on fire")
		assert.Equal(t, 2, store.Context().Len())
	})

	t.Run("without a source", func(t *testing.T) {
		s, _, _ := newTestShell(t, nil)
		assert.Error(t, s.Execute(context.Background(), "reload"))
	})
}

func TestExecute_Reset(t *testing.T) {
	s, store, _ := newTestShell(t, nil)

	require.NoError(t, s.Execute(context.Background(), "reset"))
	state := store.State()
	assert.Nil(t, state.Context)
	assert.Nil(t, state.ActiveAccess)
	assert.False(t, state.IsAuthenticated)
	assert.False(t, state.IsAuthenticating)
}

func TestExecute_ExitAndUnknown(t *testing.T) {
	s, _, _ := newTestShell(t, nil)

	assert.ErrorIs(t, s.Execute(context.Background(), "quit"), errExit)
	assert.ErrorContains(t, s.Execute(context.Background(), "frobnicate"), "unknown command")
	assert.NoError(t, s.Execute(context.Background(), "   "))
}

func TestUseCompletions(t *testing.T) {
	s, _, _ := newTestShell(t, nil)
	cmd, _ := s.registry.Get("use")

	assert.Equal(t, []string{"r1:t1", "r2:t2"}, cmd.Completions(""))
	assert.Equal(t, []string{"r2:t2"}, cmd.Completions("r2"))

	s.store.Reset()
	assert.Empty(t, cmd.Completions(""))
}

func TestBuildPrompt(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		name  string
		state realmauth.State
		want  string
	}{
		{"active", realmauth.State{Context: ctx, ActiveAccess: &ctx.Accesses[1], IsAuthenticated: true}, "realmauth r2:t2 > "},
		{"loading", realmauth.State{IsAuthenticating: true}, "realmauth [loading] > "},
		{"signed out", realmauth.State{}, "realmauth [signed out] > "},
		{"long id", realmauth.State{ActiveAccess: &realm.RealmAccess{
			Realm:  realm.RealmState{RealmID: "5f3c1a2b-0000-4000-8000-000000000001"},
			Tenant: realm.TenantState{TenantID: "9a1e2b3c-0000-4000-8000-000000000002"},
		}}, "realmauth 5f3c1a2b-0000-4...0000000002 > "},
		{"empty context", realmauth.State{Context: &realm.AccessContext{}, IsAuthenticated: true}, "realmauth > "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildPrompt(tt.state, realmauth.DefaultAccessID))
		})
	}
}

func TestNew_TemplateFallsBackToTable(t *testing.T) {
	store := realmauth.NewStore(realmauth.Config{})
	s := New(Config{Store: store, Options: formatting.Options{Format: formatting.FormatTemplate}})
	assert.Equal(t, formatting.FormatTable, s.options.Format)
}
