package realmauth

import (
	"strings"

	"realmauth/pkg/realm"
)

// accessIDSeparator joins the realm and tenant parts of a default access ID.
const accessIDSeparator = ":"

// IDFunc maps an access to the stable identifier used for every lookup.
type IDFunc func(access realm.RealmAccess) string

// SelectorFunc picks the active access after the context has been replaced.
// It receives the new context, the previously active access (nil if none)
// and the store's IDFunc, and returns an element of next or nil.
type SelectorFunc func(next *realm.AccessContext, prev *realm.RealmAccess, id IDFunc) *realm.RealmAccess

// ContextUpdater computes a new context from the previous one. Returning nil
// clears the context, which is the signed-out state.
type ContextUpdater func(prev *realm.AccessContext) *realm.AccessContext

// Listener is called after every state change with the new and the previous state.
type Listener func(state, prev State)

// DefaultAccessID joins the non-empty realm and tenant IDs with ":".
func DefaultAccessID(access realm.RealmAccess) string {
	parts := make([]string, 0, 2)
	if access.Realm.RealmID != "" {
		parts = append(parts, access.Realm.RealmID)
	}
	if access.Tenant.TenantID != "" {
		parts = append(parts, access.Tenant.TenantID)
	}
	return strings.Join(parts, accessIDSeparator)
}

// DefaultActiveAccessSelector keeps the previous selection when next still
// contains an access with the same identifier. Otherwise it falls back to the
// first access of next, or nil when next is nil or empty.
func DefaultActiveAccessSelector(next *realm.AccessContext, prev *realm.RealmAccess, id IDFunc) *realm.RealmAccess {
	if next == nil {
		return nil
	}
	if id == nil {
		id = DefaultAccessID
	}

	if prev != nil {
		if found := findAccess(next, id(*prev), id); found != nil {
			return found
		}
	}

	if len(next.Accesses) == 0 {
		return nil
	}
	return &next.Accesses[0]
}

// findAccess returns a pointer into ctx for the first access whose identifier
// equals accessID, or nil if there is none.
func findAccess(ctx *realm.AccessContext, accessID string, id IDFunc) *realm.RealmAccess {
	if ctx == nil {
		return nil
	}
	for i := range ctx.Accesses {
		if id(ctx.Accesses[i]) == accessID {
			return &ctx.Accesses[i]
		}
	}
	return nil
}

// State is a snapshot of the store. Values handed out by the store are
// copies; changing them does not change the store.
type State struct {
	// Context is the full set of accesses, or nil when signed out.
	Context *realm.AccessContext
	// ActiveAccess is the selected access, or nil when there is none.
	ActiveAccess *realm.RealmAccess
	// IsAuthenticating is true while authentication is in flight.
	IsAuthenticating bool
	// IsAuthenticated is true when a context is present.
	IsAuthenticated bool
}

// clone returns a deep enough copy of s that the caller may not affect the
// store through it.
func (s State) clone() State {
	out := s
	out.Context = s.Context.Clone()
	if s.ActiveAccess != nil {
		active := *s.ActiveAccess
		out.ActiveAccess = &active
	}
	return out
}

// InitialState seeds a new store. Unset fields take the defaults: no
// context, no active access, IsAuthenticating true.
type InitialState struct {
	Context *realm.AccessContext
	// ActiveAccess is only a hint; the store derives the real active access
	// from Context through its SelectorFunc.
	ActiveAccess     *realm.RealmAccess
	IsAuthenticating *bool
}

// Config configures a Store. The zero value is usable.
type Config struct {
	InitialState *InitialState
	// IDFunc defaults to DefaultAccessID.
	IDFunc IDFunc
	// Selector defaults to DefaultActiveAccessSelector.
	Selector SelectorFunc
}
