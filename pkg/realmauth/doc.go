// Package realmauth provides an observable store for the authentication
// context of a multi-tenant client: the realm/tenant accesses the current
// principal holds, which of them is active, and whether authentication is
// in flight or complete.
//
// The store does no I/O. Whatever performs authentication (typically a
// "who am I" query) hands its result to SetContext; display code reads the
// state through selectors and registers listeners to be told about changes.
//
// # Usage
//
//	store := realmauth.NewStore(realmauth.Config{})
//	unsubscribe := store.Subscribe(func(state, prev realmauth.State) {
//	    render(state)
//	})
//	defer unsubscribe()
//
//	store.SetContext(func(prev *realm.AccessContext) *realm.AccessContext {
//	    return whoami
//	})
//	if _, ok := store.SetActiveAccess("r2:t2"); !ok {
//	    // no such access; state unchanged
//	}
//
// # Active access
//
// The active access is always derived from the context. Replacing the context
// keeps the previous selection when an access with the same identifier is
// still present and otherwise falls back to the first access. Identifiers come
// from an IDFunc (DefaultAccessID joins realm and tenant IDs with ":") and the
// fallback behaviour from a SelectorFunc; both can be replaced through Config.
//
// # Authentication flags
//
// IsAuthenticated is true exactly when a context is present. IsAuthenticating
// starts true, is cleared by SetContext, and is set explicitly through
// SetContextAuthenticating, SetIsAuthenticating and ResetAuthenticating.
//
// # Notifications
//
// Listeners run synchronously on the goroutine that performed the mutation,
// in registration order, after the store's lock has been released. A listener
// may therefore call back into the store. SetActiveAccess with the identifier
// of the access that is already active does not notify.
package realmauth
