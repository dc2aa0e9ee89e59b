package realmauth

import (
	"reflect"

	"realmauth/pkg/realm"
)

// SelectActiveAccess projects the active access out of a state.
func SelectActiveAccess(state State) *realm.RealmAccess {
	return state.ActiveAccess
}

// SelectContext projects the context out of a state.
func SelectContext(state State) *realm.AccessContext {
	return state.Context
}

// SelectIsAuthenticating projects the in-flight flag out of a state.
func SelectIsAuthenticating(state State) bool {
	return state.IsAuthenticating
}

// SelectIsAuthenticated projects the authenticated flag out of a state.
func SelectIsAuthenticated(state State) bool {
	return state.IsAuthenticated
}

// Watch subscribes to the value selector projects out of the store's state.
// onChange is called with the new and previous projections whenever they
// differ according to equal. A nil equal compares with reflect.DeepEqual.
func Watch[T any](s *Store, selector func(State) T, equal func(a, b T) bool, onChange func(current, previous T)) (unsubscribe func()) {
	if equal == nil {
		equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	return s.Subscribe(func(state, prev State) {
		current, previous := selector(state), selector(prev)
		if equal(current, previous) {
			return
		}
		onChange(current, previous)
	})
}

// SameAccess returns an equality function that treats two accesses as equal
// when they have the same identifier under id. Two nil accesses are equal.
func SameAccess(id IDFunc) func(a, b *realm.RealmAccess) bool {
	if id == nil {
		id = DefaultAccessID
	}
	return func(a, b *realm.RealmAccess) bool {
		if a == nil || b == nil {
			return a == b
		}
		return id(*a) == id(*b)
	}
}

// Bindings bundles the store's readers and mutators as plain functions, for
// consumers that should only see the part of the store they use.
type Bindings struct {
	ActiveAccess     func() *realm.RealmAccess
	Context          func() *realm.AccessContext
	IsAuthenticating func() bool
	IsAuthenticated  func() bool

	SetActiveAccess          func(accessID string) (*realm.RealmAccess, bool)
	SetContext               func(update ContextUpdater) *realm.AccessContext
	SetContextAuthenticating func(update ContextUpdater, isAuthenticating bool) *realm.AccessContext
	SetIsAuthenticating      func(isAuthenticating bool)
	Reset                    func()
	ResetAuthenticating      func(isAuthenticating bool)
}

// Bindings returns the store's functions bound to s.
func (s *Store) Bindings() Bindings {
	return Bindings{
		ActiveAccess:             s.ActiveAccess,
		Context:                  s.Context,
		IsAuthenticating:         s.IsAuthenticating,
		IsAuthenticated:          s.IsAuthenticated,
		SetActiveAccess:          s.SetActiveAccess,
		SetContext:               s.SetContext,
		SetContextAuthenticating: s.SetContextAuthenticating,
		SetIsAuthenticating:      s.SetIsAuthenticating,
		Reset:                    s.Reset,
		ResetAuthenticating:      s.ResetAuthenticating,
	}
}
