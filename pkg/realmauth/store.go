package realmauth

import (
	"sync"

	"realmauth/pkg/logging"
	"realmauth/pkg/realm"
)

const logSubsystem = "RealmAuth"

type listenerEntry struct {
	id uint64
	fn Listener
}

// Store holds the authentication context and publishes every change to its
// listeners. Create one with NewStore and pass it to the code that needs it.
type Store struct {
	mu    sync.RWMutex
	state State

	id       IDFunc
	selector SelectorFunc

	listenersMu    sync.Mutex
	listeners      []listenerEntry
	nextListenerID uint64
}

// NewStore creates a store from cfg, filling in defaults for unset fields.
func NewStore(cfg Config) *Store {
	s := &Store{
		id:       cfg.IDFunc,
		selector: cfg.Selector,
	}
	if s.id == nil {
		s.id = DefaultAccessID
	}
	if s.selector == nil {
		s.selector = DefaultActiveAccessSelector
	}

	s.state = initialState(true)
	if init := cfg.InitialState; init != nil {
		if init.IsAuthenticating != nil {
			s.state.IsAuthenticating = *init.IsAuthenticating
		}
		if init.Context != nil {
			s.state.Context = init.Context.Clone()
			s.state.IsAuthenticated = true
			s.state.ActiveAccess = s.selectActive(s.state.Context, init.ActiveAccess)
		}
	}

	return s
}

func initialState(isAuthenticating bool) State {
	return State{IsAuthenticating: isAuthenticating}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// ID returns the identifier of access under the store's IDFunc.
func (s *Store) ID(access realm.RealmAccess) string {
	return s.id(access)
}

// ActiveAccessID returns the identifier of the active access, or "" if none.
func (s *Store) ActiveAccessID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.ActiveAccess == nil {
		return ""
	}
	return s.id(*s.state.ActiveAccess)
}

// ActiveAccess returns a copy of the active access, or nil.
func (s *Store) ActiveAccess() *realm.RealmAccess {
	return SelectActiveAccess(s.State())
}

// Context returns a copy of the current context, or nil.
func (s *Store) Context() *realm.AccessContext {
	return SelectContext(s.State())
}

// IsAuthenticating reports whether authentication is in flight.
func (s *Store) IsAuthenticating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticating
}

// IsAuthenticated reports whether a context is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// SetContext replaces the context with the result of update and clears
// IsAuthenticating. See SetContextAuthenticating.
func (s *Store) SetContext(update ContextUpdater) *realm.AccessContext {
	return s.SetContextAuthenticating(update, false)
}

// SetContextAuthenticating replaces the context with the result of update,
// which receives a copy of the previous context. IsAuthenticated becomes
// true when the result is non-nil, IsAuthenticating is set to the given
// value, and the active access is recomputed by the store's SelectorFunc.
// A nil result clears the active access. The result is returned as given.
//
// update runs without the store's lock held and may read the store.
func (s *Store) SetContextAuthenticating(update ContextUpdater, isAuthenticating bool) *realm.AccessContext {
	s.mu.RLock()
	prevContext := s.state.Context.Clone()
	s.mu.RUnlock()

	result := update(prevContext)

	s.mu.Lock()
	prev := s.state.clone()
	next := State{
		Context:          result.Clone(),
		IsAuthenticating: isAuthenticating,
		IsAuthenticated:  result != nil,
	}
	if next.Context != nil {
		next.ActiveAccess = s.selectActive(next.Context, s.state.ActiveAccess)
	}
	s.state = next
	current := s.state.clone()
	s.mu.Unlock()

	logging.Debug(logSubsystem, "Context replaced: accesses=%d active=%q authenticated=%t authenticating=%t",
		current.Context.Len(), s.accessID(current.ActiveAccess), current.IsAuthenticated, current.IsAuthenticating)

	s.publish(current, prev)
	return result
}

// SetActiveAccess makes the access with the given identifier active and
// returns it. If it is already active it is returned without notifying
// listeners. If the context holds no such access the state is left
// untouched and ok is false.
func (s *Store) SetActiveAccess(accessID string) (access *realm.RealmAccess, ok bool) {
	s.mu.Lock()
	if active := s.state.ActiveAccess; active != nil && s.id(*active) == accessID {
		out := *active
		s.mu.Unlock()
		return &out, true
	}

	found := findAccess(s.state.Context, accessID, s.id)
	if found == nil {
		s.mu.Unlock()
		logging.Debug(logSubsystem, "No access with id %q in current context", accessID)
		return nil, false
	}

	prev := s.state.clone()
	selected := *found
	s.state.ActiveAccess = &selected
	current := s.state.clone()
	s.mu.Unlock()

	logging.Debug(logSubsystem, "Active access set to %q", accessID)

	s.publish(current, prev)
	out := selected
	return &out, true
}

// SetIsAuthenticating sets the in-flight flag without touching the context.
// Listeners are only notified when the value changes.
func (s *Store) SetIsAuthenticating(isAuthenticating bool) {
	s.mu.Lock()
	if s.state.IsAuthenticating == isAuthenticating {
		s.mu.Unlock()
		return
	}
	prev := s.state.clone()
	s.state.IsAuthenticating = isAuthenticating
	current := s.state.clone()
	s.mu.Unlock()

	s.publish(current, prev)
}

// Reset clears the context and active access and marks the store as about
// to re-authenticate.
func (s *Store) Reset() {
	s.ResetAuthenticating(true)
}

// ResetAuthenticating clears the context and active access, sets
// IsAuthenticated to false and IsAuthenticating to the given value.
func (s *Store) ResetAuthenticating(isAuthenticating bool) {
	s.mu.Lock()
	prev := s.state.clone()
	s.state = initialState(isAuthenticating)
	current := s.state.clone()
	s.mu.Unlock()

	logging.Debug(logSubsystem, "Store reset: authenticating=%t", isAuthenticating)

	s.publish(current, prev)
}

// Subscribe registers l to be called after every state change and returns a
// function that removes it again. The returned function is safe to call more
// than once.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})

	return func() { s.removeListener(id) }
}

func (s *Store) removeListener(id uint64) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	for i := range s.listeners {
		if s.listeners[i].id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// publish calls every listener registered at the time of the call.
func (s *Store) publish(current, prev State) {
	s.listenersMu.Lock()
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l.fn(current.clone(), prev.clone())
	}
}

// selectActive runs the selector and returns a pointer into next, or nil.
// A selector result that is not part of next is looked up by identifier so
// the active access is always an element of the context.
func (s *Store) selectActive(next *realm.AccessContext, prev *realm.RealmAccess) *realm.RealmAccess {
	var hint *realm.RealmAccess
	if prev != nil {
		p := *prev
		hint = &p
	}

	picked := s.selector(next.Clone(), hint, s.id)
	if picked == nil {
		return nil
	}
	found := findAccess(next, s.id(*picked), s.id)
	if found == nil {
		logging.Warn(logSubsystem, "Selector returned access %q that is not in the context, ignoring it", s.id(*picked))
		return nil
	}
	return found
}

func (s *Store) accessID(access *realm.RealmAccess) string {
	if access == nil {
		return ""
	}
	return s.id(*access)
}
