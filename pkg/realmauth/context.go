package realmauth

import "context"

type storeContextKey struct{}

// WithStore returns a copy of ctx that carries s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, s)
}

// FromContext returns the store carried by ctx, if any.
func FromContext(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(storeContextKey{}).(*Store)
	return s, ok && s != nil
}
