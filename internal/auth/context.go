// ABOUTME: Request identity propagation via context for the auth gates
// ABOUTME: Provides WithIdentity/FromContext and authority membership checks

package auth

import (
	"context"
)

// Identity holds the authenticated identity attached to a request by one of
// the auth gates. The first gate to establish an identity wins; gates never
// overwrite an existing one.
type Identity struct {
	Username    string
	Authorities []string
}

// HasAuthority returns true if the identity carries the given authority.
func (id *Identity) HasAuthority(authority string) bool {
	for _, a := range id.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// HasAny returns true if the identity carries at least one of the given
// authorities.
func (id *Identity) HasAny(authorities []string) bool {
	for _, a := range authorities {
		if id.HasAuthority(a) {
			return true
		}
	}
	return false
}

// HasAll returns true if the identity carries every one of the given
// authorities.
func (id *Identity) HasAll(authorities []string) bool {
	for _, a := range authorities {
		if !id.HasAuthority(a) {
			return false
		}
	}
	return true
}

// identityKey is the key type for storing Identity in context.Context.
type identityKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext retrieves the Identity from the context, returning nil if not
// present.
func FromContext(ctx context.Context) *Identity {
	val := ctx.Value(identityKey{})
	if val == nil {
		return nil
	}
	id, ok := val.(*Identity)
	if !ok {
		return nil
	}
	return id
}
