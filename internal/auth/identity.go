package auth

import (
	"context"

	"github.com/sakif/mentorchat/internal/apperror"
)

// Identity is the signed-in user as the identity provider describes them.
//
// UID is the provider's stable subject id. It becomes the users/{uid}
// document key, so it never changes for the lifetime of the account.
// PhotoURL is nil when the provider has no picture for the user.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    *string
}

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue accepts any key. A package-private type means no other
// package can create a colliding key, so only auth can read or write the
// identity stored in a request context.
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// CurrentIdentity returns the identity stored in ctx by the auth middleware.
//
// An anonymous request yields apperror.ErrNotSignedIn, never a zero Identity
// with a nil error, so callers cannot confuse "nobody is signed in" with a
// user whose fields happen to be empty.
func CurrentIdentity(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UID == "" {
		return Identity{}, apperror.NotSignedIn()
	}
	return id, nil
}
