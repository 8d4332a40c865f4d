package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const (
	principalKey contextKey = "principal"
	callerKey    contextKey = "caller"
)

// ErrNoPrincipal is returned when the request carries no signed-in identity.
var ErrNoPrincipal = errors.New("principal not found in context")

// Principal is who the session says is calling.
type Principal struct {
	UserID string
	OrgID  string // empty when the user has no active organization
}

// Caller is the authorization context of one request: the session principal
// plus the profile fields the directory returned for it. It is resolved once by
// middleware and passed explicitly into every mutation.
type Caller struct {
	UserID  string
	OrgID   string
	Email   string
	IsAdmin bool
}

// Authenticated reports whether the caller has an identity.
func (c Caller) Authenticated() bool { return c.UserID != "" }

// HasOrganization reports whether the caller belongs to an organization.
func (c Caller) HasOrganization() bool { return c.OrgID != "" }

// PrincipalFromCtx extracts the session principal from the request context.
// Returns ErrNoPrincipal for anonymous requests.
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}

// WithPrincipal returns a new context with the given Principal attached.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// CallerFromCtx returns the resolved Caller, or the zero (anonymous) Caller.
func CallerFromCtx(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey).(Caller)
	return c
}

// WithCaller returns a new context with the given Caller attached.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}
