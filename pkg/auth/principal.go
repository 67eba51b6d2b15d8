package auth

import (
	"context"
	"net/http"
)

// Role values mirror the marketplace's user records. Verification of the
// caller happens upstream; this package only carries the already-verified
// principal through the request context.
const (
	RoleGuest = "guest"
	RoleHost  = "host"
	RoleAdmin = "admin"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type contextKey string

const principalKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the caller identity, if one was attached by the
// identity middleware. Absence means the request was unauthenticated.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}

func FromRequest(r *http.Request) (Principal, bool) {
	return FromContext(r.Context())
}
