package shared

import (
	"context"

	"github.com/google/uuid"
)

// Principal identifies the acting user for a request. It travels on the
// request context instead of a process-wide current-user holder so audit
// stamping stays per-request.
type Principal struct {
	UserID   uuid.UUID
	Username string
}

type principalKey struct{}

// WithPrincipal returns a context carrying the acting principal
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the acting principal from the context.
// The second return value reports whether one was set.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
