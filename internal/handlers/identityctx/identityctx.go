package identityctx

import (
	"context"

	"github.com/Dinesh751/hms-auth-service/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Create a new context carrying the authenticated identity.
// The identity is an immutable value scoped to a single request.
func New(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Extract the authenticated identity from the context, if any
func FromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
