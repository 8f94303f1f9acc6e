package tenant

import (
	"context"
)

type ctxKey struct{}

// WithID stores the resolved tenant token in context.
func WithID(ctx context.Context, t ID) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext retrieves the tenant token from context.
// Returns ErrNoTenant if the middleware never resolved one.
func FromContext(ctx context.Context) (ID, error) {
	t, ok := ctx.Value(ctxKey{}).(ID)
	if !ok || t.IsZero() {
		return ID{}, ErrNoTenant
	}
	return t, nil
}

// IDString returns the tenant id as a string for logging, or "" if absent.
func IDString(ctx context.Context) string {
	if t, err := FromContext(ctx); err == nil {
		return t.String()
	}
	return ""
}
