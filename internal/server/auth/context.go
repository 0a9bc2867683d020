package auth

import (
	"context"

	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

type ctxKey struct{}

// WithUser returns a copy of ctx carrying user as the request identity.
// A nil user leaves ctx unchanged.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}
