package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/smkpro/smkpro-backend/internal/identity"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxSessionID contextKey = "session_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithSessionID injects the anonymous session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// IdentityFromContext resolves the cart/wishlist owner for the request:
// the authenticated user when present, the anonymous session otherwise.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	if raw := UserIDFromContext(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			if owner, err := identity.User(id); err == nil {
				return owner, true
			}
		}
	}
	if sid := SessionIDFromContext(ctx); sid != "" {
		if owner, err := identity.Session(sid); err == nil {
			return owner, true
		}
	}
	return identity.Identity{}, false
}
