package http

import (
	"context"
	"net/http"

	"ugc-marketplace-backend/internal/security"
)

type ctxKey int

const (
	claimsKey ctxKey = iota
	rawTokenKey
)

func withClaims(ctx context.Context, claims *security.UserClaims, raw string) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return context.WithValue(ctx, rawTokenKey, raw)
}

// ClaimsFromContext returns the token claims set by the auth middleware.
func ClaimsFromContext(ctx context.Context) (*security.UserClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*security.UserClaims)
	return c, ok && c != nil
}

// UserIDFromContext extracts the authenticated user id.
func UserIDFromContext(ctx context.Context) (int32, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return c.UserID, true
}

func rawTokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(rawTokenKey).(string)
	return s
}

// userID is the handler-side accessor; routes behind the access middleware always have claims.
func userID(r *http.Request) int32 {
	id, _ := UserIDFromContext(r.Context())
	return id
}
